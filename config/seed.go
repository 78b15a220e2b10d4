package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// StrategySeed is one entry of the strategies seed file.
type StrategySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Symbol      string `yaml:"symbol"`
	Timeframe   string `yaml:"timeframe"`
	Code        string `yaml:"code"`
	Active      bool   `yaml:"active"`
}

type seedFile struct {
	Strategies []StrategySeed `yaml:"strategies"`
}

// LoadStrategySeeds reads the YAML seed file at path:
//
//	strategies:
//	  - name: SMA Crossover
//	    symbol: EURUSD
//	    timeframe: H1
//	    active: true
func LoadStrategySeeds(path string) ([]domain.Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategies seed file: %w", err)
	}
	return ParseStrategySeeds(data)
}

// ParseStrategySeeds decodes seed YAML. Every entry needs a name.
func ParseStrategySeeds(data []byte) ([]domain.Strategy, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse strategies seed file: %w", err)
	}

	var errs []error
	out := make([]domain.Strategy, 0, len(f.Strategies))
	for i, s := range f.Strategies {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("strategy #%d: name is required", i+1))
			continue
		}
		out = append(out, domain.Strategy{
			Name:        s.Name,
			Description: s.Description,
			Symbol:      s.Symbol,
			Timeframe:   s.Timeframe,
			Code:        s.Code,
			Active:      s.Active,
		})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid strategies seed file: %w", err)
	}
	return out, nil
}

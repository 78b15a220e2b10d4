// Package mlpredictor asks an external Python model for the confidence of a signal.
package mlpredictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// NeutralConfidence is reported when the model cannot give an answer.
const NeutralConfidence = 0.5

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. Stderr is attached to the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// Config holds configuration for the predictor subprocess.
type Config struct {
	Python  string        // Interpreter, e.g. "python3"
	Script  string        // Path to predict_signal.py
	Timeout time.Duration // Per call
	MaxBars int           // Most recent bars sent to the model
	Runner  Runner        // Defaults to ExecRunner
}

// Predictor implements ports.ConfidencePredictor by running
// `<python> <script> <json-bars>` and reading one JSON object from stdout.
type Predictor struct {
	cfg    Config
	logger ports.Logger
}

var _ ports.ConfidencePredictor = (*Predictor)(nil)

// New creates a predictor.
func New(cfg Config, logger ports.Logger) (*Predictor, error) {
	if logger == nil {
		return nil, errors.New("logger is required for predictor")
	}
	if cfg.Python == "" || cfg.Script == "" {
		return nil, fmt.Errorf("%w: predictor python and script are required", ports.ErrConfigurationError)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBars <= 0 {
		cfg.MaxBars = 100
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner
	}
	return &Predictor{cfg: cfg, logger: logger}, nil
}

// Predict returns the model's confidence for the latest bar. When the subprocess
// fails or prints something unreadable, it returns a neutral prediction together
// with an error wrapping ports.ErrPredictorUnavailable.
func (p *Predictor) Predict(ctx context.Context, bars []domain.Bar) (*ports.Prediction, error) {
	if len(bars) > p.cfg.MaxBars {
		bars = bars[len(bars)-p.cfg.MaxBars:]
	}
	payload, err := json.Marshal(bars)
	if err != nil {
		return neutral(err), fmt.Errorf("%w: encode bars: %w", ports.ErrPredictorUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, runErr := p.cfg.Runner(ctx, p.cfg.Python, p.cfg.Script, string(payload))
	pred, parseErr := parseOutput(out)
	elapsed := time.Since(start)

	switch {
	case parseErr == nil:
		// The script prints a JSON answer even when it exits non-zero.
	case runErr != nil:
		p.logger.Error(ctx, runErr, "Predictor subprocess failed", map[string]interface{}{"elapsedMs": elapsed.Milliseconds()})
		return neutral(runErr), fmt.Errorf("%w: %w", ports.ErrPredictorUnavailable, runErr)
	default:
		p.logger.Error(ctx, parseErr, "Predictor output unreadable", map[string]interface{}{"output": truncate(string(out), 200)})
		return neutral(parseErr), fmt.Errorf("%w: %w", ports.ErrPredictorUnavailable, parseErr)
	}

	pred.Confidence = clamp(pred.Confidence)
	fields := map[string]interface{}{
		"success":    pred.Success,
		"confidence": pred.Confidence,
		"bars":       len(bars),
		"elapsedMs":  elapsed.Milliseconds(),
	}
	if pred.Warning != "" {
		fields["warning"] = pred.Warning
	}
	if pred.Error != "" {
		fields["modelError"] = pred.Error
		p.logger.Warn(ctx, "Predictor reported an error", fields)
	} else {
		p.logger.Debug(ctx, "Predictor answered", fields)
	}
	return pred, nil
}

// parseOutput reads the last non-empty line of out as a Prediction.
func parseOutput(out []byte) (*ports.Prediction, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return nil, errors.New("empty predictor output")
	}
	// Confidence defaults to neutral when the key is missing.
	pred := &ports.Prediction{Confidence: NeutralConfidence}
	if err := json.Unmarshal([]byte(last), pred); err != nil {
		return nil, fmt.Errorf("decode predictor output: %w", err)
	}
	return pred, nil
}

func neutral(err error) *ports.Prediction {
	return &ports.Prediction{Success: false, Confidence: NeutralConfidence, Error: err.Error()}
}

func clamp(c float64) float64 {
	if math.IsNaN(c) {
		return NeutralConfidence
	}
	return math.Min(1, math.Max(0, c))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

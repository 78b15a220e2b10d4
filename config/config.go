package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rigaud3000/StarTrader/internal/adapters/logger"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// HTTP
	HTTPAddr string

	// Storage
	StoreDriver string // memory or sqlite
	DBPath      string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // text or json

	// Backtesting
	BarInterval      time.Duration
	BarMaxCount      int // largest series a single request may synthesize
	BarsExportPath   string
	BarsExportFormat string // csv or parquet
	RandomSeed       uint64 // 0 seeds every run from the clock
	LegacyMetrics    bool

	// ML confidence gate
	MLPython              string
	MLScript              string
	MLTimeout             time.Duration
	MLConfidenceThreshold float64
	MLMaxBars             int

	// Strategy Parameters
	StrategyShortMAPeriod int
	StrategyLongMAPeriod  int
	StrategyRSIPeriod     int
	StrategyRSIOverbought float64
	StrategyRSIOversold   float64
	StrategyATRPeriod     int

	// Seed data
	StrategiesSeedFile string

	// MT5 mock
	MT5InitialBalance float64
	MT5Leverage       int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment, collecting
// every validation failure into a single error.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error
	var errs []string

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StoreSQLite {
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q", StoreMemory, StoreSQLite))
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/startrader.db")

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be text or json")
	}

	intervalSeconds, err := getEnvAsIntRequired("BAR_INTERVAL_SECONDS", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BAR_INTERVAL_SECONDS: %v", err))
	} else if intervalSeconds <= 0 {
		errs = append(errs, "BAR_INTERVAL_SECONDS must be positive")
	}
	cfg.BarInterval = time.Duration(intervalSeconds) * time.Second

	cfg.BarMaxCount, err = getEnvAsIntRequired("BAR_MAX_COUNT", 1_000_000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BAR_MAX_COUNT: %v", err))
	} else if cfg.BarMaxCount <= 0 {
		errs = append(errs, "BAR_MAX_COUNT must be positive")
	}

	cfg.BarsExportPath = getEnv("BARS_EXPORT_PATH", "storage/backtests/latest_bars.csv")
	cfg.BarsExportFormat = strings.ToLower(getEnv("BARS_EXPORT_FORMAT", "csv"))
	if cfg.BarsExportFormat != "csv" && cfg.BarsExportFormat != "parquet" {
		errs = append(errs, "BARS_EXPORT_FORMAT must be csv or parquet")
	}

	if seed := os.Getenv("RANDOM_SEED"); seed != "" {
		cfg.RandomSeed, err = strconv.ParseUint(seed, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid RANDOM_SEED: %v", err))
		}
	}
	cfg.LegacyMetrics = getEnvAsBool("LEGACY_METRICS", false)

	cfg.MLPython = getEnv("ML_PYTHON", "python3")
	cfg.MLScript = getEnv("ML_SCRIPT", "ml/predict_signal.py")
	timeoutSeconds, err := getEnvAsIntRequired("ML_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ML_TIMEOUT_SECONDS: %v", err))
	} else if timeoutSeconds <= 0 {
		errs = append(errs, "ML_TIMEOUT_SECONDS must be positive")
	}
	cfg.MLTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.MLConfidenceThreshold, err = getEnvAsFloatRequired("ML_CONFIDENCE_THRESHOLD", 0.55)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ML_CONFIDENCE_THRESHOLD: %v", err))
	} else if cfg.MLConfidenceThreshold < 0 || cfg.MLConfidenceThreshold > 1 {
		errs = append(errs, "ML_CONFIDENCE_THRESHOLD must be between 0 and 1")
	}

	cfg.MLMaxBars, err = getEnvAsIntRequired("ML_MAX_BARS", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ML_MAX_BARS: %v", err))
	} else if cfg.MLMaxBars <= 0 {
		errs = append(errs, "ML_MAX_BARS must be positive")
	}

	// Strategy Parameters (using defaults if not set)
	cfg.StrategyShortMAPeriod = getEnvAsInt("STRATEGY_SHORT_MA_PERIOD", 10)
	cfg.StrategyLongMAPeriod = getEnvAsInt("STRATEGY_LONG_MA_PERIOD", 30)
	cfg.StrategyRSIPeriod = getEnvAsInt("STRATEGY_RSI_PERIOD", 14)
	cfg.StrategyRSIOverbought = getEnvAsFloat("STRATEGY_RSI_OVERBOUGHT", 70.0)
	cfg.StrategyRSIOversold = getEnvAsFloat("STRATEGY_RSI_OVERSOLD", 30.0)
	cfg.StrategyATRPeriod = getEnvAsInt("STRATEGY_ATR_PERIOD", 14)

	if cfg.StrategyShortMAPeriod <= 0 || cfg.StrategyLongMAPeriod <= 0 || cfg.StrategyRSIPeriod <= 0 || cfg.StrategyATRPeriod <= 0 {
		errs = append(errs, "strategy periods (MA, RSI, ATR) must be positive")
	}
	if cfg.StrategyShortMAPeriod >= cfg.StrategyLongMAPeriod {
		errs = append(errs, "STRATEGY_SHORT_MA_PERIOD must be less than STRATEGY_LONG_MA_PERIOD")
	}
	if cfg.StrategyRSIOverbought <= cfg.StrategyRSIOversold || cfg.StrategyRSIOverbought > 100 || cfg.StrategyRSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}

	cfg.StrategiesSeedFile = getEnv("STRATEGIES_SEED_FILE", "")

	cfg.MT5InitialBalance, err = getEnvAsFloatRequired("MT5_INITIAL_BALANCE", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MT5_INITIAL_BALANCE: %v", err))
	} else if cfg.MT5InitialBalance <= 0 {
		errs = append(errs, "MT5_INITIAL_BALANCE must be positive")
	}
	cfg.MT5Leverage, err = getEnvAsIntRequired("MT5_LEVERAGE", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MT5_LEVERAGE: %v", err))
	} else if cfg.MT5Leverage <= 0 {
		errs = append(errs, "MT5_LEVERAGE must be positive")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

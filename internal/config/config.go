package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"housecast/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Batch      BatchConfig
	Validation ValidationConfig
	Predictor  PredictorConfig
	Ledger     LedgerConfig
	LogLevel   string
}

// BatchConfig holds monthly batch inference paths
type BatchConfig struct {
	HoldoutPath string
	OutputDir   string
}

// ValidationConfig holds the raw split paths checked by the data quality run
type ValidationConfig struct {
	TrainPath   string
	EvalPath    string
	HoldoutPath string
}

// Splits returns the split paths in evaluation order
func (v ValidationConfig) Splits() []string {
	return []string{v.TrainPath, v.EvalPath, v.HoldoutPath}
}

// PredictorConfig selects and configures the prediction collaborator
type PredictorConfig struct {
	Mode          string // "baseline" or "remote"
	ReferencePath string
	URL           string
	Timeout       time.Duration
}

// LedgerConfig holds the optional run ledger connection
type LedgerConfig struct {
	Driver string
	DSN    string
}

// Enabled reports whether a ledger DSN was configured
func (l LedgerConfig) Enabled() bool {
	return strings.TrimSpace(l.DSN) != ""
}

const (
	PredictorModeBaseline = "baseline"
	PredictorModeRemote   = "remote"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Batch:      *loadBatchConfig(),
		Validation: *loadValidationConfig(),
		Predictor:  *loadPredictorConfig(),
		Ledger:     *loadLedgerConfig(),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadBatchConfig() *BatchConfig {
	return &BatchConfig{
		HoldoutPath: getEnvOrDefault("HOLDOUT_PATH", "data/processed/cleaning_holdout.csv"),
		OutputDir:   getEnvOrDefault("PREDICTIONS_DIR", "data/predictions"),
	}
}

func loadValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		TrainPath:   getEnvOrDefault("TRAIN_SPLIT_PATH", "data/raw/train.csv"),
		EvalPath:    getEnvOrDefault("EVAL_SPLIT_PATH", "data/raw/eval.csv"),
		HoldoutPath: getEnvOrDefault("HOLDOUT_SPLIT_PATH", "data/raw/holdout.csv"),
	}
}

func loadPredictorConfig() *PredictorConfig {
	return &PredictorConfig{
		Mode:          strings.ToLower(getEnvOrDefault("PREDICTOR_MODE", PredictorModeBaseline)),
		ReferencePath: getEnvOrDefault("REFERENCE_PATH", "data/processed/cleaning_train.csv"),
		URL:           getEnvOrDefault("PREDICTOR_URL", ""),
		Timeout:       time.Duration(getEnvIntOrDefault("PREDICTOR_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func loadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Driver: getEnvOrDefault("LEDGER_DRIVER", "postgres"),
		DSN:    getEnvOrDefault("LEDGER_DSN", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Batch.HoldoutPath == "" || config.Batch.OutputDir == "" {
		return errors.ConfigInvalid("holdout path and predictions directory are required")
	}
	for _, p := range config.Validation.Splits() {
		if p == "" {
			return errors.ConfigInvalid("train, eval and holdout split paths are required")
		}
	}
	switch config.Predictor.Mode {
	case PredictorModeBaseline:
	case PredictorModeRemote:
		if config.Predictor.URL == "" {
			return errors.ConfigInvalid("PREDICTOR_URL is required when PREDICTOR_MODE=remote")
		}
	default:
		return errors.ConfigInvalid("PREDICTOR_MODE must be baseline or remote, got " + config.Predictor.Mode)
	}
	if config.Predictor.Timeout <= 0 {
		return errors.ConfigInvalid("PREDICTOR_TIMEOUT_SECONDS must be positive")
	}
	if config.Ledger.Enabled() {
		switch config.Ledger.Driver {
		case "postgres", "sqlite3":
		default:
			return errors.ConfigInvalid("LEDGER_DRIVER must be postgres or sqlite3, got " + config.Ledger.Driver)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

package config

import (
	"testing"
	"time"

	"housecast/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"HOLDOUT_PATH", "PREDICTIONS_DIR", "TRAIN_SPLIT_PATH", "EVAL_SPLIT_PATH",
		"HOLDOUT_SPLIT_PATH", "REFERENCE_PATH", "PREDICTOR_MODE", "PREDICTOR_URL",
		"PREDICTOR_TIMEOUT_SECONDS", "LEDGER_DRIVER", "LEDGER_DSN", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/processed/cleaning_holdout.csv", cfg.Batch.HoldoutPath)
	assert.Equal(t, "data/predictions", cfg.Batch.OutputDir)
	assert.Equal(t, []string{"data/raw/train.csv", "data/raw/eval.csv", "data/raw/holdout.csv"}, cfg.Validation.Splits())
	assert.Equal(t, PredictorModeBaseline, cfg.Predictor.Mode)
	assert.Equal(t, 30*time.Second, cfg.Predictor.Timeout)
	assert.False(t, cfg.Ledger.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREDICTIONS_DIR", "/tmp/preds")
	t.Setenv("PREDICTOR_MODE", "REMOTE")
	t.Setenv("PREDICTOR_URL", "http://inference:8000/predict")
	t.Setenv("PREDICTOR_TIMEOUT_SECONDS", "5")
	t.Setenv("LEDGER_DRIVER", "sqlite3")
	t.Setenv("LEDGER_DSN", "file:ledger.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/preds", cfg.Batch.OutputDir)
	assert.Equal(t, PredictorModeRemote, cfg.Predictor.Mode)
	assert.Equal(t, 5*time.Second, cfg.Predictor.Timeout)
	assert.True(t, cfg.Ledger.Enabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "remote without url", env: map[string]string{"PREDICTOR_MODE": "remote"}},
		{name: "unknown mode", env: map[string]string{"PREDICTOR_MODE": "oracle"}},
		{name: "zero timeout", env: map[string]string{"PREDICTOR_TIMEOUT_SECONDS": "0"}},
		{name: "bad ledger driver", env: map[string]string{"LEDGER_DSN": "x", "LEDGER_DRIVER": "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
		})
	}
}

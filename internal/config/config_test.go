package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "artifacts", cfg.Artifacts.Dir)
	assert.Equal(t, "logistic_regression", cfg.Training.Estimator)
	assert.False(t, cfg.Artifacts.Watch)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9100
  log_level: debug
artifacts:
  dir: /var/lib/riskd
  watch: true
training:
  estimator: gradient_boosting
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/riskd", cfg.Artifacts.Dir)
	assert.True(t, cfg.Artifacts.Watch)
	assert.Equal(t, "gradient_boosting", cfg.Training.Estimator)
	// untouched fields keep their defaults
	assert.Equal(t, 100, cfg.Server.RequestsPerSecond)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RISKD_PORT", "9200")
	t.Setenv("RISKD_ARTIFACT_DIR", "/tmp/riskd-artifacts")
	t.Setenv("RISKD_WATCH_ARTIFACTS", "true")
	t.Setenv("RISKD_ESTIMATOR", "gradient_boosting")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "/tmp/riskd-artifacts", cfg.Artifacts.Dir)
	assert.True(t, cfg.Artifacts.Watch)
	assert.Equal(t, "gradient_boosting", cfg.Training.Estimator)
}

func TestLoadFromEnv_IgnoresMalformed(t *testing.T) {
	t.Setenv("RISKD_PORT", "not-a-port")
	cfg := Default()
	LoadFromEnv(cfg)
	assert.Equal(t, 8000, cfg.Server.Port)
}

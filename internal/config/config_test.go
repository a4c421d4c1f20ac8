package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, 20.0, cfg.Compliance.TotalHours)
	assert.Equal(t, 10.0, cfg.Compliance.VerifiableHours)
	assert.Equal(t, 2.0, cfg.Compliance.EthicsHours)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  port: "9000"
store:
  driver: redis
compliance:
  total_hours: 120
  ethics_hours: 10
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("COMPLIANCE_VERIFIABLE_HOURS", "40")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TOKEN_LIFESPAN", "30m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, 120.0, cfg.Compliance.TotalHours)
	assert.Equal(t, 40.0, cfg.Compliance.VerifiableHours)
	assert.Equal(t, 10.0, cfg.Compliance.EthicsHours)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenLifespan)
}

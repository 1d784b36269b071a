package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CONCURRENCY_LIMIT", "TRUSTED_SOURCE_WEIGHT", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Engine.MaxCandidatesPerItem)
	assert.Equal(t, 6, cfg.Engine.ConcurrencyLimit)
	assert.Equal(t, 1.15, cfg.Engine.TrustedSourceWeight)
	assert.Equal(t, 5.0, cfg.Engine.ConsensusTolerancePct)
	assert.Equal(t, 6, cfg.Engine.OutlierMinPoolSize)
	assert.Equal(t, 20, cfg.Scoring.NoMatchConfidence)
	assert.Equal(t, "he", cfg.SerpAPI.Language)
	assert.Equal(t, "il", cfg.SerpAPI.Country)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CONCURRENCY_LIMIT", "12")
	t.Setenv("TRUSTED_SOURCE_WEIGHT", "1.3")
	t.Setenv("OPENAI_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Engine.ConcurrencyLimit)
	assert.Equal(t, 1.3, cfg.Engine.TrustedSourceWeight)
	assert.True(t, cfg.OpenAI.Enabled)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("TRUSTED_SOURCE_WEIGHT", "weighty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1.15, cfg.Engine.TrustedSourceWeight)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "app", Password: "secret",
		Database: "baskets", SSLMode: "disable",
	}

	dsn := cfg.DatabaseDSN()

	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=baskets")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

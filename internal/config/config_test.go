package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 180*time.Minute, cfg.NudgeInterval)
	assert.Equal(t, 30*time.Minute, cfg.NudgeCooldown)
	assert.Equal(t, 7*24*time.Hour, cfg.NudgeLookback)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, cfg.JWTSecret, cfg.RefreshSecret)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", ":9090")
	t.Setenv("NUDGE_COOLDOWN", "45m")
	t.Setenv("GENAI_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, 45*time.Minute, cfg.NudgeCooldown)
	assert.Equal(t, 2*time.Second, cfg.GenAITimeout)
}

func TestLoadRequiresBackingServicesOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

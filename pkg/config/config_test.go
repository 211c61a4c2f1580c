package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "ec_admin_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.RevalidateInterval)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10, cfg.Site.PageSize)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9999")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("SESSION_REVALIDATE_INTERVAL", "30s")
	t.Setenv("DASHBOARD_PAGE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9999, cfg.Port)
	// Trailing slashes are stripped so path joins stay predictable.
	assert.Equal(t, "https://api.example.com/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Session.RevalidateInterval)
	assert.Equal(t, 25, cfg.Site.PageSize)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}

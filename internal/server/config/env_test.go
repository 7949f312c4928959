package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("LIFESTYLE_ENV", "prod")
	t.Setenv("LIFESTYLE_REFRESH_TOKEN_TTL", "12h")
	t.Setenv("LIFESTYLE_SECURE_COOKIES", "true")
	t.Setenv("LIFESTYLE_REDIS_URL", "redis://cache:6379/1")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 12*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)

	// unset variables keep their values
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenValidityDuration)
}

func Test_parseEnv_ErrorPanics(t *testing.T) {
	orig := readEnv
	t.Cleanup(func() { readEnv = orig })
	readEnv = func(cfg interface{}) error { return errors.New("bad env") }

	require.PanicsWithError(t, "bad env", func() { parseEnv(&Config{}) })
}

func TestEnvUsage_ListsVariables(t *testing.T) {
	u := EnvUsage()
	assert.Contains(t, u, "LIFESTYLE_DATABASE_DSN")
	assert.Contains(t, u, "LIFESTYLE_SECRET_KEY")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_PER_WINDOW", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("RATE_LIMIT_PREFIX", "")

	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigOverridesAndClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_PER_WINDOW", "-5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_PREFIX", "test")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Limit, "non-positive limits clamp to 1")
	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.Equal(t, "test", cfg.Prefix)
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "ON"} {
		t.Setenv("TEST_ENV_BOOL", v)
		assert.True(t, envBool("TEST_ENV_BOOL", false), v)
	}
	for _, v := range []string{"0", "false", "no", "OFF"} {
		t.Setenv("TEST_ENV_BOOL", v)
		assert.False(t, envBool("TEST_ENV_BOOL", true), v)
	}
	t.Setenv("TEST_ENV_BOOL", "maybe")
	assert.True(t, envBool("TEST_ENV_BOOL", true), "unparseable values keep the default")
}

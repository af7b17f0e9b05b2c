package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_ATTEMPTS", "NODE_ENV", "COOKIE_NAME", "CANVAS_WIDTH"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, 3, c.MaxAttempts)
	assert.Equal(t, 300, c.CanvasWidth)
	assert.Equal(t, 20.0, c.ScratchRadius)
	assert.Equal(t, "flick_token", c.CookieName)
	assert.False(t, c.Production)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("JWT_EXPIRES_DAYS", "not-a-number")
	t.Setenv("NODE_ENV", "production")

	c := Load()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, 5, c.MaxAttempts)
	assert.Equal(t, 14, c.JWTExpiresDays)
	assert.True(t, c.Production)
}

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

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "file", cfg.Storage)
	assert.Equal(t, 10, cfg.Game.Questions)
	assert.Equal(t, 100, cfg.Game.DefaultPoints)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("STORAGE", "postgres")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("GAME_TIMEOUT", "45")
	t.Setenv("GAME_BLANK_CHAR", "_")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)

	defaults := cfg.Game.Defaults()
	assert.Equal(t, 45*time.Second, defaults.Timeout)
	assert.Equal(t, '_', defaults.BlankChar)
}

func TestGameDefaultsConversion(t *testing.T) {
	g := Game{
		Questions:  5,
		Hints:      2,
		TimeoutSec: 60,
		DelaySec:   3,
		BlankChar:  "",
	}
	d := g.Defaults()
	assert.Equal(t, 5, d.Num)
	assert.Equal(t, 60*time.Second, d.Timeout)
	assert.Equal(t, 3*time.Second, d.Delay)
	// empty blank char falls back
	assert.Equal(t, '*', d.BlankChar)
}

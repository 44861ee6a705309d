package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, AuthModeCached, cfg.Zoom.AuthMode)
	assert.Equal(t, "https://zoom.us/oauth/token", cfg.Zoom.OAuthTokenURL)
}

func TestLoadAuthMode(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		t.Setenv("ZOOM_AUTH_MODE", "embedded")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, AuthModeEmbedded, cfg.Zoom.AuthMode)
	})

	t.Run("invalid value fails fast", func(t *testing.T) {
		t.Setenv("ZOOM_AUTH_MODE", "cachde")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ZOOM_AUTH_MODE")
	})
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional config path", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse([]string{"config.yaml"}, out)
		require.NoError(t, err)
		require.False(t, shouldExit)
		assert.Equal(t, "config.yaml", cfg.ConfigPath)
		assert.Empty(t, cfg.EntityID)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("config flag wins over positional", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, _, err := Parse([]string{"-config", "a.yaml", "b.yaml"}, out)
		require.NoError(t, err)
		assert.Equal(t, "a.yaml", cfg.ConfigPath)
	})

	t.Run("shorthand flag", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, _, err := Parse([]string{"-c", "a.yaml"}, out)
		require.NoError(t, err)
		assert.Equal(t, "a.yaml", cfg.ConfigPath)
	})

	t.Run("entity mode flag", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, _, err := Parse([]string{"-entity", "app", "config.yaml"}, out)
		require.NoError(t, err)
		assert.Equal(t, "app", cfg.EntityID)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(nil, out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid log format", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, _, err := Parse([]string{"-log-format", "xml", "config.yaml"}, out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, _, err := Parse([]string{"-log-level", "loud", "config.yaml"}, out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}

// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults, file decoding, and environment overrides
package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "local", cfg.User)
	assert.True(t, strings.HasPrefix(cfg.DBPath, filepath.Join(xdg.DataHome, AppName)))
	assert.False(t, cfg.GoogleConfigured())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("LEADFLOW_LISTEN_ADDR", "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestSaveAndLoadWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.ListenAddr = ":9090"
	cfg.GoogleClientID = "file-client"
	require.NoError(t, cfg.Save(path))

	t.Setenv("GOOGLE_CLIENT_ID", "env-client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "env-secret")
	t.Setenv("LEADFLOW_LISTEN_ADDR", "")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", loaded.ListenAddr)
	assert.Equal(t, "env-client", loaded.GoogleClientID)
	assert.True(t, loaded.GoogleConfigured())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	l := SetupLogger(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "user", "u1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "user=u1")
	assert.Same(t, l, Logger())
}

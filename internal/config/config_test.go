package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NotNil(t, cfg.Aliases)
	assert.Empty(t, cfg.Portal.URL)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Portal.URL = "https://desk.example.com"
	cfg.Portal.User = "alice@example.com"
	cfg.Session.Token = "tok-123"
	cfg.Session.ServiceURL = "https://svc.example.com/api"
	cfg.Aliases["bob"] = "bob@example.com"
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://desk.example.com", loaded.Portal.URL)
	assert.Equal(t, "alice@example.com", loaded.Portal.User)
	assert.Equal(t, "tok-123", loaded.Session.Token)
	assert.Equal(t, "https://svc.example.com/api", loaded.Session.ServiceURL)
	assert.Equal(t, "bob@example.com", loaded.Aliases["bob"])
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", DefaultPath())
}

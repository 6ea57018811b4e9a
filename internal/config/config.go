// Package config loads and persists the CLI configuration (TOML).
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the default config location when set.
const EnvConfigPath = "DESKHAND_CONFIG"

// Config is the flat key-value configuration persisted between runs:
// portal address, credentials, the resolved session, and alias table.
// Passwords are never stored.
type Config struct {
	Log     LogConfig         `toml:"log"`
	Portal  PortalConfig      `toml:"portal"`
	Session SessionConfig     `toml:"session"`
	Aliases map[string]string `toml:"aliases"`

	path string
}

// LogConfig holds logging level and format (e.g. level=warn, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// PortalConfig holds the login portal base URL and the account username.
type PortalConfig struct {
	URL  string `toml:"url"`
	User string `toml:"user"`
}

// SessionConfig holds the session token and the service endpoint resolved
// at login. Both are replaced on every successful login.
type SessionConfig struct {
	Token      string `toml:"token"`
	ServiceURL string `toml:"service_url"`
}

// DefaultPath returns the config file location: $DESKHAND_CONFIG if set,
// otherwise ~/.config/deskhand/config.toml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "deskhand", "config.toml")
}

// Load reads and parses the TOML config file at path. A missing file is not
// an error: defaults are returned and a later Save creates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Aliases: map[string]string{},
		path:    path,
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, err
	}
	if cfg.Aliases == nil {
		cfg.Aliases = map[string]string{}
	}
	return cfg, nil
}

// Save writes the config back to the file it was loaded from. The file is
// created with 0600 since it carries the session token.
func (c *Config) Save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(c.path, buf.Bytes(), 0o600)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

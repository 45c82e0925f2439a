// ABOUTME: Application configuration loaded from XDG config file, .env, and environment
// ABOUTME: Resolves database, HTTP listener, Google OAuth, and session settings
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the XDG directories and the default database file.
const AppName = "leadflow"

// Config holds runtime settings. File values are overridden by the environment.
type Config struct {
	// DBPath is the SQLite database used when DatabaseURL is empty.
	DBPath string `json:"db_path,omitempty"`

	// DatabaseURL selects the Postgres store when set.
	DatabaseURL string `json:"database_url,omitempty"`

	ListenAddr string `json:"listen_addr,omitempty"`

	GoogleClientID     string `json:"google_client_id,omitempty"`
	GoogleClientSecret string `json:"google_client_secret,omitempty"`
	GoogleRedirectURL  string `json:"google_redirect_url,omitempty"`

	// SessionSecret signs session JWTs.
	SessionSecret string `json:"session_secret,omitempty"`

	// TokenKey is a hex-encoded 32 byte key that seals stored OAuth tokens.
	// Tokens are stored in the clear when empty.
	TokenKey string `json:"token_key,omitempty"`

	// User is the identity CLI commands act for.
	User string `json:"user,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
}

// Default returns a config with local defaults.
func Default() *Config {
	return &Config{
		DBPath:            filepath.Join(xdg.DataHome, AppName, AppName+".db"),
		ListenAddr:        ":8080",
		GoogleRedirectURL: "http://localhost:8080/api/auth/google/callback",
		User:              "local",
		LogLevel:          "info",
	}
}

// Path returns the XDG-compliant config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.json")
}

// Load reads the config file (if present), then .env, then environment overrides.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"GOOGLE_CLIENT_ID", &cfg.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret},
		{"GOOGLE_REDIRECT_URL", &cfg.GoogleRedirectURL},
		{"LEADFLOW_DB_PATH", &cfg.DBPath},
		{"LEADFLOW_DATABASE_URL", &cfg.DatabaseURL},
		{"LEADFLOW_LISTEN_ADDR", &cfg.ListenAddr},
		{"LEADFLOW_SESSION_SECRET", &cfg.SessionSecret},
		{"LEADFLOW_TOKEN_KEY", &cfg.TokenKey},
		{"LEADFLOW_USER", &cfg.User},
		{"LEADFLOW_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// GoogleConfigured reports whether OAuth client credentials are present.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Save writes the config file with restricted permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Package config handles the XDG configuration directory, backend settings
// and the persisted session file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"

	// SettingsFile is the backend settings filename.
	SettingsFile = "config.yaml"

	// EnvURL overrides the backend project URL.
	EnvURL = "TASKDECK_URL"

	// EnvAnonKey overrides the backend anon API key.
	EnvAnonKey = "TASKDECK_ANON_KEY"
)

// Config holds configuration paths and backend settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// ProjectURL is the base URL of the managed backend project.
	ProjectURL string

	// AnonKey is the public API key sent with every request.
	AnonKey string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// settings is the on-disk shape of config.yaml.
type settings struct {
	ProjectURL string `yaml:"project_url"`
	AnonKey    string `yaml:"anon_key"`
}

// New creates a Config from the default or specified config directory.
// Backend settings are resolved in order: config.yaml in the config dir,
// then a .env file in the working directory, then process environment.
// Later sources win.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if data, err := os.ReadFile(filepath.Join(dir, SettingsFile)); err == nil {
		var s settings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
		cfg.ProjectURL = s.ProjectURL
		cfg.AnonKey = s.AnonKey
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if v := os.Getenv(EnvURL); v != "" {
		cfg.ProjectURL = v
	}
	if v := os.Getenv(EnvAnonKey); v != "" {
		cfg.AnonKey = v
	}
	cfg.ProjectURL = strings.TrimRight(cfg.ProjectURL, "/")

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// RequireBackend reports an error if the backend settings are incomplete.
func (c *Config) RequireBackend() error {
	if c.ProjectURL == "" {
		return fmt.Errorf("backend URL not configured (set %s or project_url in %s)", EnvURL, SettingsFile)
	}
	if c.AnonKey == "" {
		return fmt.Errorf("backend API key not configured (set %s or anon_key in %s)", EnvAnonKey, SettingsFile)
	}
	return nil
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

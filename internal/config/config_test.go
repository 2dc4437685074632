package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestNewReadsSettingsFile(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvAnonKey, "")

	dir := t.TempDir()
	writeSettings(t, dir, "project_url: https://demo.example.co/\nanon_key: key-from-yaml\n")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if cfg.ProjectURL != "https://demo.example.co" {
		t.Errorf("ProjectURL = %q, want trailing slash trimmed", cfg.ProjectURL)
	}
	if cfg.AnonKey != "key-from-yaml" {
		t.Errorf("AnonKey = %q", cfg.AnonKey)
	}
	if err := cfg.RequireBackend(); err != nil {
		t.Errorf("RequireBackend() = %v", err)
	}
}

func TestNewEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "project_url: https://yaml.example.co\nanon_key: yaml-key\n")

	t.Setenv(EnvURL, "https://env.example.co")
	t.Setenv(EnvAnonKey, "env-key")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if cfg.ProjectURL != "https://env.example.co" {
		t.Errorf("ProjectURL = %q, want env override", cfg.ProjectURL)
	}
	if cfg.AnonKey != "env-key" {
		t.Errorf("AnonKey = %q, want env override", cfg.AnonKey)
	}
}

func TestNewInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "project_url: [unclosed\n")

	if _, err := New(dir); err == nil {
		t.Fatal("New() accepted malformed yaml")
	}
}

func TestRequireBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing url", Config{AnonKey: "k"}, "backend URL not configured"},
		{"missing key", Config{ProjectURL: "https://x"}, "backend API key not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.RequireBackend()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("RequireBackend() = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSessionPath(t *testing.T) {
	cfg := &Config{Dir: filepath.Join(t.TempDir(), "nested")}

	if got, want := cfg.SessionPath(), filepath.Join(cfg.Dir, SessionFile); got != want {
		t.Errorf("SessionPath() = %q, want %q", got, want)
	}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("config dir mode = %o, want 0700", perm)
	}
	if err := os.WriteFile(cfg.SessionPath(), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got, want := DefaultConfigDir(), filepath.Join("/tmp/xdg-test", AppName); got != want {
		t.Errorf("DefaultConfigDir() = %q, want %q", got, want)
	}
}

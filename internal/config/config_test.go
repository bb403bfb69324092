package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixpoint.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Realtime.ReconnectDelay != 5*time.Second {
		t.Errorf("reconnect delay = %v, want 5s", cfg.Realtime.ReconnectDelay)
	}
	if cfg.Notifications.PollInterval != 60*time.Second {
		t.Errorf("poll interval = %v, want 60s", cfg.Notifications.PollInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: https://fixpoint.example.org
realtime:
  reconnect_delay: 2s
  reconnect_factor: 2
  reconnect_jitter: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "https://fixpoint.example.org" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Realtime.ReconnectDelay != 2*time.Second {
		t.Errorf("reconnect delay = %v", cfg.Realtime.ReconnectDelay)
	}
	if !cfg.Realtime.ReconnectJitter {
		t.Error("jitter not set")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep defaults.
	if cfg.Realtime.Path != "/ws" {
		t.Errorf("path = %q, want /ws", cfg.Realtime.Path)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("FIXPOINT_TEST_HOST", "expanded.example.org")
	path := writeConfig(t, "server:\n  base_url: http://${FIXPOINT_TEST_HOST}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://expanded.example.org" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FIXPOINT_API_URL", "http://override.example.org")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://override.example.org" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "server:\n  base_uri: http://x\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default", func(c *Config) {}, true},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }, false},
		{"no host", func(c *Config) { c.Server.BaseURL = "http://" }, false},
		{"relative ws path", func(c *Config) { c.Realtime.Path = "ws" }, false},
		{"tiny poll", func(c *Config) { c.Notifications.PollInterval = time.Millisecond }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, false},
		{"zero dedupe", func(c *Config) { c.Notifications.DedupeWindow = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Fatalf("Validate = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "https://fixpoint.example.org/"
	if got := cfg.WebSocketURL(); got != "wss://fixpoint.example.org/ws" {
		t.Errorf("WebSocketURL = %q", got)
	}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Realtime.Path = "/ws-chat"
	if got := cfg.WebSocketURL(); got != "ws://localhost:8080/ws-chat" {
		t.Errorf("WebSocketURL = %q", got)
	}
}

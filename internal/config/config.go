// Package config loads and validates the FixPoint client configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the FixPoint client.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Realtime      RealtimeConfig      `yaml:"realtime"`
	Notifications NotificationsConfig `yaml:"notifications"`
	State         StateConfig         `yaml:"state"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig locates the FixPoint backend.
type ServerConfig struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8080".
	BaseURL string `yaml:"base_url"`
	// Timeout bounds every REST call.
	Timeout time.Duration `yaml:"timeout"`
}

// RealtimeConfig tunes the websocket session.
type RealtimeConfig struct {
	// Path is the websocket endpoint on the backend origin.
	Path string `yaml:"path"`
	// ReconnectDelay is the wait between reconnection attempts.
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	// ReconnectMaxDelay caps the delay when backoff growth is enabled.
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"`
	// ReconnectFactor grows the delay per attempt; 1 keeps it fixed.
	ReconnectFactor float64 `yaml:"reconnect_factor"`
	// ReconnectJitter randomizes each delay.
	ReconnectJitter bool `yaml:"reconnect_jitter"`
	// HandshakeTimeout bounds the websocket dial plus STOMP handshake.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// NotificationsConfig tunes the reconciliation poll.
type NotificationsConfig struct {
	// PollInterval is the backstop unread-count fetch cadence.
	PollInterval time.Duration `yaml:"poll_interval"`
	// DedupeWindow bounds how many recently seen event ids are retained.
	DedupeWindow int `yaml:"dedupe_window"`
}

// StateConfig locates persisted client state (session file).
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 60 * time.Second,
		},
		Realtime: RealtimeConfig{
			Path:             "/ws",
			ReconnectDelay:   5 * time.Second,
			ReconnectFactor:  1,
			HandshakeTimeout: 10 * time.Second,
		},
		Notifications: NotificationsConfig{
			PollInterval: 60 * time.Second,
			DedupeWindow: 512,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url: missing host")
	}
	if !strings.HasPrefix(c.Realtime.Path, "/") {
		return fmt.Errorf("realtime.path must start with /")
	}
	if c.Realtime.ReconnectDelay < 0 {
		return fmt.Errorf("realtime.reconnect_delay must not be negative")
	}
	if c.Notifications.PollInterval < time.Second {
		return fmt.Errorf("notifications.poll_interval too small: %s", c.Notifications.PollInterval)
	}
	if c.Notifications.DedupeWindow <= 0 {
		return fmt.Errorf("notifications.dedupe_window must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// WebSocketURL derives the ws(s) endpoint from the REST base URL.
func (c *Config) WebSocketURL() string {
	ws := strings.Replace(c.Server.BaseURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimRight(ws, "/") + c.Realtime.Path
}

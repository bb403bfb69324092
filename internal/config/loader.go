package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the config file at path, expanding ${ENV} references before
// parsing. A missing file yields Default(). A .env file next to the config
// (or in the working directory when path is empty) is loaded first so the
// expansion sees it.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			if err := parseInto(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseInto(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file keeps defaults
		}
		return err
	}
	return nil
}

// applyEnvOverrides lets the base URL and token-free knobs be set without
// a config file, matching how the backend itself is pointed at in dev.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIXPOINT_API_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("FIXPOINT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FIXPOINT_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
}

func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p) // best effort; malformed .env must not block startup
			return
		}
	}
}

// StateDir resolves the directory holding persisted session state,
// defaulting to ~/.fixpoint.
func (c *Config) StateDir() (string, error) {
	if c.State.Dir != "" {
		return c.State.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve state dir: %w", err)
	}
	return filepath.Join(home, ".fixpoint"), nil
}

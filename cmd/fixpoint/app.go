package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/itsamisha/fixpoint-client/internal/api"
	"github.com/itsamisha/fixpoint-client/internal/config"
	"github.com/itsamisha/fixpoint-client/internal/session"
)

// app bundles the wiring every command needs: config, logger, session
// store, and the REST client.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *api.Client
}

// newApp loads configuration and restores any persisted session.
func newApp(configPath string, debug bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := parseLevel(cfg.Logging.Level)
	if debug {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	stateDir, err := cfg.StateDir()
	if err != nil {
		return nil, err
	}
	fileStore, err := session.NewFileStore(stateDir)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(fileStore, logger)
	if _, err := sessions.Restore(); err != nil {
		logger.Warn("restore session", "error", err)
	}

	client := api.NewClient(cfg.Server.BaseURL, sessions, logger,
		api.WithTimeout(cfg.Server.Timeout))

	return &app{cfg: cfg, logger: logger, sessions: sessions, client: client}, nil
}

// requireSession validates the restored session against the backend and
// fails with a login hint when there is none or the token is rejected.
func (a *app) requireSession(ctx context.Context) (*session.Session, error) {
	sess := a.sessions.Current()
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run: fixpoint login)")
	}
	if _, err := a.client.CurrentUser(ctx); err != nil {
		if api.IsAuthFailure(err) {
			// The wrapper already cleared the session.
			return nil, fmt.Errorf("session expired, please log in again")
		}
		// Backend unreachable or /users/me unsupported: trust the local
		// session and let the real call surface any problem.
		a.logger.Debug("session validation skipped", "error", err)
	}
	return sess, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

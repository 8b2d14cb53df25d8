package cmd

import (
	"fmt"
	"time"

	"github.com/bookchat/bookchat/internal/client"
	"github.com/bookchat/bookchat/internal/config"
	"github.com/bookchat/bookchat/internal/log"
	"github.com/bookchat/bookchat/internal/session"
)

// runtime bundles the wired components every command starts from.
type runtime struct {
	cfg    *config.Config
	logger log.Logger
	store  *session.Store
	client *client.Client
}

// buildRuntime loads configuration and wires the logger, session store and
// backend client. State persistence degrades to a no-op when the state
// directory is unusable; the chat still works, it just forgets on exit.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{Level: level})

	var storage session.Storage
	storage, err = session.NewDir(cfg.StateDir)
	if err != nil {
		logger.Warn("state directory unusable, sessions will not persist",
			"state_dir", cfg.StateDir, "error", err)
		storage = session.Discard{}
	}
	store := session.New(storage, logger.With("component", "session"))

	baseURL := client.ResolveBaseURL(cfg.BaseURL, cfg.SiteHost)
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	api, err := client.New(baseURL, timeout, logger.With("component", "client"))
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		client: api,
	}, nil
}

// currentOrNewSession returns the stored session when it is still valid,
// otherwise creates and persists a fresh one.
func (r *runtime) currentOrNewSession() *session.Session {
	if sess, ok := r.store.Current(); ok {
		return sess
	}
	return r.store.Create(r.cfg.Page)
}

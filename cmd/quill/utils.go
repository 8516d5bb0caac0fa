package main

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"quill/internal/config"
	"quill/internal/store"
)

// withStore opens the configured database for the duration of fn.
func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	if cfg == nil {
		return errors.New("config not initialized")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("db path is required")
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// withSession opens the configured database and runs fn on one session.
func withSession(ctx context.Context, cfg *config.Config, fn func(store.BlogStore) error) error {
	return withStore(cfg, func(st *store.Store) error {
		return st.WithSession(ctx, fn)
	})
}

func setIfNotEmpty(values url.Values, key, value string) {
	value = strings.TrimSpace(value)
	if value != "" {
		values.Set(key, value)
	}
}

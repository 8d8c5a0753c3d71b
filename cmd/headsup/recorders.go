package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/history"
)

// openRecorders builds the hand recorders the configuration asks for. The
// returned closer releases files and database connections.
func openRecorders(ctx context.Context, cfg *config.Config, logger *log.Logger) (history.Multi, func() error, error) {
	recorders := history.Multi{history.NewLogger(logger)}
	var closers []io.Closer
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	h := cfg.History
	if h.File != "" {
		f, err := history.OpenFile(h.File)
		if err != nil {
			return nil, nil, err
		}
		recorders = append(recorders, f)
		closers = append(closers, f)
	}

	opts := []history.StoreOption{
		history.WithPlayerName(h.PlayerName),
		history.WithOpponentName(cfg.Opponent.Strategy),
	}
	for _, db := range []struct {
		dialect history.Dialect
		dsn     string
	}{
		{history.SQLite, h.SQLitePath},
		{history.Postgres, h.PostgresDSN},
	} {
		if db.dsn == "" {
			continue
		}
		store, err := history.Open(ctx, db.dialect, db.dsn, opts...)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		logger.Info("Recording hands", "dialect", db.dialect)
		recorders = append(recorders, store)
		closers = append(closers, store)
	}
	return recorders, closeAll, nil
}

// openLogger logs to the configured file, or discards everything when none
// is set. The terminal belongs to the game.
func openLogger(cfg *config.Config) (*log.Logger, func() error, error) {
	if cfg.Log.File == "" {
		return log.NewWithOptions(io.Discard, log.Options{}), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           cfg.LogLevel(),
		Prefix:          "headsup",
	})
	return logger, f.Close, nil
}

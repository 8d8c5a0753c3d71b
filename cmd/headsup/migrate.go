package main

import (
	"context"
	"fmt"

	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/history"
)

type MigrateCmd struct {
	Dialect string `default:"sqlite" enum:"sqlite,postgres" help:"Database to migrate (sqlite, postgres)"`
	DSN     string `help:"Connection string or SQLite path; defaults to the configured one"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	dsn := c.DSN
	if dsn == "" {
		cfg, err := config.Load(g.Config)
		if err != nil {
			return err
		}
		dsn = cfg.History.SQLitePath
		if c.Dialect == string(history.Postgres) {
			dsn = cfg.History.PostgresDSN
		}
	}
	if dsn == "" {
		return fmt.Errorf("no %s database configured; pass --dsn", c.Dialect)
	}

	// Open applies every pending migration.
	store, err := history.Open(context.Background(), history.Dialect(c.Dialect), dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("%s schema is up to date\n", c.Dialect)
	return nil
}

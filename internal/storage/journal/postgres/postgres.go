// Package postgres registers the postgres driver for the journal.
package postgres

import (
	"context"

	_ "github.com/lib/pq" // registers the "postgres" driver

	"vaultd/internal/storage/journal"
)

// Open opens a postgres-backed journal store.
func Open(ctx context.Context, cfg journal.Config) (*journal.SQLStore, error) {
	cfg.Driver = "postgres"
	return journal.OpenSQL(ctx, cfg)
}

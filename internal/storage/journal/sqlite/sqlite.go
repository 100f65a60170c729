// Package sqlite registers the pure-Go sqlite driver for the journal.
package sqlite

import (
	"context"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"vaultd/internal/storage/journal"
)

// Open opens a sqlite-backed journal store.
func Open(ctx context.Context, cfg journal.Config) (*journal.SQLStore, error) {
	cfg.Driver = "sqlite"
	return journal.OpenSQL(ctx, cfg)
}

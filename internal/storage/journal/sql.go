package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id      TEXT PRIMARY KEY,
	kind    TEXT NOT NULL,
	user_id TEXT NOT NULL,
	asset   TEXT NOT NULL,
	amount  TEXT NOT NULL,
	balance TEXT NOT NULL,
	at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS operations_at ON operations (at);
`

// SQLStore is a Store over database/sql. Both supported drivers speak the
// same schema; only the placeholder syntax differs.
type SQLStore struct {
	db      *sql.DB
	timeout time.Duration

	// postgres numbers placeholders, sqlite uses '?'.
	numbered bool
}

// OpenSQL connects with an already-registered driver and bootstraps the
// schema. Driver registration happens in the driver subpackages.
func OpenSQL(ctx context.Context, cfg Config) (*SQLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLStore{db: db, timeout: cfg.Timeout, numbered: cfg.Driver == "postgres"}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging journal database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) placeholders(n int) []any {
	out := make([]any, n)
	for i := range out {
		if s.numbered {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// Append writes one entry.
func (s *SQLStore) Append(ctx context.Context, entry Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(
		"INSERT INTO operations (id, kind, user_id, asset, amount, balance, at) VALUES (%s, %s, %s, %s, %s, %s, %s)",
		s.placeholders(7)...)
	_, err := s.db.ExecContext(ctx, query,
		entry.ID.String(), entry.Kind, entry.User, entry.Asset,
		entry.Amount, entry.Balance, entry.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("appending journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first. limit <= 0 means a
// server-side default of 100.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(
		"SELECT id, kind, user_id, asset, amount, balance, at FROM operations ORDER BY at DESC, id DESC LIMIT %s",
		s.placeholders(1)...)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			id    string
			at    string
		)
		if err := rows.Scan(&id, &entry.Kind, &entry.User, &entry.Asset, &entry.Amount, &entry.Balance, &at); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing journal entry id %q: %w", id, err)
		}
		if entry.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing journal entry timestamp %q: %w", at, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of journaled operations.
func (s *SQLStore) Count(ctx context.Context) (uint64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count uint64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operations").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting journal entries: %w", err)
	}
	return count, nil
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

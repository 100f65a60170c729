// Package journal persists a durable audit trail of completed operations in a
// relational database. The journal is write-behind: the bank commits first and
// the journal records after the fact, so a journal outage degrades auditing
// but never blocks custody operations.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClosed        = errors.New("journal: store is closed")
	ErrUnknownDriver = errors.New("journal: unknown driver")
)

// Entry is one journaled operation. Amounts are decimal strings so the
// journal never loses precision to a numeric column type.
type Entry struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	User    string    `json:"user"`
	Asset   string    `json:"asset"`
	Amount  string    `json:"amount"`
	Balance string    `json:"balance"`
	At      time.Time `json:"at"`
}

// Store is the persistence contract of the journal.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Count(ctx context.Context) (uint64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Package ledgerdb provides the key-value store backing the balance ledger.
// Backends are selected by configuration; all of them expose the same DB
// interface with atomic batch writes, which is what the bank relies on for
// all-or-nothing operation commits.
package ledgerdb

import (
	"context"
)

// DB defines the operations every ledgerdb backend must support.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies all operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end). A nil start begins at the
	// first key; a nil end runs to the last.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// Iterator allows traversing ledgerdb entries in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Package pebble implements the ledgerdb interface on top of cockroachdb's
// pebble LSM store. This is the default backend for durable deployments.
package pebble

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"vaultd/internal/storage/ledgerdb"
)

type DB struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble-backed ledger database at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble ledgerdb at %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an already-open pebble handle.
func NewDB(db *pebble.DB) *DB {
	return &DB{db: db}
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}

	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ledgerdb.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value out
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	if p.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	if p.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

func (p *DB) Batch(ctx context.Context, ops []ledgerdb.BatchOperation) error {
	if p.db == nil {
		return ledgerdb.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case ledgerdb.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case ledgerdb.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}

	return batch.Commit(pebble.Sync)
}

func (p *DB) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

type Iterator struct {
	iter *pebble.Iterator

	start, end []byte
	err        error
	current    struct {
		key, value []byte
	}
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (ledgerdb.Iterator, error) {
	if p.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}

	return &Iterator{
		iter:  iter,
		start: start,
		end:   end,
	}, nil
}

func (it *Iterator) Next() bool {
	if it.current.key == nil {
		if it.start == nil {
			it.iter.First()
		} else {
			it.iter.SeekGE(it.start)
		}
	} else {
		it.iter.Next()
	}

	if !it.iter.Valid() {
		return false
	}

	key := it.iter.Key()
	if it.end != nil && bytes.Compare(key, it.end) >= 0 {
		return false
	}

	val := it.iter.Value()
	valCopy := make([]byte, len(val))
	copy(valCopy, val)

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	it.current.key = keyCopy
	it.current.value = valCopy
	return true
}

func (it *Iterator) Key() []byte {
	return it.current.key
}

func (it *Iterator) Value() []byte {
	return it.current.value
}

func (it *Iterator) Error() error {
	if it.iter.Error() != nil {
		return it.iter.Error()
	}
	return it.err
}

func (it *Iterator) Close() error {
	it.iter.Close()
	return nil
}

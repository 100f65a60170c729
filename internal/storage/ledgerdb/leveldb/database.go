// Package leveldb implements the ledgerdb interface on top of goleveldb.
// Kept as an alternative backend for deployments that prefer a single-file
// footprint over pebble.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"vaultd/internal/storage/ledgerdb"
)

type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) a leveldb-backed ledger database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb ledgerdb at %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}
	val, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ledgerdb.ErrKeyNotFound
		}
		return nil, err
	}
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	if l.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return l.db.Put(key, value, nil)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	if l.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return l.db.Delete(key, nil)
}

func (l *DB) Batch(ctx context.Context, ops []ledgerdb.BatchOperation) error {
	if l.db == nil {
		return ledgerdb.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case ledgerdb.BatchPut:
			batch.Put(op.Key, op.Value)
		case ledgerdb.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return l.db.Write(batch, nil)
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (ledgerdb.Iterator, error) {
	if l.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}
	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &Iterator{iter: iter}, nil
}

func (l *DB) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

type Iterator struct {
	iter interface {
		Next() bool
		Key() []byte
		Value() []byte
		Error() error
		Release()
	}
	current struct {
		key, value []byte
	}
}

func (it *Iterator) Next() bool {
	if !it.iter.Next() {
		return false
	}
	key := it.iter.Key()
	val := it.iter.Value()

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	valCopy := make([]byte, len(val))
	copy(valCopy, val)

	it.current.key = keyCopy
	it.current.value = valCopy
	return true
}

func (it *Iterator) Key() []byte   { return it.current.key }
func (it *Iterator) Value() []byte { return it.current.value }
func (it *Iterator) Error() error  { return it.iter.Error() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}

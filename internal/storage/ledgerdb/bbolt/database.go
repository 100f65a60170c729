// Package bbolt implements the ledgerdb interface on top of bbolt.
// A single-file B+tree store; useful where the deployment cannot afford
// pebble's directory layout and compaction background work.
package bbolt

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"vaultd/internal/storage/ledgerdb"
)

var bucketName = []byte("ledger")

type DB struct {
	db *bbolt.DB
}

// Open opens (or creates) a bbolt-backed ledger database at path.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt ledgerdb at %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bbolt bucket: %w", err)
	}
	return &DB{db: db}, nil
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if b.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket(bucketName).Get(key)
		if val == nil {
			return ledgerdb.ErrKeyNotFound
		}
		// Values are only valid for the duration of the transaction.
		value = make([]byte, len(val))
		copy(value, val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key, value []byte) error {
	if b.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	if b.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

func (b *DB) Batch(ctx context.Context, ops []ledgerdb.BatchOperation) error {
	if b.db == nil {
		return ledgerdb.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, op := range ops {
			var err error
			switch op.Type {
			case ledgerdb.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case ledgerdb.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("unknown batch operation type: %d", op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *DB) Iterator(ctx context.Context, start, end []byte) (ledgerdb.Iterator, error) {
	if b.db == nil {
		return nil, ledgerdb.ErrDBClosed
	}
	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, err
	}
	return &Iterator{
		tx:     tx,
		cursor: tx.Bucket(bucketName).Cursor(),
		start:  start,
		end:    end,
	}, nil
}

func (b *DB) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Iterator walks the bucket inside a read-only transaction that stays
// open until Close.
type Iterator struct {
	tx      *bbolt.Tx
	cursor  *bbolt.Cursor
	start   []byte
	end     []byte
	started bool
	current struct {
		key, value []byte
	}
}

func (it *Iterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		if it.start == nil {
			k, v = it.cursor.First()
		} else {
			k, v = it.cursor.Seek(it.start)
		}
	} else {
		k, v = it.cursor.Next()
	}

	if k == nil || (it.end != nil && bytes.Compare(k, it.end) >= 0) {
		it.current.key = nil
		it.current.value = nil
		return false
	}

	keyCopy := make([]byte, len(k))
	copy(keyCopy, k)
	valCopy := make([]byte, len(v))
	copy(valCopy, v)
	it.current.key = keyCopy
	it.current.value = valCopy
	return true
}

func (it *Iterator) Key() []byte   { return it.current.key }
func (it *Iterator) Value() []byte { return it.current.value }
func (it *Iterator) Error() error  { return nil }

func (it *Iterator) Close() error {
	return it.tx.Rollback()
}

package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultd/internal/storage/ledgerdb"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBBoltReadWriteDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, ledgerdb.ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	val, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, ledgerdb.ErrKeyNotFound)
}

func TestBBoltBatchAndIteratorBounds(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ops := []ledgerdb.BatchOperation{
		{Type: ledgerdb.BatchPut, Key: []byte("b/1"), Value: []byte("1")},
		{Type: ledgerdb.BatchPut, Key: []byte("b/2"), Value: []byte("2")},
		{Type: ledgerdb.BatchPut, Key: []byte("c/1"), Value: []byte("3")},
	}
	require.NoError(t, db.Batch(ctx, ops))

	it, err := db.Iterator(ctx, []byte("b/"), []byte("b/\xff"))
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	require.Equal(t, []string{"b/1", "b/2"}, keys)
}

func TestBBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	val, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
}

func TestBBoltClosedDBRejectsOperations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorIs(t, db.Write(ctx, []byte("k"), []byte("v")), ledgerdb.ErrDBClosed)
	_, err := db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, ledgerdb.ErrDBClosed)
	_, err = db.Iterator(ctx, nil, nil)
	require.ErrorIs(t, err, ledgerdb.ErrDBClosed)
}

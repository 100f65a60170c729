package ledgerdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteDelete(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	val, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryBatchIsAtomicUnit(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("a"), []byte("1")))

	ops := []BatchOperation{
		{Type: BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: BatchDelete, Key: []byte("a")},
		{Type: BatchPut, Key: []byte("c"), Value: []byte("3")},
	}
	require.NoError(t, db.Batch(ctx, ops))

	_, err := db.Read(ctx, []byte("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	for _, k := range []string{"b", "c"} {
		_, err := db.Read(ctx, []byte(k))
		require.NoError(t, err)
	}
}

func TestMemoryIteratorBounds(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	for _, k := range []string{"b/1", "b/2", "b/3", "c/1"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
	}

	it, err := db.Iterator(ctx, []byte("b/"), []byte("b/\xff"))
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	require.Equal(t, []string{"b/1", "b/2", "b/3"}, keys)
}

func TestMemoryClosedDBRejectsOperations(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorIs(t, db.Write(ctx, []byte("k"), []byte("v")), ErrDBClosed)
	_, err := db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, ErrDBClosed)
	_, err = db.Iterator(ctx, nil, nil)
	require.ErrorIs(t, err, ErrDBClosed)
}

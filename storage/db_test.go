package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBPutGet(t *testing.T) {
	db := NewMemDB()
	defer func() { require.NoError(t, db.Close()) }()

	_, ok, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("k"), []byte("v1")))
	value, ok, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)

	require.NoError(t, db.Put([]byte("k"), []byte("v2")))
	value, _, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), value)
	require.Equal(t, 1, db.Len())
}

func TestMemDBDefensiveCopies(t *testing.T) {
	db := NewMemDB()
	key := []byte("k")
	value := []byte("original")
	require.NoError(t, db.Put(key, value))

	value[0] = 'X'
	stored, _, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), stored, "stored value must not alias the caller's slice")

	stored[0] = 'Y'
	again, _, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), again, "returned value must not alias storage")
}

func TestLevelDBPutGet(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, ok, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok, "missing key must not be an error")

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	value, ok, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)
}

package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns one constructor per KeyValueStore implementation
// under test, so the behavioural tests below run against both.
func backends(t *testing.T) map[string]KeyValueStore {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir(), "write-key")
	require.NoError(t, err)

	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestKeyValueStoreReadWriteRemove(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 42, store.ReadInt("missing", 42))
			assert.NoError(t, store.WriteInt("k", 7))
			assert.Equal(t, 7, store.ReadInt("k", 0))
			assert.NoError(t, store.RemoveInt("k"))
			assert.Equal(t, 0, store.ReadInt("k", 0))

			assert.Equal(t, int64(99), store.ReadLong("missing", 99))
			assert.NoError(t, store.WriteLong("k", int64(123456789)))
			assert.Equal(t, int64(123456789), store.ReadLong("k", 0))

			assert.True(t, store.ReadBool("missing", true))
			assert.NoError(t, store.WriteBool("k2", true))
			assert.True(t, store.ReadBool("k2", false))

			assert.Equal(t, "def", store.ReadString("missing", "def"))
			assert.NoError(t, store.WriteString("k3", "value"))
			assert.Equal(t, "value", store.ReadString("k3", ""))
		})
	}
}

func TestKeyValueStoreTypeMismatchReturnsDefault(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.WriteString("k", "a string"))

			assert.Equal(t, 0, store.ReadInt("k", 0))
			assert.Equal(t, int64(0), store.ReadLong("k", 0))
			assert.False(t, store.ReadBool("k", false))
		})
	}
}

func TestKeyValueStoreDeleteClearsEverything(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.WriteInt("a", 1))
			assert.NoError(t, store.WriteString("b", "x"))

			assert.NoError(t, store.Delete())

			assert.Equal(t, 0, store.ReadInt("a", 0))
			assert.Equal(t, "", store.ReadString("b", ""))
		})
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir, "write-key")
	require.NoError(t, err)
	require.NoError(t, store.WriteLong("counter", 5))

	reopened, err := NewFileStore(dir, "write-key")
	require.NoError(t, err)
	assert.Equal(t, int64(5), reopened.ReadLong("counter", 0))
}

func TestFileStorePathIsScopedToWriteKey(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir, "abc")
	require.NoError(t, err)
	require.NoError(t, store.WriteInt("k", 1))

	assert.FileExists(t, filepath.Join(dir, "abc.properties.json"))
}

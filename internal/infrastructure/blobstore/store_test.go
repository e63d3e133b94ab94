package blobstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "blobs", "objects.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("u1/1700000000000.jpg", Object{ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}))

	obj, err := store.Get("u1/1700000000000.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, obj.Data)
	assert.False(t, obj.CreatedAt.IsZero())

	require.NoError(t, store.Delete("u1/1700000000000.jpg"))
	_, err = store.Get("u1/1700000000000.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete("u1/1700000000000.jpg"))
}

func TestPutRefusesTakenKey(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("u1/1.jpg", Object{ContentType: "image/jpeg", Data: []byte("first")}))
	err := store.Put("u1/1.jpg", Object{ContentType: "image/jpeg", Data: []byte("second")})
	assert.ErrorIs(t, err, ErrExists)

	obj, err := store.Get("u1/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), obj.Data)

	require.NoError(t, store.Put("u2/1.jpg", Object{Data: []byte("x")}))
	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// a deleted key is free again
	require.NoError(t, store.Delete("u1/1.jpg"))
	assert.NoError(t, store.Put("u1/1.jpg", Object{Data: []byte("again")}))
}

package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "snap.svc")
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdef"))
	require.NoError(t, err)

	// Visible only after Close.
	_, err = store.Open(ctx, "snap.svc")
	require.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "snap.svc")
	require.NoError(t, err)
	require.Equal(t, int64(6), blob.Size())

	buf := make([]byte, 3)
	n, err := blob.ReadAt(buf, 3)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "def", string(buf))

	// Past the end.
	n, err = blob.ReadAt(buf, 5)
	require.Equal(t, io.EOF, err)
	require.Equal(t, 1, n)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"snap.svc"}, names)

	require.NoError(t, store.Delete(ctx, "snap.svc"))
	_, err = store.Open(ctx, "snap.svc")
	require.True(t, errors.Is(err, ErrNotFound))
}

package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutGet(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Put(ctx, "a/b/c.bin", []byte("payload")))

	data, err := s.Get(ctx, "a/b/c.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	_, err = s.Get(ctx, "a/b/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalPutOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Put(ctx, "k", []byte("one")))
	require.NoError(t, s.Put(ctx, "k", []byte("two")))

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestLocalList(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Put(ctx, "f_v1_0_abc.chunks/meta.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, "f_v1_0_abc.chunks/c.0.0", []byte("x")))
	require.NoError(t, s.Put(ctx, "g_v1_0_abc.chunks/meta.json", []byte("{}")))

	keys, err := s.List(ctx, "f_v1_")
	require.NoError(t, err)
	assert.Equal(t, []string{"f_v1_0_abc.chunks/c.0.0", "f_v1_0_abc.chunks/meta.json"}, keys)

	// Missing root lists as empty.
	empty := NewLocal(filepath.Join(t.TempDir(), "nope"))
	keys, err = empty.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Put(ctx, "f_v1_0_abc.chunks/meta.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, "f_v1_0_abc.chunks/c.0.0", []byte("x")))
	require.NoError(t, s.Put(ctx, "f_v1_1_abc.chunks/c.0.0", []byte("y")))

	require.NoError(t, s.DeletePrefix(ctx, "f_v1_0_abc.chunks"))

	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"f_v1_1_abc.chunks/c.0.0"}, keys)
}

func TestLocalDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Delete(ctx, "never/existed"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Put(ctx, "x/1", []byte("a")))
	require.NoError(t, s.Put(ctx, "x/2", []byte("b")))
	require.NoError(t, s.Put(ctx, "y/1", []byte("c")))

	keys, err := s.List(ctx, "x/")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/1", "x/2"}, keys)

	require.NoError(t, s.DeletePrefix(ctx, "x/"))
	keys, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"y/1"}, keys)

	_, err = s.Get(ctx, "x/1")
	assert.ErrorIs(t, err, ErrNotFound)
}

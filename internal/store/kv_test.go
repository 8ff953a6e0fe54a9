package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
)

func testKVContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.True(t, memerr.IsNotFound(err), "missing key: %v", err)

	require.NoError(t, kv.Put(ctx, "contributor_colors", []byte(`{"a":"#f43d3d"}`)))
	got, err := kv.Get(ctx, "contributor_colors")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"#f43d3d"}`, string(got))

	require.NoError(t, kv.Put(ctx, "contributor_colors", []byte(`{}`)))
	got, err = kv.Get(ctx, "contributor_colors")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	require.NoError(t, kv.Delete(ctx, "contributor_colors"))
	_, err = kv.Get(ctx, "contributor_colors")
	assert.True(t, memerr.IsNotFound(err))

	// Deleting a missing key is fine.
	require.NoError(t, kv.Delete(ctx, "contributor_colors"))
}

func TestMemoryKV(t *testing.T) {
	testKVContract(t, NewMemoryKV())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", value))
	value[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileKV(t *testing.T) {
	testKVContract(t, NewFileKV(filepath.Join(t.TempDir(), "cache")))
}

func TestFileKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewFileKV(dir).Put(ctx, "next_color_index", []byte("4")))
	got, err := NewFileKV(dir).Get(ctx, "next_color_index")
	require.NoError(t, err)
	assert.Equal(t, "4", string(got))
}

// flakyKV is a KV whose operations can be made to fail.
type flakyKV struct {
	*MemoryKV
	failGet bool
	failPut bool
}

var errUnavailable = errors.New("remote unavailable")

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errUnavailable
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errUnavailable
	}
	return f.MemoryKV.Put(ctx, key, value)
}

func TestTieredKV_Contract(t *testing.T) {
	testKVContract(t, NewTieredKV(NewMemoryKV(), NewMemoryKV(), logging.NewNop()))
	testKVContract(t, NewTieredKV(nil, NewMemoryKV(), nil))
}

func TestTieredKV_RemoteHitRefreshesLocal(t *testing.T) {
	remote, local := NewMemoryKV(), NewMemoryKV()
	kv := NewTieredKV(remote, local, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, remote.Put(ctx, "k", []byte("remote")))
	require.NoError(t, local.Put(ctx, "k", []byte("stale")))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(got))

	got, err = local.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(got))
}

func TestTieredKV_FallsBackToLocal(t *testing.T) {
	remote := &flakyKV{MemoryKV: NewMemoryKV()}
	local := NewMemoryKV()
	kv := NewTieredKV(remote, local, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, local.Put(ctx, "k", []byte("local")))

	// Remote miss.
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "local", string(got))

	// Remote failure.
	remote.failGet = true
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "local", string(got))
}

func TestTieredKV_PutKeepsLocalOnRemoteFailure(t *testing.T) {
	remote := &flakyKV{MemoryKV: NewMemoryKV(), failPut: true}
	local := NewMemoryKV()
	kv := NewTieredKV(remote, local, logging.NewNop())
	ctx := context.Background()

	err := kv.Put(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)

	got, err := local.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	remote.failPut = false
	require.NoError(t, kv.Put(ctx, "k", []byte("v2")))
	got, err = remote.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

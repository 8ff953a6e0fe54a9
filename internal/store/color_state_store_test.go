package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
)

func TestColorStateStore_EmptyKV(t *testing.T) {
	s := NewColorStateStore(NewMemoryKV())

	state, err := s.LoadState(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, state.Assignments)
	assert.Empty(t, state.Assignments)
	assert.False(t, state.HasCursor)
}

func TestColorStateStore_RoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	s := NewColorStateStore(kv)
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, model.ColorState{
		Assignments: map[string]string{"a@example.com": "#f43d3d", "b@example.com": "#b2e5df"},
		Cursor:      2,
	}))

	raw, err := kv.Get(ctx, ColorsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a@example.com":"#f43d3d","b@example.com":"#b2e5df"}`, string(raw))
	raw, err = kv.Get(ctx, CursorKey)
	require.NoError(t, err)
	assert.Equal(t, "2", string(raw))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Cursor)
	assert.True(t, state.HasCursor)
	assert.Len(t, state.Assignments, 2)
}

func TestColorStateStore_QuotedCursor(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, CursorKey, []byte(`"7"`)))

	state, err := NewColorStateStore(kv).LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, state.Cursor)
	assert.True(t, state.HasCursor)
}

func TestColorStateStore_MalformedPayloads(t *testing.T) {
	ctx := context.Background()

	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, ColorsKey, []byte(`["not","a","map"]`)))
	_, err := NewColorStateStore(kv).LoadState(ctx)
	assert.True(t, memerr.IsCorrupt(err))

	kv = NewMemoryKV()
	require.NoError(t, kv.Put(ctx, CursorKey, []byte(`"seven"`)))
	_, err = NewColorStateStore(kv).LoadState(ctx)
	assert.Error(t, err)
}

func TestColorStateStore_NullMap(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, ColorsKey, []byte(`null`)))

	state, err := NewColorStateStore(kv).LoadState(ctx)
	require.NoError(t, err)
	assert.NotNil(t, state.Assignments)
}

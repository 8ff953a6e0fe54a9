package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
)

// Keys under which the color engine's state is stored.
const (
	ColorsKey = "contributor_colors"
	CursorKey = "next_color_index"
)

// KVColorStateStore persists the color engine's state in a KV as two
// keys: the identity->color map and the cursor.
type KVColorStateStore struct {
	kv KV
}

// NewColorStateStore creates a color state store over kv.
func NewColorStateStore(kv KV) *KVColorStateStore {
	return &KVColorStateStore{kv: kv}
}

// LoadState reads both keys. Missing keys yield an empty map and
// HasCursor false; malformed payloads are errors.
func (s *KVColorStateStore) LoadState(ctx context.Context) (*model.ColorState, error) {
	state := &model.ColorState{Assignments: map[string]string{}}

	data, err := s.kv.Get(ctx, ColorsKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &state.Assignments); err != nil {
			return nil, &memerr.CorruptRecordError{Key: ColorsKey, Err: err}
		}
		if state.Assignments == nil {
			state.Assignments = map[string]string{}
		}
	case memerr.IsNotFound(err):
	default:
		return nil, err
	}

	data, err = s.kv.Get(ctx, CursorKey)
	switch {
	case err == nil:
		cursor, err := parseCursor(data)
		if err != nil {
			return nil, &memerr.CorruptRecordError{Key: CursorKey, Err: err}
		}
		state.Cursor = cursor
		state.HasCursor = true
	case memerr.IsNotFound(err):
	default:
		return nil, err
	}

	return state, nil
}

// parseCursor accepts a JSON integer or a quoted integer, the form the
// browser client's localStorage produced.
func parseCursor(data []byte) (int, error) {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("not an integer: %s", data)
	}
	return strconv.Atoi(s)
}

// SaveState rewrites both keys. The map is written first so a failure
// between the writes leaves a cursor that is at worst stale, which
// Restore corrects.
func (s *KVColorStateStore) SaveState(ctx context.Context, state model.ColorState) error {
	assignments := state.Assignments
	if assignments == nil {
		assignments = map[string]string{}
	}
	data, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", ColorsKey, err)
	}
	if err := s.kv.Put(ctx, ColorsKey, data); err != nil {
		return err
	}
	if err := s.kv.Put(ctx, CursorKey, []byte(strconv.Itoa(state.Cursor))); err != nil {
		return err
	}
	return nil
}

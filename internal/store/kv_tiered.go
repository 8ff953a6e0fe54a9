package store

import (
	"context"
	"fmt"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
)

// TieredKV layers a remote KV over a local one.
//
// Reads prefer the remote tier and refresh the local copy on a hit; a
// remote miss or failure falls back to local. Writes always land locally
// first, then remotely, and a remote write error is returned after the
// local copy is safe. With a nil remote it is the local KV.
type TieredKV struct {
	remote KV
	local  KV
	logger logging.Logger
}

var _ KV = (*TieredKV)(nil)

// NewTieredKV creates a tiered KV. remote may be nil.
func NewTieredKV(remote, local KV, logger logging.Logger) *TieredKV {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TieredKV{remote: remote, local: local, logger: logger}
}

func (t *TieredKV) Get(ctx context.Context, key string) ([]byte, error) {
	if t.remote == nil {
		return t.local.Get(ctx, key)
	}

	value, err := t.remote.Get(ctx, key)
	if err == nil {
		if err := t.local.Put(ctx, key, value); err != nil {
			t.logger.Warn("failed to refresh local copy", "key", key, "error", err)
		}
		return value, nil
	}
	if !memerr.IsNotFound(err) {
		t.logger.Warn("remote read failed, using local copy", "key", key, "error", err)
	}
	return t.local.Get(ctx, key)
}

func (t *TieredKV) Put(ctx context.Context, key string, value []byte) error {
	if err := t.local.Put(ctx, key, value); err != nil {
		return err
	}
	if t.remote == nil {
		return nil
	}
	if err := t.remote.Put(ctx, key, value); err != nil {
		return fmt.Errorf("remote write of %s failed (local copy kept): %w", key, err)
	}
	return nil
}

func (t *TieredKV) Delete(ctx context.Context, key string) error {
	if err := t.local.Delete(ctx, key); err != nil {
		return err
	}
	if t.remote == nil {
		return nil
	}
	if err := t.remote.Delete(ctx, key); err != nil {
		return fmt.Errorf("remote delete of %s failed: %w", key, err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKV is a KV backed by a NATS JetStream key-value bucket.
type NATSKV struct {
	kv      jetstream.KeyValue
	timeout time.Duration
	conn    *nats.Conn // owned connection, nil when borrowed
}

var _ KV = (*NATSKV)(nil)

// NATSOption configures a NATSKV.
type NATSOption func(*NATSKV)

// WithNATSTimeout bounds each KV operation. Zero means no extra bound
// beyond the caller's context.
func WithNATSTimeout(d time.Duration) NATSOption {
	return func(n *NATSKV) {
		n.timeout = d
	}
}

// NewNATSKV opens (creating if needed) the bucket over an existing
// connection. The caller keeps ownership of nc.
func NewNATSKV(ctx context.Context, nc *nats.Conn, bucket string, opts ...NATSOption) (*NATSKV, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := ensureKVBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "memmap shared state",
		History:     1,
	}, 5)
	if err != nil {
		return nil, err
	}

	n := &NATSKV{kv: kv}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// DialNATSKV connects to url and opens the bucket. Close releases the
// connection.
func DialNATSKV(ctx context.Context, url, bucket string, opts ...NATSOption) (*NATSKV, error) {
	nc, err := nats.Connect(url,
		nats.Name("memmap"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	n, err := NewNATSKV(ctx, nc, bucket, opts...)
	if err != nil {
		nc.Close()
		return nil, err
	}
	n.conn = nc
	return n, nil
}

// Close closes the connection if NATSKV owns it.
func (n *NATSKV) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

func (n *NATSKV) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.timeout > 0 {
		return context.WithTimeout(ctx, n.timeout)
	}
	return context.WithCancel(ctx)
}

func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := n.opContext(ctx)
	defer cancel()

	entry, err := n.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, memerr.KeyNotFound(key)
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value(), nil
}

func (n *NATSKV) Put(ctx context.Context, key string, value []byte) error {
	ctx, cancel := n.opContext(ctx)
	defer cancel()

	if _, err := n.kv.Put(ctx, natsKey(key), value); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

func (n *NATSKV) Delete(ctx context.Context, key string) error {
	ctx, cancel := n.opContext(ctx)
	defer cancel()

	if err := n.kv.Delete(ctx, natsKey(key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// natsKey maps a key onto the JetStream key alphabet [-/_=.a-zA-Z0-9].
// Other characters become '_', and leading or trailing dots are trimmed.
func natsKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '/' || r == '_' || r == '=' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	k := strings.Trim(b.String(), ".")
	if k == "" {
		return "_"
	}
	return k
}

// ensureKVBucket creates or opens a KV bucket, retrying transient
// failures with exponential backoff (10ms, 20ms, 40ms, ...).
func ensureKVBucket(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig, maxRetries int) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, cfg.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		cfg.Bucket, maxRetries, lastErr)
}

package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSOptions configures the JetStream key-value backend.
type NATSOptions struct {
	URL    string
	Bucket string
}

// NATS stores entries in a JetStream key-value bucket. Per-key expiry is kept
// in an 8 byte header in front of each value and checked on read.
type NATS struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
	now  func() time.Time
}

// NewNATS connects to NATS and opens (or creates) the bucket.
func NewNATS(ctx context.Context, opts NATSOptions) (*NATS, error) {
	conn, err := nats.Connect(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := js.KeyValue(initCtx, opts.Bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(initCtx, jetstream.KeyValueConfig{
			Bucket:      opts.Bucket,
			Description: "docsite response cache",
			MaxBytes:    256 * 1024 * 1024,
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create KV bucket: %w", err)
		}
		slog.Info("Created KV bucket for response cache", "bucket", opts.Bucket)
	}

	return &NATS{conn: conn, kv: kv, now: time.Now}, nil
}

func (n *NATS) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, expires, ok := unwrapEnvelope(entry.Value())
	if !ok {
		return nil, false, nil
	}
	if !expires.IsZero() && !n.now().Before(expires) {
		_ = n.kv.Delete(ctx, encodeKey(key))
		return nil, false, nil
	}
	return value, true, nil
}

func (n *NATS) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = n.now().Add(ttl)
	}
	_, err := n.kv.Put(ctx, encodeKey(key), wrapEnvelope(value, expires))
	return err
}

func (n *NATS) Purge(ctx context.Context, prefix string) (int, error) {
	lister, err := n.kv.ListKeys(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = lister.Stop() }()

	removed := 0
	for k := range lister.Keys() {
		key, ok := decodeKey(k)
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := n.kv.Purge(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (n *NATS) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}

func wrapEnvelope(value []byte, expires time.Time) []byte {
	out := make([]byte, 8+len(value))
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(out[:8], uint64(expires.UnixNano()))
	}
	copy(out[8:], value)
	return out
}

func unwrapEnvelope(data []byte) ([]byte, time.Time, bool) {
	if len(data) < 8 {
		return nil, time.Time{}, false
	}
	var expires time.Time
	if ns := binary.BigEndian.Uint64(data[:8]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return data[8:], expires, true
}

// encodeKey maps an arbitrary key onto the KV key alphabet
// ([-/_=.a-zA-Z0-9]). Every other byte, and '=' itself, becomes =XX.
func encodeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '/', c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "=%02X", c)
		}
	}
	return b.String()
}

func decodeKey(encoded string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(encoded); i++ {
		if encoded[i] != '=' {
			b.WriteByte(encoded[i])
			continue
		}
		if i+2 >= len(encoded) {
			return "", false
		}
		c, err := strconv.ParseUint(encoded[i+1:i+3], 16, 8)
		if err != nil {
			return "", false
		}
		b.WriteByte(byte(c))
		i += 2
	}
	return b.String(), true
}

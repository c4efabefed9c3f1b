package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrAbsent is returned by a loader when the value does not exist. With
// TTLs.Absent set the miss is cached as a tombstone, so repeated lookups of a
// missing id stop reaching the database.
var ErrAbsent = errors.New("cache: value absent")

var tombstone = []byte("null")

type TTLs struct {
	Hit    time.Duration
	Absent time.Duration // 0 disables negative caching
}

// GetOrLoadJSON reads key as JSON, filling a miss from load. A value that
// encodes to JSON null is indistinguishable from a tombstone.
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl TTLs, load func(context.Context) (T, error)) (T, error) {
	var zero T
	b, err := c.getOrLoad(ctx, key, func(ctx context.Context) ([]byte, time.Duration, error) {
		v, e := load(ctx)
		switch {
		case errors.Is(e, ErrAbsent) && ttl.Absent > 0:
			return tombstone, ttl.Absent, nil
		case e != nil:
			return nil, 0, e
		}
		raw, e := json.Marshal(v)
		return raw, ttl.Hit, e
	})
	if err != nil {
		return zero, err
	}
	if bytes.Equal(b, tombstone) {
		return zero, ErrAbsent
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return out, nil
}

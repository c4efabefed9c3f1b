package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store is the subset of redis commands the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Cache struct {
	store Store
	sf    singleflight.Group
}

func New(addr, pass string, db int) (*Cache, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	return NewWithStore(redisStore{rdb}), rdb
}

func NewWithStore(s Store) *Cache { return &Cache{store: s} }

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// getOrLoad lets the loader pick the TTL, so hits and tombstones can expire differently.
func (c *Cache) getOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, time.Duration, error)) ([]byte, error) {
	// 先读缓存
	if b, err := c.store.Get(ctx, key); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, ttl, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.store.Set(ctx, key, b, ttl)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	return c.store.Del(ctx, keys...)
}

// Generation returns the tag currently scoping the entries under name, "0" when unset.
func (c *Cache) Generation(ctx context.Context, name string) (string, error) {
	b, err := c.store.Get(ctx, name)
	if errors.Is(err, ErrMiss) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bump moves name to a fresh generation. Entries keyed on the old tag are never
// read again, including ones written later by loads that were already in flight.
func (c *Cache) Bump(ctx context.Context, name string, ttl time.Duration) error {
	return c.store.Set(ctx, name, []byte(uuid.NewString()), ttl)
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, val, ttl).Err()
}

func (s redisStore) Del(ctx context.Context, keys ...string) error {
	return s.rdb.Del(ctx, keys...).Err()
}

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[key]
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

func (s *memStore) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = val
	return nil
}

func (s *memStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

type payload struct {
	Status string `json:"status"`
}

var minute = TTLs{Hit: time.Minute, Absent: time.Minute}

func TestGetOrLoadJSON_CachesLoaderResult(t *testing.T) {
	c := NewWithStore(newMemStore())
	var calls int32
	load := func(context.Context) (payload, error) {
		atomic.AddInt32(&calls, 1)
		return payload{Status: "ACTIVE"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(context.Background(), c, "user:1:status", minute, load)
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE", got.Status)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSON_CachesAbsentValues(t *testing.T) {
	c := NewWithStore(newMemStore())
	var calls int32
	load := func(context.Context) (payload, error) {
		atomic.AddInt32(&calls, 1)
		return payload{}, ErrAbsent
	}

	for i := 0; i < 3; i++ {
		_, err := GetOrLoadJSON(context.Background(), c, "user:404:status", minute, load)
		assert.ErrorIs(t, err, ErrAbsent)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSON_AbsentNotCachedWithoutTTL(t *testing.T) {
	c := NewWithStore(newMemStore())
	var calls int32
	load := func(context.Context) (payload, error) {
		atomic.AddInt32(&calls, 1)
		return payload{}, ErrAbsent
	}

	for i := 0; i < 2; i++ {
		_, err := GetOrLoadJSON(context.Background(), c, "k", TTLs{Hit: time.Minute}, load)
		assert.ErrorIs(t, err, ErrAbsent)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidate_ForcesReload(t *testing.T) {
	c := NewWithStore(newMemStore())
	status := "ACTIVE"
	load := func(context.Context) (payload, error) { return payload{Status: status}, nil }

	_, err := GetOrLoadJSON(context.Background(), c, "k", minute, load)
	require.NoError(t, err)

	status = "BANNED"
	require.NoError(t, c.Invalidate(context.Background(), "k"))

	got, err := GetOrLoadJSON(context.Background(), c, "k", minute, load)
	require.NoError(t, err)
	assert.Equal(t, "BANNED", got.Status)
}

func TestGetOrLoadJSON_LoaderErrorIsNotCached(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store)
	boom := errors.New("db down")

	_, err := GetOrLoadJSON(context.Background(), c, "k", minute, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestGeneration_BumpHidesOldEntries(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := NewWithStore(store)

	gen, err := c.Generation(ctx, "user:1:gen")
	require.NoError(t, err)
	assert.Equal(t, "0", gen)

	require.NoError(t, c.Bump(ctx, "user:1:gen", time.Minute))
	next, err := c.Generation(ctx, "user:1:gen")
	require.NoError(t, err)
	assert.NotEqual(t, gen, next)

	// a write keyed on the old tag after the bump stays unreachable
	require.NoError(t, store.Set(ctx, "user:1:"+gen, []byte(`{"status":"ACTIVE"}`), time.Minute))
	got, err := GetOrLoadJSON(ctx, c, "user:1:"+next, minute, func(context.Context) (payload, error) {
		return payload{Status: "BANNED"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "BANNED", got.Status)
}

// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package session_test

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/session"
)

func TestTicketCache(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T, cache *session.TicketCache)
	}{
		{
			name: "Get miss and hit",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				_, ok := cache.Get("example.com:443")
				assert.False(t, ok)

				state := &tls.ClientSessionState{}
				cache.Put("example.com:443", state)

				got, ok := cache.Get("example.com:443")
				require.True(t, ok)
				assert.Same(t, state, got)

				m := cache.Metrics()
				assert.Equal(t, int64(1), m.Hits)
				assert.Equal(t, int64(1), m.Misses)
				assert.Equal(t, int64(1), m.Size)
			},
		},
		{
			name: "Nil state removes entry",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				cache.Put("a", &tls.ClientSessionState{})
				cache.Put("a", nil)
				cache.Put("missing", nil)

				_, ok := cache.Get("a")
				assert.False(t, ok)
				assert.Zero(t, cache.Len())
			},
		},
		{
			name: "LRU eviction",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				cache.Put("a", &tls.ClientSessionState{})
				cache.Put("b", &tls.ClientSessionState{})
				cache.Put("c", &tls.ClientSessionState{})

				// touch a so b becomes least recently used
				_, ok := cache.Get("a")
				require.True(t, ok)

				cache.Put("d", &tls.ClientSessionState{})

				_, ok = cache.Get("b")
				assert.False(t, ok, "b should have been evicted")
				for _, k := range []string{"a", "c", "d"} {
					_, ok := cache.Get(k)
					assert.True(t, ok, "%s should still be cached", k)
				}
				assert.Equal(t, int64(1), cache.Metrics().Evictions)
			},
		},
		{
			name: "Replacing does not evict",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				cache.Put("a", &tls.ClientSessionState{})
				cache.Put("b", &tls.ClientSessionState{})
				cache.Put("c", &tls.ClientSessionState{})
				cache.Put("a", &tls.ClientSessionState{})

				assert.Equal(t, 3, cache.Len())
				assert.Zero(t, cache.Metrics().Evictions)
			},
		},
		{
			name: "Teardown drops everything",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				cache.Put("a", &tls.ClientSessionState{})
				cache.Put("b", &tls.ClientSessionState{})

				dropped, err := cache.LogoutAndTeardown(context.Background())
				require.NoError(t, err)
				assert.Equal(t, 2, dropped)

				assert.Zero(t, cache.Len())
				_, ok := cache.Get("a")
				assert.False(t, ok)
				assert.Equal(t, int64(1), cache.Metrics().Teardowns)
				assert.Contains(t, cache.Stats(), "Teardowns: 1")
			},
		},
		{
			name: "Concurrent access",
			testFunc: func(t *testing.T, cache *session.TicketCache) {
				var wg sync.WaitGroup
				for i := range 16 {
					wg.Add(1)
					go func(id int) {
						defer wg.Done()
						key := fmt.Sprintf("host-%d", id%4)
						cache.Put(key, &tls.ClientSessionState{})
						cache.Get(key)
					}(i)
				}
				wg.Wait()
				assert.LessOrEqual(t, cache.Len(), 3)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t, session.NewTicketCache(3))
		})
	}
}

func TestTicketCacheDefaultSize(t *testing.T) {
	cache := session.NewTicketCache(0)
	assert.Contains(t, cache.Stats(), "0/64")
}

func TestDirCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes contents and keeps directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ticket-1"), []byte("secret"), 0o600))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deeper"), 0o700))

		removed, err := session.DirCache{Dir: dir}.LogoutAndTeardown(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "absent")
		removed, err := session.DirCache{Dir: dir}.LogoutAndTeardown(ctx)
		assert.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("Unset directory", func(t *testing.T) {
		removed, err := session.DirCache{}.LogoutAndTeardown(ctx)
		assert.NoError(t, err)
		assert.Zero(t, removed)
	})
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	var calls []string

	failing := session.InvalidatorFunc(func(context.Context) (int, error) {
		calls = append(calls, "failing")
		return 1, errors.New("sdr unavailable")
	})
	ok := session.InvalidatorFunc(func(context.Context) (int, error) {
		calls = append(calls, "ok")
		return 2, nil
	})

	dropped, err := session.Multi{failing, nil, ok}.LogoutAndTeardown(ctx)
	assert.ErrorContains(t, err, "sdr unavailable")
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []string{"failing", "ok"}, calls, "every member must be attempted")

	dropped, err = session.Multi{}.LogoutAndTeardown(ctx)
	assert.NoError(t, err)
	assert.Zero(t, dropped)
}

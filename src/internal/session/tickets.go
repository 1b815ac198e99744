// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"sync/atomic"
)

// TicketCacheMetrics tracks cache performance and usage
type TicketCacheMetrics struct {
	Size      int64 `json:"size"`      // Current number of cached sessions
	Hits      int64 `json:"hits"`      // Number of cache hits
	Misses    int64 `json:"misses"`    // Number of cache misses
	Evictions int64 `json:"evictions"` // Number of LRU evictions
	Teardowns int64 `json:"teardowns"` // Number of full teardowns
}

// TicketCache is an LRU [tls.ClientSessionCache] that can be torn down.
// Plug it into [tls.Config.ClientSessionCache] so resumption tickets issued
// while a compromised root was trusted can be dropped.
//
// TicketCache is safe for concurrent use by multiple goroutines.
type TicketCache struct {
	mu      sync.Mutex
	entries map[string]*tls.ClientSessionState
	order   []string // least recently used first
	maxSize int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	teardowns atomic.Int64
}

var _ tls.ClientSessionCache = (*TicketCache)(nil)

// NewTicketCache returns a cache holding at most maxSize sessions.
// A non-positive maxSize selects 64, the size crypto/tls uses for its own LRU.
func NewTicketCache(maxSize int) *TicketCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &TicketCache{
		entries: make(map[string]*tls.ClientSessionState),
		maxSize: maxSize,
	}
}

// Get implements [tls.ClientSessionCache].
func (c *TicketCache) Get(sessionKey string) (*tls.ClientSessionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.entries[sessionKey]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.touch(sessionKey)
	return state, true
}

// Put implements [tls.ClientSessionCache]. A nil state removes the entry.
func (c *TicketCache) Put(sessionKey string, cs *tls.ClientSessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cs == nil {
		if _, ok := c.entries[sessionKey]; ok {
			delete(c.entries, sessionKey)
			c.removeFromOrder(sessionKey)
		}
		return
	}

	if _, ok := c.entries[sessionKey]; !ok {
		for len(c.entries) >= c.maxSize && len(c.order) > 0 {
			lru := c.order[0]
			delete(c.entries, lru)
			c.order = c.order[1:]
			c.evictions.Add(1)
		}
	}

	c.entries[sessionKey] = cs
	c.touch(sessionKey)
}

// Len returns the number of cached sessions.
func (c *TicketCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// LogoutAndTeardown implements [Invalidator] by dropping every session.
func (c *TicketCache) LogoutAndTeardown(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.entries)
	c.entries = make(map[string]*tls.ClientSessionState)
	c.order = nil
	c.teardowns.Add(1)
	return dropped, nil
}

// Metrics returns current cache metrics.
func (c *TicketCache) Metrics() TicketCacheMetrics {
	c.mu.Lock()
	size := int64(len(c.entries))
	c.mu.Unlock()

	return TicketCacheMetrics{
		Size:      size,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Teardowns: c.teardowns.Load(),
	}
}

// Stats returns a formatted string with cache statistics
func (c *TicketCache) Stats() string {
	m := c.Metrics()

	hitRate := float64(0)
	if total := m.Hits + m.Misses; total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}

	return fmt.Sprintf("Session Ticket Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Teardowns: %d",
		m.Size, c.maxSize,
		hitRate, m.Hits, m.Misses,
		m.Evictions,
		m.Teardowns)
}

// touch moves key to the most recently used position.
func (c *TicketCache) touch(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *TicketCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

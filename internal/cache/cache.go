package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// TaskLists caches rendered task-list responses per (user, query) and drops
// every entry for a user when one of their tasks mutates. Implementations
// must treat a miss as non-fatal: the cache is transparent, the repo is the
// source of truth.
type TaskLists interface {
	Get(ctx context.Context, userID, queryKey string) ([]byte, bool)
	Set(ctx context.Context, userID, queryKey string, payload []byte)
	Invalidate(ctx context.Context, userID string)
}

type entry struct {
	val []byte
	exp time.Time
}

// Memory is the in-process backend. Invalidation bumps a per-user
// generation that is folded into each key, so stale entries just expire.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	gen map[string]uint64
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
		gen: make(map[string]uint64),
	}
}

func (c *Memory) Get(ctx context.Context, userID, queryKey string) ([]byte, bool) {
	now := time.Now()

	c.mu.RLock()
	key := c.key(userID, queryKey)
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Memory) Set(ctx context.Context, userID, queryKey string, payload []byte) {
	c.mu.Lock()
	c.m[c.key(userID, queryKey)] = entry{val: payload, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	c.gen[userID]++
	c.mu.Unlock()
}

// callers hold at least a read lock
func (c *Memory) key(userID, queryKey string) string {
	return "tasks:list:v1:u=" + userID + ":g=" + strconv.FormatUint(c.gen[userID], 10) + ":" + queryKey
}

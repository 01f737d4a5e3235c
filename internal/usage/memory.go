package usage

import (
	"context"
	"sync"
	"time"
)

type window struct {
	used    int
	resetAt time.Time
}

// MemoryCounter keeps counts in process. Windows start on first use.
type MemoryCounter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*window
	now    func() time.Time
}

func NewMemoryCounter(limit int, win time.Duration) *MemoryCounter {
	if win <= 0 {
		win = 24 * time.Hour
	}
	return &MemoryCounter{limit: limit, window: win, counts: make(map[string]*window), now: time.Now}
}

func (c *MemoryCounter) CheckAndIncrement(_ context.Context, scope string) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.current(normalizeScope(scope))
	if c.limit > 0 && w.used >= c.limit {
		st := c.status(w)
		return st, exceeded(st)
	}
	w.used++
	return c.status(w), nil
}

func (c *MemoryCounter) Release(_ context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.current(normalizeScope(scope)); w.used > 0 {
		w.used--
	}
	return nil
}

func (c *MemoryCounter) Peek(_ context.Context, scope string) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status(c.current(normalizeScope(scope))), nil
}

func (c *MemoryCounter) current(scope string) *window {
	now := c.now()
	w, ok := c.counts[scope]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(c.window)}
		c.counts[scope] = w
	}
	return w
}

func (c *MemoryCounter) status(w *window) Status {
	return Status{Used: w.used, Limit: c.limit, ResetAt: w.resetAt}
}

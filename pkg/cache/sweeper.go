package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// sweeper is the background worker (C6) that wakes every
// cfg.CleanupInterval and eagerly removes expired entries, so that a key
// nobody ever reads again is not held forever between lazy-expiry checks.
//
// Each wake cycle runs in two phases, per spec.md §4.5: a read-lock
// collection phase that only looks, and a write-lock removal phase that
// re-verifies each candidate before deleting it. The re-verification is
// load-bearing: between the two phases another goroutine may have
// overwritten the entry (refreshing createdAt), and that refreshed entry
// must survive the sweep.
type sweeper[K comparable, V any] struct {
	c *Cache[K, V]

	interval time.Duration
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newSweeper[K comparable, V any](c *Cache[K, V]) *sweeper[K, V] {
	ctx, cancel := context.WithCancel(context.Background())
	return &sweeper[K, V]{
		c:        c,
		interval: c.cfg.CleanupInterval,
		log:      c.log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// start launches the sweeper's daemon goroutine. It never blocks process
// shutdown on its own: it is unblocked either by its ticker or by stop()
// canceling ctx.
func (s *sweeper[K, V]) start() {
	s.wg.Add(1)
	go s.run()
}

func (s *sweeper[K, V]) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// sweepOnce implements one wake cycle: collect candidates under the read
// lock, then re-verify and remove each one under the write lock.
func (s *sweeper[K, V]) sweepOnce() {
	now := time.Now()

	s.c.mu.RLock()
	candidates := make([]K, 0)
	for _, k := range s.c.idx.keys() {
		e, ok := s.c.idx.get(k)
		if ok && e.expired(now, s.c.cfg.TTL) {
			candidates = append(candidates, k)
		}
	}
	s.c.mu.RUnlock()

	if len(candidates) == 0 {
		return
	}

	s.c.mu.Lock()
	removed := 0
	for _, k := range candidates {
		e, ok := s.c.idx.get(k)
		if !ok {
			continue // already removed between phases
		}
		if !e.expired(now, s.c.cfg.TTL) {
			continue // overwritten between phases; must survive
		}
		s.c.list.unlink(e)
		s.c.idx.remove(k)
		s.c.stats.recordExpired()
		removed++
	}
	s.c.mu.Unlock()

	if removed > 0 {
		s.log.Debug("sweeper removed expired entries",
			zap.Int("candidates", len(candidates)),
			zap.Int("removed", removed),
		)
	}
}

// stop cancels the sweeper's context and joins it. It is idempotent and
// bounded: if the goroutine does not exit promptly, stop still returns
// rather than blocking Shutdown forever.
func (s *sweeper[K, V]) stop() {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn("sweeper did not stop within bound")
	}
}

package cache

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is the concurrent LRU/TTL engine (C5). It composes an index
// (C4), a recency list (C3), and statistics (C1) under a single
// read/write lock, and owns a background sweeper (C6) once started.
//
// A Cache is an ordinary value with no process-wide singleton state: the
// sweeper goroutine belongs to its Cache instance and dies with
// Shutdown.
type Cache[K comparable, V any] struct {
	mu sync.RWMutex

	idx  *index[K, V]
	list *recencyList[K, V]
	cfg  Config[K, V]

	stats *Stats
	log   *zap.Logger

	sweeper *sweeper[K, V]

	group  singleflight.Group
	closed bool
}

// New constructs a Cache from cfg, validating Capacity, TTL, and
// CleanupInterval (E2 on violation; no resources allocated). The
// background sweeper is started immediately.
func New[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Cache[K, V]{
		idx:   newIndex[K, V](),
		list:  newRecencyList[K, V](),
		cfg:   cfg,
		stats: newStats(cfg.RecordStats),
		log:   cfg.Logger,
	}
	c.sweeper = newSweeper(c)
	c.sweeper.start()
	return c, nil
}

// Stats returns the live, mutable statistics handle.
func (c *Cache[K, V]) Stats() *Stats { return c.stats }

// Get performs the read path described in spec.md §4.4.1: a read-lock
// fast path on hit, upgraded to the write lock only to promote the entry
// or to confirm/act on lazy expiry, with re-verification after every
// lock upgrade. On miss, the configured Loader (if any) is invoked
// outside of any cache lock.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	if isNilArg(k) {
		panic(ErrNilArgument)
	}

	now := time.Now()

	c.mu.RLock()
	e, ok := c.idx.get(k)
	if !ok {
		c.mu.RUnlock()
		return c.onMiss(k)
	}

	if e.expired(now, c.cfg.TTL) {
		c.mu.RUnlock()
		return c.handleExpiredOnRead(k, e, now)
	}

	// Fresh hit: upgrade to the write lock to promote.
	c.mu.RUnlock()
	c.mu.Lock()
	e2, ok := c.idx.get(k)
	if !ok || e2 != e {
		// Removed/replaced between locks: treat as a fresh lookup.
		c.mu.Unlock()
		return c.Get(k)
	}
	if e2.expired(now, c.cfg.TTL) {
		c.mu.Unlock()
		return c.handleExpiredOnRead(k, e2, now)
	}
	c.list.moveToHead(e2)
	c.stats.recordHit()
	val := e2.value
	c.mu.Unlock()
	return val, true
}

// handleExpiredOnRead implements the "expired on read" branch of
// spec.md §4.4.1: release the read lock, acquire the write lock,
// re-verify the entry is still indexed and still expired (it may have
// been overwritten by another writer in between), and if so remove it.
func (c *Cache[K, V]) handleExpiredOnRead(k K, seen *entry[K, V], now time.Time) (V, bool) {
	c.mu.Lock()
	e, ok := c.idx.get(k)
	if ok && e == seen && e.expired(now, c.cfg.TTL) {
		c.list.unlink(e)
		c.idx.remove(k)
		c.stats.recordExpired()
		c.stats.recordMiss()
		c.mu.Unlock()
		return c.invokeLoader(k)
	}
	c.mu.Unlock()
	// Overwritten or already gone: fall back to a fresh lookup rather
	// than assuming either outcome.
	return c.Get(k)
}

var zeroNilArgSentinel struct{}

// onMiss handles an index miss on the fast path: record the miss and
// either return an empty result or run the loader path.
func (c *Cache[K, V]) onMiss(k K) (V, bool) {
	if c.cfg.Loader == nil {
		c.stats.recordMiss()
		var zero V
		return zero, false
	}
	c.stats.recordMiss()
	return c.invokeLoader(k)
}

// invokeLoader runs the configured Loader outside of any cache lock, per
// spec.md §4.4.4, coalescing concurrent misses on the same key via
// singleflight when Coalesce is enabled (SPEC_FULL.md §4.4.4 [ADD]).
func (c *Cache[K, V]) invokeLoader(k K) (V, bool) {
	var zero V
	if c.cfg.Loader == nil {
		return zero, false
	}

	type result struct {
		val   V
		found bool
	}

	load := func() (any, error) {
		v, err := c.cfg.Loader(k)
		if err != nil {
			c.stats.recordLoadFail()
			c.log.Warn("loader failed", zap.Any("key", k), zap.Error(err))
			return result{}, nil
		}
		if isNilArg(v) || reflect.ValueOf(&v).Elem().IsZero() {
			// (zero, nil) is "no value" (E4): a load, but no insertion.
			c.stats.recordLoad()
			return result{}, nil
		}
		c.stats.recordLoad()
		c.Put(k, v)
		return result{val: v, found: true}, nil
	}

	var res result
	if c.cfg.Coalesce {
		v, _, _ := c.group.Do(fmt.Sprint(k), load)
		res = v.(result)
	} else {
		v, _ := load()
		res = v.(result)
	}
	if !res.found {
		return zero, false
	}
	return res.val, true
}

// Put implements the write path of spec.md §4.4.2 under the write lock.
func (c *Cache[K, V]) Put(k K, v V) {
	if isNilArg(k) || isNilArg(v) {
		panic(ErrNilArgument)
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.recordPut()

	if e, ok := c.idx.get(k); ok {
		e.value = v
		e.createdAt = now
		c.list.moveToHead(e)
		return
	}

	if c.list.len() == c.cfg.Capacity {
		victim := c.list.popLRU()
		if victim != nil {
			c.idx.remove(victim.key)
			c.stats.recordEviction()
		}
	}

	e := &entry[K, V]{key: k, value: v, createdAt: now}
	c.idx.put(k, e)
	c.list.linkAtHead(e)
}

// Remove implements spec.md §4.4.3's remove operation.
func (c *Cache[K, V]) Remove(k K) bool {
	if isNilArg(k) {
		panic(ErrNilArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.idx.get(k)
	if !ok {
		return false
	}
	c.list.unlink(e)
	c.idx.remove(k)
	return true
}

// ContainsKey is a read-through predicate: it checks presence and
// freshness only, and explicitly does not touch recency order (spec.md
// §4.4, Open Questions).
func (c *Cache[K, V]) ContainsKey(k K) bool {
	if isNilArg(k) {
		panic(ErrNilArgument)
	}

	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.idx.get(k)
	if !ok {
		return false
	}
	return !e.expired(now, c.cfg.TTL)
}

// Size returns the current number of live entries.
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.len()
}

// IsEmpty reports whether Size() == 0.
func (c *Cache[K, V]) IsEmpty() bool {
	return c.Size() == 0
}

// Clear removes all entries and resets the recency list to its sentinel
// pair. Counters are untouched.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx.clear()
	c.list.reset()
}

// Keys returns a weakly-consistent snapshot of the current key set.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idx.keys()
}

// Shutdown stops the sweeper and releases resources. Further operations
// on the Cache are undefined after Shutdown returns.
func (c *Cache[K, V]) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.sweeper.stop()
}

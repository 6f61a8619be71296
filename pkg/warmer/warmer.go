// Package warmer implements the bulk pre-loader (C7) described in
// spec.md §4.6: an external collaborator that fills a Cache from a list
// of keys using a bounded-concurrency worker pool, entirely through the
// engine's public contract.
package warmer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Putter is the subset of cache.Cache the warmer depends on. Any
// Cache[K, V] satisfies it; the warmer is not aware of the engine's
// internals (index, list, lock) and only ever calls its public methods.
type Putter[K comparable, V any] interface {
	Put(k K, v V)
}

// Loader is the per-key value-producing capability the warmer drives.
// It is distinct from cache.Loader only in name, kept local so this
// package has no compile-time coupling to the engine's Loader type
// beyond the Putter interface above.
type Loader[K comparable, V any] func(k K) (V, error)

// Config configures a Warmer. Concurrency must be positive and Loader
// must be present; both are validated at construction time (E2-shaped,
// per spec.md §6: "builder rejects missing loader and non-positive
// concurrency at construction").
type Config[K comparable, V any] struct {
	Concurrency int
	Loader      Loader[K, V]
}

// ConfigError mirrors cache.ConfigError's shape for the warmer's own
// construction-time validation.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return "warmer: invalid config field " + e.Field
}

func (c Config[K, V]) validate() error {
	if c.Concurrency < 1 {
		return &ConfigError{Field: "Concurrency", Value: c.Concurrency}
	}
	if c.Loader == nil {
		return &ConfigError{Field: "Loader", Value: nil}
	}
	return nil
}

// Warmer drives a bounded-concurrency fan-out of Loader calls, putting
// every success into the target cache.
type Warmer[K comparable, V any] struct {
	cfg Config[K, V]
}

// New validates cfg and returns a Warmer, or a *ConfigError if
// Concurrency is non-positive or Loader is absent.
func New[K comparable, V any](cfg Config[K, V]) (*Warmer[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Warmer[K, V]{cfg: cfg}, nil
}

// Result is the outcome of a Warm call: success/failure counts, the
// total number of keys attempted, and wall-clock elapsed time.
type Result struct {
	SuccessCount int
	FailCount    int
	TotalCount   int
	ElapsedMs    int64
}

// Warm invokes the configured Loader for each key on a bounded worker
// pool (a buffered channel used as a counting semaphore, the same shape
// as a simple load-generation client) and Puts every success into dst.
// An empty key list is a zero-cost no-op: it returns an all-zero Result
// without spawning any goroutine.
func (w *Warmer[K, V]) Warm(dst Putter[K, V], keys []K) Result {
	if len(keys) == 0 {
		return Result{}
	}

	start := time.Now()

	var success, fail int64
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for _, k := range keys {
		wg.Add(1)
		sem <- struct{}{}
		go func(k K) {
			defer wg.Done()
			defer func() { <-sem }()

			v, err := w.cfg.Loader(k)
			if err != nil {
				atomic.AddInt64(&fail, 1)
				return
			}
			dst.Put(k, v)
			atomic.AddInt64(&success, 1)
		}(k)
	}
	wg.Wait()

	return Result{
		SuccessCount: int(success),
		FailCount:    int(fail),
		TotalCount:   len(keys),
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
}

package cache

import (
	"time"

	"go.uber.org/zap"
)

// Loader is the on-miss value-producing capability. It is injected as a
// value-level callable rather than a type-level interface, so the engine
// stays independent of any inheritance hierarchy. A Loader returning
// (zero, nil) is treated as "no value" (E4), not an error; returning a
// non-nil error is treated as a load-exception (E3).
type Loader[K comparable, V any] func(k K) (V, error)

// Config is the immutable configuration a Cache is built from.
type Config[K comparable, V any] struct {
	// Capacity is the maximum number of live non-sentinel entries. Must
	// be >= 1.
	Capacity int

	// TTL is the single uniform time-to-live applied to every entry at
	// insertion (and refreshed on overwrite). Must be >= 1ms.
	TTL time.Duration

	// CleanupInterval is the background sweeper's wake period. Must be
	// >= 1ms.
	CleanupInterval time.Duration

	// RecordStats gates the statistics counters. When false, every
	// record* call on Stats is a no-op.
	RecordStats bool

	// Loader is optional; when present it is invoked on a read miss.
	Loader Loader[K, V]

	// Coalesce controls whether concurrent misses on the same key are
	// collapsed into a single Loader invocation via singleflight. The
	// zero value is false, so a bare Config{} literal gets spec.md's
	// base behavior (independent loader calls per miss) unless a
	// caller opts in explicitly.
	Coalesce bool

	// Logger receives diagnostic events for the sweeper and, optionally,
	// the loader path. A nil Logger is replaced with a no-op logger at
	// construction so the library has no forced logging side effects
	// when embedded.
	Logger *zap.Logger
}

// validate checks the configuration against spec.md §6's validation
// table. On violation it returns a *ConfigError; no resources are
// allocated by the caller as a result, since this runs before any field
// of Cache is populated.
func (c Config[K, V]) validate() error {
	if c.Capacity < 1 {
		return &ConfigError{Field: "Capacity", Value: c.Capacity}
	}
	if c.TTL < time.Millisecond {
		return &ConfigError{Field: "TTL", Value: c.TTL}
	}
	if c.CleanupInterval < time.Millisecond {
		return &ConfigError{Field: "CleanupInterval", Value: c.CleanupInterval}
	}
	return nil
}

package cache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats holds seven independent monotonic counters plus derived rates.
// Every counter is an atomic int64; counters are not expected to be
// mutually consistent with each other across a single Snapshot call, only
// individually correct.
type Stats struct {
	enabled bool

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	loads     atomic.Int64
	loadFails atomic.Int64
	expired   atomic.Int64
	puts      atomic.Int64
}

// newStats builds a Stats. When enabled is false every record* call is a
// no-op, matching the recordStats=false config contract.
func newStats(enabled bool) *Stats {
	return &Stats{enabled: enabled}
}

func (s *Stats) recordHit() {
	if s.enabled {
		s.hits.Add(1)
	}
}

func (s *Stats) recordMiss() {
	if s.enabled {
		s.misses.Add(1)
	}
}

func (s *Stats) recordEviction() {
	if s.enabled {
		s.evictions.Add(1)
	}
}

func (s *Stats) recordLoad() {
	if s.enabled {
		s.loads.Add(1)
	}
}

func (s *Stats) recordLoadFail() {
	if s.enabled {
		s.loadFails.Add(1)
	}
}

func (s *Stats) recordExpired() {
	if s.enabled {
		s.expired.Add(1)
	}
}

func (s *Stats) recordPut() {
	if s.enabled {
		s.puts.Add(1)
	}
}

// Reset atomically (per counter) returns each counter to zero. Counters
// are independent: a reader racing this call may observe some counters
// already zeroed and others not yet, the same "not mutually consistent"
// guarantee Snapshot relies on.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
	s.loads.Store(0)
	s.loadFails.Store(0)
	s.expired.Store(0)
	s.puts.Store(0)
}

// HitCount returns the live hit counter.
func (s *Stats) HitCount() int64 { return s.hits.Load() }

// MissCount returns the live miss counter.
func (s *Stats) MissCount() int64 { return s.misses.Load() }

// EvictionCount returns the live LRU-eviction counter.
func (s *Stats) EvictionCount() int64 { return s.evictions.Load() }

// LoadCount returns the live successful-load counter.
func (s *Stats) LoadCount() int64 { return s.loads.Load() }

// LoadFailCount returns the live load-failure counter.
func (s *Stats) LoadFailCount() int64 { return s.loadFails.Load() }

// ExpiredCount returns the live TTL-expiration counter.
func (s *Stats) ExpiredCount() int64 { return s.expired.Load() }

// PutCount returns the live put counter.
func (s *Stats) PutCount() int64 { return s.puts.Load() }

// TotalRequestCount returns hits+misses.
func (s *Stats) TotalRequestCount() int64 { return s.HitCount() + s.MissCount() }

// HitRate returns hits/(hits+misses), or 0 when both are zero.
func (s *Stats) HitRate() float64 {
	total := s.TotalRequestCount()
	if total == 0 {
		return 0
	}
	return float64(s.HitCount()) / float64(total)
}

// MissRate returns misses/(hits+misses), or 0 when both are zero.
func (s *Stats) MissRate() float64 {
	total := s.TotalRequestCount()
	if total == 0 {
		return 0
	}
	return float64(s.MissCount()) / float64(total)
}

// Snapshot is an immutable point-in-time copy of the counters, invariant
// under further counter activity.
type Snapshot struct {
	Hits, Misses, Evictions, Loads, LoadFails, Expired, Puts int64
	HitRate, MissRate                                        float64
}

var _ prometheus.Collector = (*Stats)(nil)

// Snapshot produces an immutable value copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:      s.HitCount(),
		Misses:    s.MissCount(),
		Evictions: s.EvictionCount(),
		Loads:     s.LoadCount(),
		LoadFails: s.LoadFailCount(),
		Expired:   s.ExpiredCount(),
		Puts:      s.PutCount(),
		HitRate:   s.HitRate(),
		MissRate:  s.MissRate(),
	}
}

// Prometheus descriptor vars, module-scoped like the teacher's
// telemetry package but not auto-registered against any registry here —
// ownership of registration belongs to the caller (see internal/telemetry
// and cmd/server), never to the library itself.
var (
	statsDescHits       = prometheus.NewDesc("cache_hits_total", "Cache hit count.", nil, nil)
	statsDescMisses     = prometheus.NewDesc("cache_misses_total", "Cache miss count.", nil, nil)
	statsDescEvictions  = prometheus.NewDesc("cache_evictions_total", "LRU eviction count.", nil, nil)
	statsDescLoads      = prometheus.NewDesc("cache_loads_total", "Successful loader invocation count.", nil, nil)
	statsDescLoadFails  = prometheus.NewDesc("cache_load_failures_total", "Failed loader invocation count.", nil, nil)
	statsDescExpired    = prometheus.NewDesc("cache_expirations_total", "TTL expiration count.", nil, nil)
	statsDescPuts       = prometheus.NewDesc("cache_puts_total", "Put (insert or overwrite) count.", nil, nil)
	statsDescHitRate    = prometheus.NewDesc("cache_hit_rate", "hits / (hits+misses).", nil, nil)
	statsDescMissRate   = prometheus.NewDesc("cache_miss_rate", "misses / (hits+misses).", nil, nil)
)

// Describe implements prometheus.Collector.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- statsDescHits
	ch <- statsDescMisses
	ch <- statsDescEvictions
	ch <- statsDescLoads
	ch <- statsDescLoadFails
	ch <- statsDescExpired
	ch <- statsDescPuts
	ch <- statsDescHitRate
	ch <- statsDescMissRate
}

// Collect implements prometheus.Collector. When recordStats is disabled,
// Collect emits nothing, mirroring the no-op semantics of the counters.
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	if !s.enabled {
		return
	}
	snap := s.Snapshot()
	ch <- prometheus.MustNewConstMetric(statsDescHits, prometheus.CounterValue, float64(snap.Hits))
	ch <- prometheus.MustNewConstMetric(statsDescMisses, prometheus.CounterValue, float64(snap.Misses))
	ch <- prometheus.MustNewConstMetric(statsDescEvictions, prometheus.CounterValue, float64(snap.Evictions))
	ch <- prometheus.MustNewConstMetric(statsDescLoads, prometheus.CounterValue, float64(snap.Loads))
	ch <- prometheus.MustNewConstMetric(statsDescLoadFails, prometheus.CounterValue, float64(snap.LoadFails))
	ch <- prometheus.MustNewConstMetric(statsDescExpired, prometheus.CounterValue, float64(snap.Expired))
	ch <- prometheus.MustNewConstMetric(statsDescPuts, prometheus.CounterValue, float64(snap.Puts))
	ch <- prometheus.MustNewConstMetric(statsDescHitRate, prometheus.GaugeValue, snap.HitRate)
	ch <- prometheus.MustNewConstMetric(statsDescMissRate, prometheus.GaugeValue, snap.MissRate)
}

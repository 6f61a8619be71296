package warmer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ryandielhenn/lrucache/pkg/cache"
)

func TestConfigValidation(t *testing.T) {
	_, err := New(Config[string, string]{Concurrency: 0, Loader: func(string) (string, error) { return "", nil }})
	if err == nil {
		t.Fatalf("expected error for non-positive concurrency")
	}

	_, err = New[string, string](Config[string, string]{Concurrency: 4, Loader: nil})
	if err == nil {
		t.Fatalf("expected error for missing loader")
	}
}

func TestWarmEmptyKeysIsZeroCost(t *testing.T) {
	w, err := New(Config[string, string]{Concurrency: 4, Loader: func(k string) (string, error) { return k, nil }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c, err := cache.New(cache.Config[string, string]{Capacity: 10, TTL: time.Minute, CleanupInterval: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Shutdown()

	res := w.Warm(c, nil)
	if res != (Result{}) {
		t.Fatalf("expected all-zero result for empty key list, got %+v", res)
	}
}

func TestWarmFillsCacheAndCountsOutcomes(t *testing.T) {
	w, err := New(Config[string, int]{
		Concurrency: 8,
		Loader: func(k string) (int, error) {
			if k == "bad" {
				return 0, errors.New("backend unavailable")
			}
			return len(k), nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, err := cache.New(cache.Config[string, int]{Capacity: 100, TTL: time.Minute, CleanupInterval: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Shutdown()

	keys := []string{"a", "bb", "ccc", "bad", "dddd"}
	res := w.Warm(c, keys)

	if res.TotalCount != len(keys) {
		t.Errorf("TotalCount = %d, want %d", res.TotalCount, len(keys))
	}
	if res.SuccessCount != 4 {
		t.Errorf("SuccessCount = %d, want 4", res.SuccessCount)
	}
	if res.FailCount != 1 {
		t.Errorf("FailCount = %d, want 1", res.FailCount)
	}
	if res.ElapsedMs < 0 {
		t.Errorf("ElapsedMs = %d, want >= 0", res.ElapsedMs)
	}

	if v, ok := c.Get("bb"); !ok || v != 2 {
		t.Errorf("cache missing successful load: got (%d, %v)", v, ok)
	}
	if c.ContainsKey("bad") {
		t.Errorf("failed load must not be present in the cache")
	}
}

func TestWarmRespectsConcurrencyBound(t *testing.T) {
	const concurrency = 4
	var inFlight, maxInFlight int64

	w, err := New(Config[int, int]{
		Concurrency: concurrency,
		Loader: func(k int) (int, error) {
			cur := atomic.AddInt64(&inFlight, 1)
			for {
				m := atomic.LoadInt64(&maxInFlight)
				if cur <= m || atomic.CompareAndSwapInt64(&maxInFlight, m, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return k, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, err := cache.New(cache.Config[int, int]{Capacity: 1000, TTL: time.Minute, CleanupInterval: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Shutdown()

	keys := make([]int, 200)
	for i := range keys {
		keys[i] = i
	}

	w.Warm(c, keys)

	if got := atomic.LoadInt64(&maxInFlight); got > concurrency {
		t.Errorf("observed max in-flight loaders = %d, want <= %d", got, concurrency)
	}
}

func ExampleWarmer_Warm() {
	w, _ := New(Config[string, string]{
		Concurrency: 2,
		Loader:      func(k string) (string, error) { return "v-" + k, nil },
	})
	c, _ := cache.New(cache.Config[string, string]{Capacity: 10, TTL: time.Minute, CleanupInterval: time.Hour})
	defer c.Shutdown()

	res := w.Warm(c, []string{"a", "b", "c"})
	fmt.Println(res.SuccessCount, res.FailCount, res.TotalCount)
	// Output: 3 0 3
}

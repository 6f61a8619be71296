package cache

import "sync"

// index is the key -> entry mapping. Structural mutation (insert/remove)
// is already serialized by the engine's write lock, and every read in this
// package holds at least the read lock (the sweeper's collection phase
// included, see sweeper.go). index is still built on sync.Map rather than
// a plain map as a defensive measure, so that a read made without the
// cache lock would see a structurally consistent table instead of racing
// a bare map.
type index[K comparable, V any] struct {
	m sync.Map // K -> *entry[K, V]
}

func newIndex[K comparable, V any]() *index[K, V] {
	return &index[K, V]{}
}

func (i *index[K, V]) get(k K) (*entry[K, V], bool) {
	v, ok := i.m.Load(k)
	if !ok {
		return nil, false
	}
	return v.(*entry[K, V]), true
}

func (i *index[K, V]) put(k K, e *entry[K, V]) {
	i.m.Store(k, e)
}

func (i *index[K, V]) remove(k K) {
	i.m.Delete(k)
}

// size is an O(n) count, intended for diagnostics/tests only; the engine
// tracks its own authoritative size via the recency list's length.
func (i *index[K, V]) size() int {
	n := 0
	i.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// keys returns a weakly-consistent snapshot of the current key set.
func (i *index[K, V]) keys() []K {
	out := make([]K, 0)
	i.m.Range(func(k, _ any) bool {
		out = append(out, k.(K))
		return true
	})
	return out
}

// clear drops every entry from the index.
func (i *index[K, V]) clear() {
	i.m.Range(func(k, _ any) bool {
		i.m.Delete(k)
		return true
	})
}

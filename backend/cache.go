package backend

import (
	"sync"
	"time"
)

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
	stale     bool
}

// QueryCache holds raw query responses keyed by query key. Entries become
// unusable when marked stale or once staleAfter has elapsed. A zero
// staleAfter disables caching.
type QueryCache struct {
	mu         sync.Mutex
	staleAfter time.Duration
	entries    map[string]cacheEntry
	gens       map[string]uint64
	now        func() time.Time
}

func NewQueryCache(staleAfter time.Duration) *QueryCache {
	return &QueryCache{
		staleAfter: staleAfter,
		entries:    make(map[string]cacheEntry),
		gens:       make(map[string]uint64),
		now:        time.Now,
	}
}

// Get returns a fresh cached response for key.
func (q *QueryCache) Get(key string) ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[key]
	if !ok || e.stale || q.now().Sub(e.fetchedAt) >= q.staleAfter {
		return nil, false
	}
	return e.data, true
}

// Generation must be read before fetching key; Store discards the result
// if key was invalidated in between.
func (q *QueryCache) Generation(key string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gens[key]
}

func (q *QueryCache) Store(key string, gen uint64, data []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.staleAfter <= 0 || q.gens[key] != gen {
		return
	}
	q.entries[key] = cacheEntry{data: data, fetchedAt: q.now()}
}

// MarkStale forces the next Get of each key to miss.
func (q *QueryCache) MarkStale(keys ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, k := range keys {
		q.gens[k]++
		if e, ok := q.entries[k]; ok {
			e.stale = true
			q.entries[k] = e
		}
	}
}

// IsStale reports whether key is absent, expired or marked stale.
func (q *QueryCache) IsStale(key string) bool {
	_, ok := q.Get(key)
	return !ok
}

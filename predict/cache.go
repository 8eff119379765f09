package predict

import "sync"

type cacheEntry struct {
	policy []float32
	value  float32
}

// Cache memoizes network verdicts by board fingerprint, bucketed by model
// generation: advancing the generation (each time a new model is promoted)
// invalidates every entry in one O(1) swap instead of an expensive sweep,
// since a stale generation's verdicts are worthless once the weights move.
type Cache struct {
	mu         sync.RWMutex
	generation uint64
	buckets    map[uint64]map[uint64]cacheEntry
	maxPerGen  int
}

// NewCache returns an empty cache. maxPerGen bounds how many entries a
// single generation's bucket may hold before further Puts are dropped.
func NewCache(maxPerGen int) *Cache {
	c := &Cache{buckets: make(map[uint64]map[uint64]cacheEntry), maxPerGen: maxPerGen}
	c.buckets[0] = make(map[uint64]cacheEntry)
	return c
}

// Get returns the cached verdict for fingerprint at the current
// generation, if present.
func (c *Cache) Get(fingerprint uint64) ([]float32, float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket := c.buckets[c.generation]
	e, ok := bucket[fingerprint]
	if !ok {
		return nil, 0, false
	}
	return e.policy, e.value, true
}

// Put stores a verdict under the current generation.
func (c *Cache) Put(fingerprint uint64, policy []float32, value float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.buckets[c.generation]
	if c.maxPerGen > 0 && len(bucket) >= c.maxPerGen {
		return
	}
	bucket[fingerprint] = cacheEntry{policy: policy, value: value}
}

// Advance bumps the active generation, so prior entries stop being served
// and their bucket becomes eligible for garbage collection once no
// in-flight reader holds a reference to it.
func (c *Cache) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buckets, c.generation)
	c.generation++
	c.buckets[c.generation] = make(map[uint64]cacheEntry)
}

// Generation returns the current active generation number.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

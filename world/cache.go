package world

// Cache holds generated zones with LRU eviction. Eviction never loses state:
// zones are pure functions of the seed, and mutable facts (destroyed walls)
// live outside the cache entirely.
type Cache struct {
	max     int
	tick    uint64
	entries map[ZoneCoord]*cacheEntry
}

type cacheEntry struct {
	zone    *Zone
	lastUse uint64
}

const DefaultCacheSize = 64

func NewCache(max int) *Cache {
	if max < 1 {
		max = 1
	}
	return &Cache{max: max, entries: make(map[ZoneCoord]*cacheEntry, max)}
}

func (c *Cache) Get(zc ZoneCoord) (*Zone, bool) {
	e, ok := c.entries[zc]
	if !ok {
		return nil, false
	}
	c.tick++
	e.lastUse = c.tick
	return e.zone, true
}

func (c *Cache) Put(z *Zone) {
	if len(c.entries) >= c.max {
		c.evict()
	}
	c.tick++
	c.entries[z.Coord] = &cacheEntry{zone: z, lastUse: c.tick}
}

func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) evict() {
	var victim ZoneCoord
	oldest := ^uint64(0)
	for zc, e := range c.entries {
		if e.lastUse < oldest {
			oldest = e.lastUse
			victim = zc
		}
	}
	delete(c.entries, victim)
}

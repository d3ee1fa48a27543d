package rowcache

// Stats holds row pool counters.
type Stats struct {
	Created  int64
	Reused   int64
	Released int64
	Disposed int64
	Pooled   map[string]int // Free rows per template id.
}

// HitRate returns the fraction of allocations served from a pool (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Created + s.Reused
	if total == 0 {
		return 0
	}

	return float64(s.Reused) / float64(total)
}

// TotalPooled returns the number of free rows across all template ids.
func (s Stats) TotalPooled() int {
	total := 0
	for _, n := range s.Pooled {
		total += n
	}

	return total
}

// Stats returns current pool statistics.
func (c *Cache) Stats() Stats {
	pooled := make(map[string]int, len(c.pools))
	for id, pool := range c.pools {
		if len(pool) > 0 {
			pooled[id] = len(pool)
		}
	}

	return Stats{
		Created:  c.created,
		Reused:   c.reused,
		Released: c.released,
		Disposed: c.disposed,
		Pooled:   pooled,
	}
}

// Live returns the number of rows created and not yet disposed, pooled or not.
func (c *Cache) Live() int64 { return c.created - c.disposed }

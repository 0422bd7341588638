package goldbach

import "sync/atomic"

// Stats is a point-in-time view of search statistics.
//
// Hits are targets the cache already covered, Misses are targets that forced
// the cache to grow. HitRatio is a percentage (0-100).
type Stats struct {
	Targets     uint64
	Found       uint64
	NotFound    uint64
	Hits        uint64
	Misses      uint64
	PrimesAdded uint64
	HitRatio    float64
}

// counters are updated by the search loop and may be read from any goroutine.
type counters struct {
	targets     atomic.Uint64
	found       atomic.Uint64
	notFound    atomic.Uint64
	hits        atomic.Uint64
	misses      atomic.Uint64
	primesAdded atomic.Uint64
}

func (c *counters) record(added int, found bool) {
	c.targets.Add(1)
	if found {
		c.found.Add(1)
	} else {
		c.notFound.Add(1)
	}
	if added > 0 {
		c.misses.Add(1)
		c.primesAdded.Add(uint64(added))
	} else {
		c.hits.Add(1)
	}
}

// GetStats returns a snapshot of the counters without locking.
func (s *Searcher) GetStats() Stats {
	hits := s.stats.hits.Load()
	misses := s.stats.misses.Load()
	total := hits + misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(hits) / float64(total) * 100.0
	}
	return Stats{
		Targets:     s.stats.targets.Load(),
		Found:       s.stats.found.Load(),
		NotFound:    s.stats.notFound.Load(),
		Hits:        hits,
		Misses:      misses,
		PrimesAdded: s.stats.primesAdded.Load(),
		HitRatio:    ratio,
	}
}

// ResetStats zeroes all counters.
func (s *Searcher) ResetStats() {
	s.stats.targets.Store(0)
	s.stats.found.Store(0)
	s.stats.notFound.Store(0)
	s.stats.hits.Store(0)
	s.stats.misses.Store(0)
	s.stats.primesAdded.Store(0)
}

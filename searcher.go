package goldbach

import (
	"errors"
	"fmt"
)

// ErrNoPair is returned by Run when a target has no Goldbach pair in the cache.
var ErrNoPair = errors.New("no goldbach pair")

// Pair is a Goldbach decomposition P + Q with P <= Q.
type Pair struct {
	P, Q int
}

func (p Pair) String() string { return fmt.Sprintf("%d + %d", p.P, p.Q) }

// FindPair extends cache to cover n and then looks for two cached primes that
// sum to n with a two-pointer scan from both ends of the cache. The second
// result is false when no such pair exists.
//
// Which pair is returned is deterministic: FindPair(10, ...) is always 3 + 7.
func FindPair(n int, cache *PrimeCache) (Pair, bool) {
	cache.ExtendTo(n)

	primes := cache.primes
	low, high := 0, len(primes)-1
	for low <= high {
		sum := primes[low] + primes[high]
		switch {
		case sum == n:
			return Pair{P: primes[low], Q: primes[high]}, true
		case sum < n:
			low++
		default:
			high--
		}
	}
	return Pair{}, false
}

// Searcher resolves targets against a cache it owns and keeps statistics about
// how often the cache had to grow.
type Searcher struct {
	cache *PrimeCache
	stats counters
}

// NewSearcher returns a Searcher over cache. A nil cache starts from the seed.
func NewSearcher(cache *PrimeCache) *Searcher {
	if cache == nil {
		cache = NewPrimeCache()
	}
	return &Searcher{cache: cache}
}

// Cache returns the cache the Searcher grows.
func (s *Searcher) Cache() *PrimeCache { return s.cache }

// Find resolves n, see FindPair.
func (s *Searcher) Find(n int) (Pair, bool) {
	before := s.cache.Len()
	pair, ok := FindPair(n, s.cache)
	s.stats.record(s.cache.Len()-before, ok)
	return pair, ok
}

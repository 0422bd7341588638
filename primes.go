package goldbach

import (
	"fmt"
	"slices"
)

// seed is where every cache starts.
var seed = [...]int{2, 3}

// PrimeCache holds every prime from 2 up to and including its last element, in
// ascending order. It only ever grows by appending the next prime, so it is
// always a prefix of the prime sequence.
//
// A PrimeCache is owned by a single search loop and is not safe for concurrent
// mutation.
type PrimeCache struct {
	primes []int // len >= len(seed), ascending
}

// NewPrimeCache returns a cache holding only the seed primes.
func NewPrimeCache() *PrimeCache {
	primes := make([]int, len(seed))
	copy(primes, seed[:])
	return &PrimeCache{primes: primes}
}

// Seed returns a copy of the primes every cache starts from.
func Seed() []int {
	out := make([]int, len(seed))
	copy(out, seed[:])
	return out
}

// Len returns the number of cached primes.
func (c *PrimeCache) Len() int { return len(c.primes) }

// Last returns the largest cached prime.
func (c *PrimeCache) Last() int { return c.primes[len(c.primes)-1] }

// At returns the i-th cached prime (0-based).
func (c *PrimeCache) At(i int) int { return c.primes[i] }

// Primes returns a copy of the cached primes.
func (c *PrimeCache) Primes() []int {
	out := make([]int, len(c.primes))
	copy(out, c.primes)
	return out
}

// ExtendTo appends primes until the last cached prime is >= bound and returns
// how many were appended. Calling it again with the same bound is a no-op.
func (c *PrimeCache) ExtendTo(bound int) int {
	added := 0
	for c.Last() < bound {
		c.primes = append(c.primes, NextPrimeAfter(c.Last()))
		added++
	}
	return added
}

// NextPrimeAfter returns the smallest prime strictly greater than n.
func NextPrimeAfter(n int) int {
	k := n + 1
	if k < 2 {
		k = 2
	}
	for !IsPrime(k) {
		k++
	}
	return k
}

// IsPrime reports whether k is prime by trial division with divisors up to
// floor(sqrt(k)).
func IsPrime(k int) bool {
	if k < 2 {
		return false
	}
	for d := 2; d*d <= k; d++ {
		if k%d == 0 {
			return false
		}
	}
	return true
}

// IsPrime reports whether k is prime, answering from the cache when k is within
// its coverage.
func (c *PrimeCache) IsPrime(k int) bool {
	if k <= c.Last() {
		return c.Contains(k)
	}
	return IsPrime(k)
}

// Verify checks the prefix invariant element by element: the cache must start
// with the seed and each later prime must be the next prime after the one
// before it. It costs one NextPrimeAfter per element.
func (c *PrimeCache) Verify() error {
	return verifyPrimes(c.primes)
}

func verifyPrimes(primes []int) error {
	if err := checkShape(primes); err != nil {
		return err
	}
	for i := len(seed); i < len(primes); i++ {
		if want := NextPrimeAfter(primes[i-1]); primes[i] != want {
			return fmt.Errorf("%w: index %d holds %d, next prime after %d is %d",
				ErrCorrupt, i, primes[i], primes[i-1], want)
		}
	}
	return nil
}

// checkShape is the cheap structural check applied to every loaded sequence:
// seed prefix and strictly increasing.
func checkShape(primes []int) error {
	if len(primes) < len(seed) {
		return fmt.Errorf("%w: %d primes, need at least %d", ErrCorrupt, len(primes), len(seed))
	}
	for i, p := range seed {
		if primes[i] != p {
			return fmt.Errorf("%w: seed mismatch at index %d: got %d want %d", ErrCorrupt, i, primes[i], p)
		}
	}
	for i := 1; i < len(primes); i++ {
		if primes[i] <= primes[i-1] {
			return fmt.Errorf("%w: not increasing at index %d (%d after %d)", ErrCorrupt, i, primes[i], primes[i-1])
		}
	}
	return nil
}

// NewPrimeCacheFrom builds a cache from a persisted sequence after checking
// that it starts with the seed and is strictly increasing. Like
// LoadPrimeCache, it always returns a usable cache: the seed cache is returned
// alongside the error when the sequence is rejected. The slice is copied.
func NewPrimeCacheFrom(primes []int) (*PrimeCache, error) {
	if err := checkShape(primes); err != nil {
		return NewPrimeCache(), err
	}
	return &PrimeCache{primes: slices.Clone(primes)}, nil
}

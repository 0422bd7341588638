package goldbach

import "slices"

// Contains reports whether k is one of the cached primes.
func (c *PrimeCache) Contains(k int) bool {
	_, found := slices.BinarySearch(c.primes, k)
	return found
}

// IndexAtMost returns the index of the largest cached prime <= k, or -1 when k
// is below the smallest cached prime.
func (c *PrimeCache) IndexAtMost(k int) int {
	i, found := slices.BinarySearch(c.primes, k)
	if found {
		return i
	}
	return i - 1
}

// PrimesUpTo returns a copy of the cached primes <= k. Primes above the cache
// coverage are not included; call ExtendTo first if they are needed.
func (c *PrimeCache) PrimesUpTo(k int) []int {
	n := c.IndexAtMost(k) + 1
	out := make([]int, n)
	copy(out, c.primes[:n])
	return out
}

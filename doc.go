// Package goldbach searches ascending even numbers for Goldbach pairs using an
// incrementally grown prime cache that is persisted between runs.
//
// The cache is always a prefix of the prime sequence: it holds every prime up to
// its last element and nothing else. It grows on demand by trial division and is
// never pruned, so a resumed run only pays for primes it has not seen before.
//
// The library is organised into several files for clarity:
//
//	options.go      – configuration struct & defaults
//	config.go       – environment loading & validation
//	primes.go       – prime cache & primality test
//	lookup.go       – binary-search helpers over the cache
//	searcher.go     – two-pointer Goldbach pair search
//	io.go           – snapshot codec & CRC integrity
//	meta.go         – last-target checkpoint record
//	store.go        – persistence interface & file-backed store
//	buffer.go       – pooled encode buffers
//	flush_close.go  – close & directory sync helpers
//	stats.go        – lightweight stats accessors
//	report.go       – result reporting sink
//	driver.go       – resumable search loop
//
// A SQLite-backed Store lives in the sqlitestore subpackage.
package goldbach

// Package cache memoizes discovery results.
//
// Entries are keyed by (kind, normalized target, filter parameters) and hold
// the encoded form of one result, so every read decodes a fresh copy. The
// default store is an unbounded in-process map with no expiry; a bounded LRU
// store and a Redis-backed store are available for long-running processes.
// Concurrent lookups of the same missing key share a single computation.
package cache

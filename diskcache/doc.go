// Package diskcache memoizes multi-output lazy-array computations to disk.
//
// A Cached wraps an underlying computation with a Descriptor (name, version,
// uncacheable argument kinds), an optional argument sanitizer, and a feature
// flag. Calls are fingerprinted from the sanitized, cacheable subset of
// their arguments; on a miss the computation runs and all of its outputs are
// materialized together into chunked artifact stores, on a hit the artifacts
// are reopened lazily without recomputation.
//
// Caching degrades silently. A missing cache directory, a disabled flag, or
// an argument of an uncacheable kind all mean "compute, don't persist" — the
// caller still gets the computation's value and no error is raised.
//
// There is no eviction, no TTL, and no cross-process locking. Concurrent
// population of the same fingerprint is tolerated only because duplicate
// writes are content-equivalent.
package diskcache

// Package lazy provides deferred, chunked 2D float64 arrays.
//
// An Array is a shape, a chunk layout, and a per-block generator; no numeric
// work happens until Compute or ComputeAll materializes it. ComputeAll
// evaluates several arrays in a single pass, which is what the cache store
// uses to write all outputs of one call together.
package lazy

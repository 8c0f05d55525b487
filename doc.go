// Package satangles computes solar and sensor observation angles for gridded
// satellite imagery, with transparent disk-backed memoization of the expensive
// intermediate grids.
//
// The angle formulas themselves (solar position, observer look) are external
// collaborators injected through the angles.Astronomy seam. What this module
// owns is everything around them: deferred chunked arrays (package lazy), an
// on-disk chunked-array format (package chunkstore) over pluggable byte
// backends (package blobstore), and the memoization core (package diskcache)
// that fingerprints call arguments, decides eligibility, and manages the
// cached artifacts.
//
// # Quick Start
//
//	cfg := satangles.Config{
//		CacheDir:          "/var/cache/satangles",
//		CacheLonLats:      true,
//		CacheSensorAngles: true,
//	}
//	p := angles.NewPipeline(cfg, astro)
//	res, err := p.GetAngles(ctx, angles.Observation{
//		Geometry:  area,
//		StartTime: scanTime,
//		SatLon:    0.0, SatLat: 0.0, SatAlt: 35786000,
//		Chunks:    lazy.ChunkSpec{Rows: 512, Cols: 512},
//	})
//
// Caching degrades silently: with no cache directory configured, or with a
// geometry that cannot be fingerprinted (a swath), every call computes from
// scratch and returns the same values it would have computed with caching
// disabled, up to the documented argument sanitization.
//
// The cache grows without bound. No eviction, TTL, or size limiting is
// performed; operators reclaim space out of band or through
// diskcache.Cached.Clear.
package satangles

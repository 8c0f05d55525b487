// Package angles computes per-pixel solar and sensor observation angles for
// gridded satellite imagery.
//
// The astronomical formulas are injected through the Astronomy interface;
// this package owns the orchestration: valid lon/lat extraction with
// off-earth sentinel filtering, sensor azimuth/zenith from the satellite
// sub-point, solar azimuth/zenith, and the caching of the two expensive
// steps through package diskcache.
package angles

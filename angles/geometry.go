package angles

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/skysight/satangles/diskcache"
	"github.com/skysight/satangles/lazy"
)

// Geometry yields longitude/latitude grids for a pixel grid.
type Geometry interface {
	// GetLonLats returns deferred per-pixel center longitudes and latitudes,
	// laid out with the given chunk spec. Off-earth pixels carry values at
	// or above InvalidSentinel.
	GetLonLats(ctx context.Context, chunks lazy.ChunkSpec) (lons, lats *lazy.Array, err error)
}

// AreaDefinition is a regular lon/lat grid over a geographic extent. Its
// coordinates are fully determined by its fields, so it has a stable content
// hash and calls parameterized by it are cacheable.
type AreaDefinition struct {
	ID     string  `json:"id"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	LonMin float64 `json:"lon_min"`
	LatMin float64 `json:"lat_min"`
	LonMax float64 `json:"lon_max"`
	LatMax float64 `json:"lat_max"`
}

// ContentHash implements diskcache.Hashable.
func (a AreaDefinition) ContentHash() string {
	// Struct fields marshal in declaration order, so the digest is stable.
	data, _ := json.Marshal(a)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetLonLats implements Geometry. Pixel centers are spaced evenly across the
// extent.
func (a AreaDefinition) GetLonLats(_ context.Context, chunks lazy.ChunkSpec) (*lazy.Array, *lazy.Array, error) {
	lonStep := (a.LonMax - a.LonMin) / float64(a.Cols)
	latStep := (a.LatMax - a.LatMin) / float64(a.Rows)

	lons := lazy.New(a.Rows, a.Cols, chunks, func(_ context.Context, b lazy.Block, dst []float64) error {
		for y := 0; y < b.Rows; y++ {
			for x := 0; x < b.Cols; x++ {
				dst[y*b.Cols+x] = a.LonMin + (float64(b.X0+x)+0.5)*lonStep
			}
		}
		return nil
	})
	// Latitude decreases with row index: row 0 is the top of the grid.
	lats := lazy.New(a.Rows, a.Cols, chunks, func(_ context.Context, b lazy.Block, dst []float64) error {
		for y := 0; y < b.Rows; y++ {
			for x := 0; x < b.Cols; x++ {
				dst[y*b.Cols+x] = a.LatMax - (float64(b.Y0+y)+0.5)*latStep
			}
		}
		return nil
	})
	return lons, lats, nil
}

// SwathDefinition carries explicit per-pixel lon/lat arrays, as produced by a
// polar-orbiter swath. It has no stable content hash, so calls parameterized
// by it are never cached.
type SwathDefinition struct {
	Lons, Lats *lazy.Array
}

// GetLonLats implements Geometry by handing back the stored arrays.
func (s SwathDefinition) GetLonLats(_ context.Context, _ lazy.ChunkSpec) (*lazy.Array, *lazy.Array, error) {
	return s.Lons, s.Lats, nil
}

// geometryArg builds the cache argument for a geometry: hashable area
// definitions fingerprint by content hash, everything else is an uncacheable
// swath handle. The geometry itself rides along for the underlying call.
func geometryArg(g Geometry) diskcache.Arg {
	if h, ok := g.(diskcache.Hashable); ok {
		arg := diskcache.Geometry(h)
		arg.Opaque = g
		return arg
	}
	return diskcache.Swath(g)
}

// argGeometry recovers the geometry from a cache argument.
func argGeometry(a diskcache.Arg) (Geometry, bool) {
	g, ok := a.Opaque.(Geometry)
	return g, ok
}

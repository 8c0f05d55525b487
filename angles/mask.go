package angles

import (
	"context"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/skysight/satangles/lazy"
)

// InvalidPixelMask returns the row-major pixel indices of a grid whose values
// are NaN or at the off-earth sentinel. The bitmap compresses well for the
// typical geostationary full-disk case where invalid pixels cluster in the
// corners.
func InvalidPixelMask(g *lazy.Grid) *roaring.Bitmap {
	mask := roaring.New()
	for i, v := range g.Data {
		if math.IsNaN(v) || v >= InvalidSentinel {
			mask.Add(uint32(i))
		}
	}
	return mask
}

// OffEarthMask materializes the scene's filtered longitude grid and returns
// the mask of off-earth pixels. The lon/lat extraction behind it is cached
// under the cache_lonlats flag, so repeated calls for one geometry only pay
// for the mask scan.
func (p *Pipeline) OffEarthMask(ctx context.Context, obs Observation) (*roaring.Bitmap, error) {
	lons, _, err := p.ValidLonLats(ctx, obs)
	if err != nil {
		return nil, err
	}
	g, err := lons.Compute(ctx)
	if err != nil {
		return nil, err
	}
	mask := InvalidPixelMask(g)
	p.log.Debug("off-earth mask", "invalid_pixels", mask.GetCardinality(), "total", len(g.Data))
	return mask, nil
}

package angles

import (
	"context"
	"fmt"
	"math"
	"time"

	satangles "github.com/skysight/satangles"
	"github.com/skysight/satangles/diskcache"
	"github.com/skysight/satangles/lazy"
)

// InvalidSentinel marks off-earth pixels in geometry lon/lat grids. Any
// coordinate at or above it is replaced with NaN before use; NaN then
// propagates through the angle formulas, which is expected and intentional.
const InvalidSentinel = 1e30

// Observation describes one imaging scene: the grid geometry, the scan time,
// the satellite sub-point, and the chunk layout for generated arrays.
type Observation struct {
	Geometry  Geometry
	StartTime time.Time

	// Satellite sub-point. SatAlt is in meters.
	SatLon, SatLat, SatAlt float64

	Chunks lazy.ChunkSpec
}

// Angles holds the four deferred angle grids of a scene, all in degrees.
type Angles struct {
	SensorAzimuth *lazy.Array
	SensorZenith  *lazy.Array
	SolarAzimuth  *lazy.Array
	SolarZenith   *lazy.Array
}

// Pipeline computes observation angles, memoizing valid lon/lat extraction
// and the sensor-angle computation to disk when configured.
type Pipeline struct {
	cfg   satangles.Config
	astro Astronomy
	log   *satangles.Logger

	lonlats *diskcache.Cached
	sensor  *diskcache.Cached
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger. Nil means no logging.
func WithLogger(log *satangles.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a pipeline with the given configuration and
// astronomical collaborator.
func NewPipeline(cfg satangles.Config, astro Astronomy, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:   cfg,
		astro: astro,
		log:   satangles.NoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.lonlats = diskcache.New(
		diskcache.Descriptor{Name: "get_valid_lonlats", Version: 1},
		"cache_lonlats",
		cfg,
		p.validLonLatsFunc,
		diskcache.WithLogger(p.log),
	)
	p.sensor = diskcache.New(
		diskcache.Descriptor{Name: "get_sensor_angles_from_sat_pos", Version: 1},
		"cache_sensor_angles",
		cfg,
		p.sensorAnglesFunc,
		diskcache.WithSanitizer(diskcache.ObserverLookSanitizer),
		diskcache.WithLogger(p.log),
	)
	return p
}

// GetAngles returns sensor azimuth, sensor zenith, solar azimuth, and solar
// zenith grids for the scene.
func (p *Pipeline) GetAngles(ctx context.Context, obs Observation) (*Angles, error) {
	sata, satz, err := p.sensorAngles(ctx, obs)
	if err != nil {
		return nil, err
	}
	suna, sunz, err := p.sunAngles(ctx, obs)
	if err != nil {
		return nil, err
	}
	return &Angles{
		SensorAzimuth: sata,
		SensorZenith:  satz,
		SolarAzimuth:  suna,
		SolarZenith:   sunz,
	}, nil
}

// GetSatelliteZenithAngle returns only the sensor zenith grid.
func (p *Pipeline) GetSatelliteZenithAngle(ctx context.Context, obs Observation) (*lazy.Array, error) {
	_, satz, err := p.sensorAngles(ctx, obs)
	if err != nil {
		return nil, err
	}
	return satz, nil
}

// ValidLonLats returns the scene's lon/lat grids with off-earth pixels
// replaced by NaN. Cached under the cache_lonlats flag.
func (p *Pipeline) ValidLonLats(ctx context.Context, obs Observation) (lons, lats *lazy.Array, err error) {
	outputs, err := p.lonlats.Call(ctx, []diskcache.Arg{
		geometryArg(obs.Geometry),
		diskcache.Chunks(obs.Chunks),
	})
	if err != nil {
		return nil, nil, err
	}
	if len(outputs) != 2 {
		return nil, nil, fmt.Errorf("angles: lon/lat extraction produced %d outputs", len(outputs))
	}
	return outputs[0], outputs[1], nil
}

// validLonLatsFunc is the underlying computation behind ValidLonLats.
func (p *Pipeline) validLonLatsFunc(ctx context.Context, args []diskcache.Arg) ([]*lazy.Array, error) {
	geom, ok := argGeometry(args[0])
	if !ok {
		return nil, fmt.Errorf("angles: first argument is not a geometry")
	}
	lons, lats, err := geom.GetLonLats(ctx, args[1].Chunks)
	if err != nil {
		return nil, err
	}
	filter := func(v float64) float64 {
		if v >= InvalidSentinel {
			return math.NaN()
		}
		return v
	}
	return []*lazy.Array{lons.Map(filter), lats.Map(filter)}, nil
}

func (p *Pipeline) sensorAngles(ctx context.Context, obs Observation) (sata, satz *lazy.Array, err error) {
	outputs, err := p.sensor.Call(ctx, []diskcache.Arg{
		diskcache.Float(obs.SatLon),
		diskcache.Float(obs.SatLat),
		diskcache.Float(obs.SatAlt),
		diskcache.Time(obs.StartTime),
		geometryArg(obs.Geometry),
		diskcache.Chunks(obs.Chunks),
	})
	if err != nil {
		return nil, nil, err
	}
	if len(outputs) != 2 {
		return nil, nil, fmt.Errorf("angles: sensor angle computation produced %d outputs", len(outputs))
	}
	return outputs[0], outputs[1], nil
}

// sensorAnglesFunc computes per-pixel satellite azimuth and zenith from the
// sub-satellite position. Zenith is 90 minus elevation, so below-horizon
// pixels come out above 90 degrees.
func (p *Pipeline) sensorAnglesFunc(ctx context.Context, args []diskcache.Arg) ([]*lazy.Array, error) {
	satLon := args[0].Float
	satLat := args[1].Float
	satAltKm := args[2].Float / 1000.0 // look formula wants kilometers
	start := args[3].Time
	geom, ok := argGeometry(args[4])
	if !ok {
		return nil, fmt.Errorf("angles: fifth argument is not a geometry")
	}

	lons, lats, err := p.ValidLonLats(ctx, Observation{Geometry: geom, Chunks: args[5].Chunks})
	if err != nil {
		return nil, err
	}

	sata, err := lazy.Map2(lons, lats, func(lon, lat float64) float64 {
		az, _ := p.astro.ObserverLook(satLon, satLat, satAltKm, start, lon, lat, 0)
		return az
	})
	if err != nil {
		return nil, err
	}
	satz, err := lazy.Map2(lons, lats, func(lon, lat float64) float64 {
		_, el := p.astro.ObserverLook(satLon, satLat, satAltKm, start, lon, lat, 0)
		return 90 - el
	})
	if err != nil {
		return nil, err
	}
	return []*lazy.Array{sata, satz}, nil
}

// sunAngles computes solar azimuth and zenith. This step is never cached
// directly; it reads the possibly-cached lon/lat grids and recomputes per
// call.
func (p *Pipeline) sunAngles(ctx context.Context, obs Observation) (suna, sunz *lazy.Array, err error) {
	lons, lats, err := p.ValidLonLats(ctx, obs)
	if err != nil {
		return nil, nil, err
	}

	suna, err = lazy.Map2(lons, lats, func(lon, lat float64) float64 {
		_, az := p.astro.SolarPosition(obs.StartTime, lon, lat)
		return az * 180 / math.Pi
	})
	if err != nil {
		return nil, nil, err
	}
	sunz, err = lazy.Map2(lons, lats, func(lon, lat float64) float64 {
		return p.astro.SolarZenith(obs.StartTime, lon, lat)
	})
	if err != nil {
		return nil, nil, err
	}
	return suna, sunz, nil
}

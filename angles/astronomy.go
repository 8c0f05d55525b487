package angles

import "time"

// Astronomy provides the astronomical formulas this package orchestrates but
// does not implement. Implementations must be safe for concurrent use; they
// are called per pixel from parallel block workers.
type Astronomy interface {
	// SolarPosition returns solar altitude and azimuth in radians for the
	// given instant and location.
	SolarPosition(t time.Time, lon, lat float64) (alt, az float64)

	// SolarZenith returns the solar zenith angle in degrees.
	SolarZenith(t time.Time, lon, lat float64) float64

	// ObserverLook returns the satellite azimuth and elevation in degrees as
	// seen from (lon, lat) at elevation elev0, for a satellite at
	// (satLon, satLat) and satAltKm kilometers.
	ObserverLook(satLon, satLat, satAltKm float64, t time.Time, lon, lat, elev0 float64) (az, el float64)
}

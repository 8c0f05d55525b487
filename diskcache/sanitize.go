package diskcache

import (
	"math"
	"time"
)

// SanitizeFunc maps call arguments to cache-friendlier equivalents. It must
// be pure and preserve arity and order. Sanitized arguments are used for
// fingerprinting and, when caching is active, for the actual call, so a
// cache entry is always consistent with the computation it represents.
type SanitizeFunc func(args []Arg) []Arg

// StaticEarthInertialTime is the fixed instant substituted for observation
// timestamps when sanitizing observer-look arguments. The observer-look
// result drifts on the order of 1e-10 degrees as the true time changes, so a
// single canonical instant collapses near-duplicate calls into one cache
// entry. It is only used when caching.
var StaticEarthInertialTime = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// ObserverLookSanitizer sanitizes arguments for sensor look-angle
// computations: timestamps become StaticEarthInertialTime and floating-point
// scalars are rounded to the nearest tenth. Everything else passes through
// unchanged. This is a deliberate precision/cache-hit trade-off, not a
// correctness guarantee.
func ObserverLookSanitizer(args []Arg) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		switch a.Kind {
		case KindTime:
			a.Time = StaticEarthInertialTime
		case KindFloat:
			a.Float = math.Round(a.Float*10) / 10
		}
		out[i] = a
	}
	return out
}

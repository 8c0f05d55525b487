package diskcache

import (
	satangles "github.com/skysight/satangles"
)

// Policy decides, per call, whether caching should be attempted.
//
// Caching is enabled only when the function's feature flag is set, none of
// the sanitized arguments is of an uncacheable kind, and a cache directory
// resolves (explicit per-call override first, configuration default second).
// Any failing condition disables caching for that call without error.
type Policy struct {
	// FlagKey names the boolean configuration flag for this function family.
	FlagKey string
}

// ShouldCache evaluates the policy against sanitized arguments. It returns
// whether to cache and the resolved cache directory (which may be empty when
// caching is disabled).
func (p Policy) ShouldCache(cfg satangles.Config, desc Descriptor, sanitized []Arg, explicitDir string) (bool, string) {
	should := cfg.Flag(p.FlagKey)

	for _, a := range sanitized {
		if desc.isUncacheable(a) {
			should = false
			break
		}
	}

	dir := explicitDir
	if dir == "" {
		dir = cfg.CacheDir
	}
	if dir == "" {
		should = false
	}

	return should, dir
}

package diskcache

// Descriptor identifies a cacheable computation. Bumping Version moves the
// function into a fresh fingerprint namespace, invalidating every prior
// entry by construction.
type Descriptor struct {
	Name    string
	Version int

	// Uncacheable lists argument kinds whose presence disables caching for
	// a call. Nil means the default set (arrays and swath handles).
	Uncacheable []Kind
}

var defaultUncacheable = []Kind{KindArray, KindSwath}

func (d Descriptor) uncacheableKinds() []Kind {
	if d.Uncacheable == nil {
		return defaultUncacheable
	}
	return d.Uncacheable
}

func (d Descriptor) isUncacheable(a Arg) bool {
	for _, k := range d.uncacheableKinds() {
		if a.Kind == k {
			return true
		}
	}
	return false
}

package diskcache

import (
	"context"

	satangles "github.com/skysight/satangles"
	"github.com/skysight/satangles/blobstore"
	"github.com/skysight/satangles/lazy"
)

// Func is the underlying computation wrapped by a Cached. Outputs are a
// variable-arity ordered sequence of lazy arrays.
type Func func(ctx context.Context, args []Arg) ([]*lazy.Array, error)

// Cached composes a computation with its caching policy: the strategy object
// that replaces runtime function decoration. It sanitizes arguments,
// fingerprints them, consults the store, and invokes or loads.
type Cached struct {
	desc     Descriptor
	fn       Func
	sanitize SanitizeFunc
	policy   Policy
	cfg      satangles.Config
	log      *satangles.Logger
}

// Option configures a Cached at construction.
type Option func(*Cached)

// WithSanitizer sets the argument sanitizer. Sanitized arguments are used
// for fingerprinting and, when caching is active, for the call itself.
func WithSanitizer(s SanitizeFunc) Option {
	return func(c *Cached) { c.sanitize = s }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(log *satangles.Logger) Option {
	return func(c *Cached) { c.log = log }
}

// New creates a Cached computation. flagKey names the boolean configuration
// flag that gates caching for this function family; cfg is the injected
// process-wide configuration.
func New(desc Descriptor, flagKey string, cfg satangles.Config, fn Func, opts ...Option) *Cached {
	c := &Cached{
		desc:   desc,
		fn:     fn,
		policy: Policy{FlagKey: flagKey},
		cfg:    cfg,
		log:    satangles.NoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption overrides cache placement for a single call.
type CallOption func(*callOptions)

type callOptions struct {
	dir   string
	blobs blobstore.Store
}

// WithCacheDir overrides the configured cache directory for this call.
func WithCacheDir(dir string) CallOption {
	return func(o *callOptions) { o.dir = dir }
}

// WithStore routes this call's artifacts through an explicit backend (for
// example an S3-compatible store) instead of the local filesystem. A non-nil
// store satisfies the cache-directory requirement on its own.
func WithStore(s blobstore.Store) CallOption {
	return func(o *callOptions) { o.blobs = s }
}

// Call invokes the computation through the cache.
//
// The fingerprint is always computed, even for ineligible calls; it is cheap
// and the artifact path template needs it. When caching is active the
// returned outputs are always the lazily-reopened on-disk form, on hit and
// on the miss that just wrote them, so callers observe one representation
// regardless of cache state. Ineligibility is not an error: the computation
// runs with the original arguments and its outputs are returned directly.
func (c *Cached) Call(ctx context.Context, args []Arg, opts ...CallOption) ([]*lazy.Array, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	sanitized := args
	if c.sanitize != nil {
		sanitized = c.sanitize(args)
	}

	fingerprint, err := Fingerprint(c.desc, sanitized)
	if err != nil {
		return nil, err
	}

	should, dir := c.policy.ShouldCache(c.cfg, c.desc, sanitized, o.dir)
	if o.blobs != nil {
		// An explicit backend stands in for a resolvable directory.
		should = c.cfg.Flag(c.policy.FlagKey) && c.eligibleArgs(sanitized)
	}
	if !should {
		// Plain passthrough: nothing to consult, nothing to persist.
		return c.fn(ctx, args)
	}
	if o.blobs == nil {
		o.blobs = blobstore.NewLocal(dir)
	}

	store := NewStore(o.blobs)
	log := c.log.WithFunction(c.desc.Name).WithFingerprint(fingerprint)

	entries, err := store.Exists(ctx, c.desc.Name, c.desc.Version, fingerprint)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		// Miss: run the computation with the sanitized arguments so the
		// entry matches what later hits will return.
		outputs, err := c.fn(ctx, sanitized)
		if err != nil {
			return nil, err
		}
		log.Debug("cache miss, writing artifacts", "outputs", len(outputs))
		if err := store.Write(ctx, c.desc.Name, c.desc.Version, fingerprint, outputs); err != nil {
			return nil, err
		}
	} else {
		log.Debug("cache hit", "outputs", len(entries))
	}

	// Re-enumerate after the possible write so hit and miss return the same
	// lazily-backed representation.
	entries, err = store.Exists(ctx, c.desc.Name, c.desc.Version, fingerprint)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrCacheInconsistent
	}
	return store.Read(entries)
}

func (c *Cached) eligibleArgs(sanitized []Arg) bool {
	for _, a := range sanitized {
		if c.desc.isUncacheable(a) {
			return false
		}
	}
	return true
}

// Clear removes every on-disk entry belonging to this function, across all
// versions, and reports a per-entry outcome. It fails only when no cache
// location can be resolved at all.
func (c *Cached) Clear(ctx context.Context, opts ...CallOption) ([]RemovalOutcome, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.blobs == nil {
		dir := o.dir
		if dir == "" {
			dir = c.cfg.CacheDir
		}
		if dir == "" {
			return nil, ErrNoCacheDir
		}
		o.blobs = blobstore.NewLocal(dir)
	}

	return NewStore(o.blobs).Clear(ctx, c.desc.Name)
}

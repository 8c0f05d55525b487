package diskcache

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	satangles "github.com/skysight/satangles"
	"github.com/skysight/satangles/blobstore"
	"github.com/skysight/satangles/lazy"
)

// stubExtraction mimics a lon/lat grid extraction: two outputs derived from
// the geometry hash, with an invocation counter.
type stubExtraction struct {
	calls atomic.Int64
}

func (s *stubExtraction) fn(ctx context.Context, args []Arg) ([]*lazy.Array, error) {
	s.calls.Add(1)
	return []*lazy.Array{constArray(4, 6, 10), constArray(4, 6, 20)}, nil
}

func lonlatsCached(cfg satangles.Config, s *stubExtraction) *Cached {
	return New(
		Descriptor{Name: "get_valid_lonlats", Version: 1},
		"cache_lonlats",
		cfg,
		s.fn,
	)
}

func gridArgs() []Arg {
	return []Arg{
		Geometry(fakeArea{hash: "area-A"}),
		Chunks(lazy.ChunkSpec{Rows: 2, Cols: 3}),
	}
}

func materialize(t *testing.T, outputs []*lazy.Array) [][]float64 {
	t.Helper()
	grids, err := lazy.ComputeAll(context.Background(), outputs...)
	require.NoError(t, err)
	data := make([][]float64, len(grids))
	for i, g := range grids {
		data[i] = g.Data
	}
	return data
}

func TestCallPassthroughNoCacheDir(t *testing.T) {
	stub := &stubExtraction{}
	// Flag on, but no cache directory anywhere: silently ineligible.
	c := lonlatsCached(satangles.Config{CacheLonLats: true}, stub)

	outputs, err := c.Call(context.Background(), gridArgs())
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, int64(1), stub.calls.Load())

	direct, err := stub.fn(context.Background(), gridArgs())
	require.NoError(t, err)
	assert.Equal(t, materialize(t, direct), materialize(t, outputs))
}

func TestCallPassthroughFlagOff(t *testing.T) {
	stub := &stubExtraction{}
	dir := t.TempDir()
	c := lonlatsCached(satangles.Config{CacheDir: dir}, stub)

	_, err := c.Call(context.Background(), gridArgs())
	require.NoError(t, err)

	// Nothing persisted.
	listing, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, listing)
}

func TestCallIneligibleUncacheableArg(t *testing.T) {
	stub := &stubExtraction{}
	dir := t.TempDir()
	c := lonlatsCached(satangles.Config{CacheDir: dir, CacheLonLats: true}, stub)

	args := []Arg{Swath(struct{ name string }{"swath-geom"}), Chunks(lazy.ChunkSpec{Rows: 2, Cols: 3})}
	outputs, err := c.Call(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, int64(1), stub.calls.Load())

	// No artifact directories under the cache root.
	listing, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, listing)
}

func TestCallHitAvoidsRecomputation(t *testing.T) {
	stub := &stubExtraction{}
	dir := t.TempDir()
	c := lonlatsCached(satangles.Config{CacheDir: dir, CacheLonLats: true}, stub)

	first, err := c.Call(context.Background(), gridArgs())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, int64(1), stub.calls.Load())

	// Exactly two artifact directories, indices 0 and 1, sharing one
	// fingerprint, plus the manifest.
	listing, err := os.ReadDir(dir)
	require.NoError(t, err)
	var artifacts []string
	var manifests int
	for _, e := range listing {
		if e.IsDir() {
			artifacts = append(artifacts, e.Name())
		} else if strings.HasSuffix(e.Name(), ".manifest.json") {
			manifests++
		}
	}
	require.Len(t, artifacts, 2)
	assert.Equal(t, 1, manifests)
	fp := strings.TrimSuffix(strings.TrimPrefix(artifacts[0], "get_valid_lonlats_v1_0_"), ".chunks")
	assert.Contains(t, artifacts, "get_valid_lonlats_v1_0_"+fp+".chunks")
	assert.Contains(t, artifacts, "get_valid_lonlats_v1_1_"+fp+".chunks")

	second, err := c.Call(context.Background(), gridArgs())
	require.NoError(t, err)

	// No re-invocation, and bit-identical values.
	assert.Equal(t, int64(1), stub.calls.Load())
	assert.Equal(t, materialize(t, first), materialize(t, second))
}

func TestCallMissReturnsReopenedForm(t *testing.T) {
	dir := t.TempDir()
	var produced *lazy.Array
	c := New(
		Descriptor{Name: "f", Version: 1},
		"cache_lonlats",
		satangles.Config{CacheDir: dir, CacheLonLats: true},
		func(ctx context.Context, args []Arg) ([]*lazy.Array, error) {
			produced = constArray(2, 2, 5)
			return []*lazy.Array{produced}, nil
		},
	)

	outputs, err := c.Call(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	// Even the call that performed the write observes the on-disk form, not
	// the array the computation returned.
	assert.NotSame(t, produced, outputs[0])
}

func TestCallDistinctChunksDistinctEntries(t *testing.T) {
	stub := &stubExtraction{}
	dir := t.TempDir()
	c := lonlatsCached(satangles.Config{CacheDir: dir, CacheLonLats: true}, stub)

	_, err := c.Call(context.Background(), []Arg{Geometry(fakeArea{hash: "A"}), Chunks(lazy.ChunkSpec{Rows: 2, Cols: 2})})
	require.NoError(t, err)
	_, err = c.Call(context.Background(), []Arg{Geometry(fakeArea{hash: "A"}), Chunks(lazy.ChunkSpec{Rows: 4, Cols: 4})})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stub.calls.Load())
}

func TestCallExplicitDirOverridesConfig(t *testing.T) {
	stub := &stubExtraction{}
	configured := t.TempDir()
	override := t.TempDir()
	c := lonlatsCached(satangles.Config{CacheDir: configured, CacheLonLats: true}, stub)

	_, err := c.Call(context.Background(), gridArgs(), WithCacheDir(override))
	require.NoError(t, err)

	listing, err := os.ReadDir(configured)
	require.NoError(t, err)
	assert.Empty(t, listing)

	listing, err = os.ReadDir(override)
	require.NoError(t, err)
	assert.NotEmpty(t, listing)
}

func TestCallExplicitStore(t *testing.T) {
	stub := &stubExtraction{}
	blobs := blobstore.NewMemory()
	// No cache dir at all: the explicit backend satisfies the requirement.
	c := lonlatsCached(satangles.Config{CacheLonLats: true}, stub)

	_, err := c.Call(context.Background(), gridArgs(), WithStore(blobs))
	require.NoError(t, err)
	_, err = c.Call(context.Background(), gridArgs(), WithStore(blobs))
	require.NoError(t, err)

	assert.Equal(t, int64(1), stub.calls.Load())
}

// blackholeStore accepts writes but never returns them, simulating a backend
// that loses data between write and read-back.
type blackholeStore struct {
	blobstore.Store
}

func (s *blackholeStore) Put(ctx context.Context, key string, data []byte) error { return nil }

func TestCallConsistencyError(t *testing.T) {
	stub := &stubExtraction{}
	c := lonlatsCached(satangles.Config{CacheLonLats: true}, stub)

	_, err := c.Call(context.Background(), gridArgs(), WithStore(&blackholeStore{Store: blobstore.NewMemory()}))
	require.ErrorIs(t, err, ErrCacheInconsistent)
}

func TestCallSanitizedArgsUsedWhenCaching(t *testing.T) {
	dir := t.TempDir()
	var seen []Arg
	c := New(
		Descriptor{Name: "get_sensor_angles_from_sat_pos", Version: 1},
		"cache_sensor_angles",
		satangles.Config{CacheDir: dir, CacheSensorAngles: true},
		func(ctx context.Context, args []Arg) ([]*lazy.Array, error) {
			seen = append([]Arg(nil), args...)
			return []*lazy.Array{constArray(2, 2, 0)}, nil
		},
		WithSanitizer(ObserverLookSanitizer),
	)

	_, err := c.Call(context.Background(), []Arg{Float(10.04)})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, 10.0, seen[0].Float)

	// Without caching, the original arguments are passed through.
	c2 := New(
		Descriptor{Name: "get_sensor_angles_from_sat_pos", Version: 1},
		"cache_sensor_angles",
		satangles.Config{},
		func(ctx context.Context, args []Arg) ([]*lazy.Array, error) {
			seen = append([]Arg(nil), args...)
			return []*lazy.Array{constArray(2, 2, 0)}, nil
		},
		WithSanitizer(ObserverLookSanitizer),
	)
	_, err = c2.Call(context.Background(), []Arg{Float(10.04)})
	require.NoError(t, err)
	assert.Equal(t, 10.04, seen[0].Float)
}

func TestClearNoCacheDir(t *testing.T) {
	c := lonlatsCached(satangles.Config{}, &stubExtraction{})
	_, err := c.Clear(context.Background())
	require.ErrorIs(t, err, ErrNoCacheDir)
}

func TestClearRemovesOnlyOwnEntries(t *testing.T) {
	dir := t.TempDir()
	cfg := satangles.Config{CacheDir: dir, CacheLonLats: true, CacheSensorAngles: true}

	lonlats := lonlatsCached(cfg, &stubExtraction{})
	sensor := New(
		Descriptor{Name: "get_sensor_angles_from_sat_pos", Version: 1},
		"cache_sensor_angles",
		cfg,
		func(ctx context.Context, args []Arg) ([]*lazy.Array, error) {
			return []*lazy.Array{constArray(2, 2, 1)}, nil
		},
	)

	_, err := lonlats.Call(context.Background(), gridArgs())
	require.NoError(t, err)
	_, err = sensor.Call(context.Background(), []Arg{Float(1)})
	require.NoError(t, err)

	outcomes, err := lonlats.Clear(context.Background())
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}

	listing, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range listing {
		assert.True(t, strings.HasPrefix(e.Name(), "get_sensor_angles_from_sat_pos_"),
			"unexpected survivor %s", e.Name())
	}
	assert.NotEmpty(t, listing)
}

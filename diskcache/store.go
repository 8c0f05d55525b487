package diskcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/skysight/satangles/blobstore"
	"github.com/skysight/satangles/chunkstore"
	"github.com/skysight/satangles/lazy"
)

// Entry addresses one stored output of a cached call.
type Entry struct {
	// Index is the logical output position within the call.
	Index int
	// Path is the artifact directory, relative to the cache root.
	Path string
}

// RemovalOutcome reports the fate of one artifact during Clear. Err is nil
// for a successful removal.
type RemovalOutcome struct {
	Path string
	Err  error
}

// cacheManifest records the outputs of one fingerprint so they are read back
// in index order, never in directory-listing order.
type cacheManifest struct {
	Outputs int      `json:"outputs"`
	Paths   []string `json:"paths"`
}

// Store owns the on-disk layout of cached artifacts under one cache root.
//
// One artifact directory per output:
//
//	<root>/<name>_v<version>_<index>_<fingerprint>.chunks
//
// plus a manifest per fingerprint:
//
//	<root>/<name>_v<version>_<fingerprint>.manifest.json
//
// Distinct functions share the root but are namespace-isolated by their
// name/version prefixes.
type Store struct {
	blobs blobstore.Store
}

// NewStore creates a Store over the given backend.
func NewStore(blobs blobstore.Store) *Store {
	return &Store{blobs: blobs}
}

func artifactDir(name string, version, index int, fingerprint string) string {
	return fmt.Sprintf("%s_v%d_%d_%s%s", name, version, index, fingerprint, chunkstore.Ext)
}

func manifestKey(name string, version int, fingerprint string) string {
	return fmt.Sprintf("%s_v%d_%s.manifest.json", name, version, fingerprint)
}

// functionPrefix matches every version of a function, mirroring a wildcard
// version in the artifact pattern.
func functionPrefix(name string) string {
	return name + "_v"
}

// Exists enumerates the stored outputs for a fingerprint, in manifest order.
// A missing manifest means no entry; artifact directories without a manifest
// are incomplete writes and are not reported.
func (s *Store) Exists(ctx context.Context, name string, version int, fingerprint string) ([]Entry, error) {
	data, err := s.blobs.Get(ctx, manifestKey(name, version, fingerprint))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("diskcache: read manifest: %w", err)
	}

	var m cacheManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("diskcache: corrupt manifest for %s v%d: %w", name, version, err)
	}
	if len(m.Paths) != m.Outputs {
		return nil, fmt.Errorf("diskcache: manifest for %s v%d lists %d paths for %d outputs",
			name, version, len(m.Paths), m.Outputs)
	}

	entries := make([]Entry, len(m.Paths))
	for i, p := range m.Paths {
		entries[i] = Entry{Index: i, Path: p}
	}
	return entries, nil
}

// Write materializes all outputs of one call into artifact directories and
// records them in the manifest. Every output must be a lazy array; the check
// runs before any chunk is written. All outputs are evaluated in a single
// batched pass so the computation graph is walked once, and the manifest is
// written last, so a crashed write never yields a readable entry.
func (s *Store) Write(ctx context.Context, name string, version int, fingerprint string, outputs []*lazy.Array) error {
	for i, out := range outputs {
		if out == nil {
			return &ErrNotLazyArray{Index: i}
		}
	}

	dirs := make([]string, len(outputs))
	for i := range outputs {
		dirs[i] = artifactDir(name, version, i, fingerprint)
	}

	if err := chunkstore.WriteAll(ctx, s.blobs, dirs, outputs, nil); err != nil {
		return fmt.Errorf("diskcache: write artifacts for %s v%d: %w", name, version, err)
	}

	m := cacheManifest{Outputs: len(dirs), Paths: dirs}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, manifestKey(name, version, fingerprint), data); err != nil {
		return fmt.Errorf("diskcache: write manifest for %s v%d: %w", name, version, err)
	}
	return nil
}

// Read reopens stored outputs as lazy arrays, one per entry, in entry order.
func (s *Store) Read(entries []Entry) ([]*lazy.Array, error) {
	outputs := make([]*lazy.Array, len(entries))
	for i, e := range entries {
		arr, err := chunkstore.Open(s.blobs, e.Path)
		if err != nil {
			return nil, err
		}
		outputs[i] = arr
	}
	return outputs, nil
}

// Clear removes every artifact and manifest belonging to the function, across
// all versions. Each removal is best-effort: a failed entry is recorded in
// the outcome list and the sweep continues. The returned error is reserved
// for failures to enumerate the cache at all.
func (s *Store) Clear(ctx context.Context, name string) ([]RemovalOutcome, error) {
	prefix := functionPrefix(name)
	keys, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("diskcache: list cache entries for %s: %w", name, err)
	}

	// Reduce chunk-level keys to their artifact directories; manifests are
	// plain keys of their own.
	dirs := make(map[string]struct{})
	var manifests []string
	for _, key := range keys {
		if idx := strings.Index(key, chunkstore.Ext+"/"); idx >= 0 {
			dirs[key[:idx+len(chunkstore.Ext)]] = struct{}{}
		} else if strings.HasSuffix(key, ".manifest.json") {
			manifests = append(manifests, key)
		}
	}

	var outcomes []RemovalOutcome
	// Manifests go first so a partially-cleared entry is unreadable rather
	// than missing chunks.
	for _, key := range manifests {
		outcomes = append(outcomes, RemovalOutcome{Path: key, Err: s.blobs.Delete(ctx, key)})
	}
	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)
	for _, dir := range sorted {
		outcomes = append(outcomes, RemovalOutcome{Path: dir, Err: s.blobs.DeletePrefix(ctx, dir)})
	}
	return outcomes, nil
}

package blobstore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local implements Store on the local filesystem, rooted at a directory.
type Local struct {
	root string
}

// NewLocal creates a filesystem store rooted at the given directory.
// The directory is created on first Put, not here; a missing root simply
// lists as empty.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Root returns the root directory of the store.
func (s *Local) Root() string { return s.root }

func (s *Local) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put writes data under key via a temp file and rename, so readers never
// observe a partially-written value.
func (s *Local) Put(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Get reads the value under key.
func (s *Local) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

// List walks the root and returns all keys with the given prefix.
func (s *Local) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) && !strings.HasPrefix(filepath.Base(key), ".tmp-") {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes a single key. Missing keys are not an error.
func (s *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// DeletePrefix removes every key under the prefix. A prefix that maps to a
// directory is removed as a unit.
func (s *Local) DeletePrefix(ctx context.Context, prefix string) error {
	path := s.path(strings.TrimSuffix(prefix, "/"))
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return os.RemoveAll(path)
	}

	keys, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

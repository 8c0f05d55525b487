package chunkstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/skysight/satangles/blobstore"
	"github.com/skysight/satangles/lazy"
)

const (
	// Ext is the artifact directory extension.
	Ext = ".chunks"
	// MetaFileName is the per-artifact metadata file, written after all
	// chunk payloads.
	MetaFileName = "meta.json"

	metaVersion = 1
)

// Meta describes one stored array.
type Meta struct {
	Version int            `json:"version"`
	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Chunks  lazy.ChunkSpec `json:"chunks"`
	DType   string         `json:"dtype"`
	Codec   string         `json:"codec"`
}

func chunkKey(dir string, b lazy.Block) string {
	return path.Join(dir, fmt.Sprintf("c.%d.%d", b.Row, b.Col))
}

func metaKey(dir string) string {
	return path.Join(dir, MetaFileName)
}

// Write stores one array under dir using the default codec.
func Write(ctx context.Context, store blobstore.Store, dir string, arr *lazy.Array) error {
	return WriteAll(ctx, store, []string{dir}, []*lazy.Array{arr}, Default)
}

// WriteAll stores several arrays in one materialization pass: a single worker
// pool spans every block of every array, so all outputs of one computation
// are evaluated together rather than graph-walked per output. Each meta.json
// is written only after all of its chunk payloads, and a failed write leaves
// no readable artifact behind.
func WriteAll(ctx context.Context, store blobstore.Store, dirs []string, arrays []*lazy.Array, codec Codec) error {
	if len(dirs) != len(arrays) {
		return fmt.Errorf("chunkstore: %d dirs for %d arrays", len(dirs), len(arrays))
	}
	if codec == nil {
		codec = Default
	}

	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	g, gctx := errgroup.WithContext(ctx)

	for i, arr := range arrays {
		dir, arr := dirs[i], arr
		for _, blk := range arr.Blocks() {
			blk := blk
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				buf, err := arr.Generate(gctx, blk)
				if err != nil {
					return err
				}
				payload, err := codec.Encode(floatsToBytes(buf))
				if err != nil {
					return err
				}
				return store.Put(gctx, chunkKey(dir, blk), payload)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, arr := range arrays {
		rows, cols := arr.Shape()
		meta := Meta{
			Version: metaVersion,
			Rows:    rows,
			Cols:    cols,
			Chunks:  arr.Chunks(),
			DType:   "float64",
			Codec:   codec.Name(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, metaKey(dirs[i]), data); err != nil {
			return err
		}
	}
	return nil
}

// Open returns a lazy array whose blocks are fetched and decoded from the
// store on demand.
func Open(store blobstore.Store, dir string) (*lazy.Array, error) {
	data, err := store.Get(context.Background(), metaKey(dir))
	if err != nil {
		return nil, fmt.Errorf("chunkstore: open %s: %w", dir, err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("chunkstore: corrupt metadata in %s: %w", dir, err)
	}
	if meta.Version != metaVersion {
		return nil, fmt.Errorf("chunkstore: unsupported metadata version %d in %s", meta.Version, dir)
	}
	if meta.DType != "float64" {
		return nil, fmt.Errorf("chunkstore: unsupported dtype %q in %s", meta.DType, dir)
	}
	codec, ok := ByName(meta.Codec)
	if !ok {
		return nil, fmt.Errorf("chunkstore: unknown codec %q in %s", meta.Codec, dir)
	}

	gen := func(ctx context.Context, b lazy.Block, dst []float64) error {
		payload, err := store.Get(ctx, chunkKey(dir, b))
		if err != nil {
			return fmt.Errorf("chunkstore: chunk (%d,%d) of %s: %w", b.Row, b.Col, dir, err)
		}
		raw, err := codec.Decode(payload, len(dst)*8)
		if err != nil {
			return fmt.Errorf("chunkstore: chunk (%d,%d) of %s: %w", b.Row, b.Col, dir, err)
		}
		bytesToFloats(raw, dst)
		return nil
	}

	return lazy.New(meta.Rows, meta.Cols, meta.Chunks, gen), nil
}

func floatsToBytes(vals []float64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func bytesToFloats(data []byte, dst []float64) {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
}

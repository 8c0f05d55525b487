package lazy

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ChunkSpec describes the chunk layout of a 2D grid.
// Non-positive dimensions mean "one chunk spanning the whole axis".
type ChunkSpec struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (c ChunkSpec) normalize(rows, cols int) ChunkSpec {
	if c.Rows <= 0 || c.Rows > rows {
		c.Rows = rows
	}
	if c.Cols <= 0 || c.Cols > cols {
		c.Cols = cols
	}
	return c
}

// Block identifies one chunk of an Array.
type Block struct {
	// Row and Col are the block indices in the chunk grid.
	Row, Col int
	// Y0 and X0 are the offsets of the block origin in the full grid.
	Y0, X0 int
	// Rows and Cols are the block extent. Edge blocks may be smaller than
	// the chunk spec.
	Rows, Cols int
}

// Grid is a materialized row-major 2D float64 array.
type Grid struct {
	Rows, Cols int
	Data       []float64
}

// NewGrid allocates a zero-filled grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the value at (y, x).
func (g *Grid) At(y, x int) float64 { return g.Data[y*g.Cols+x] }

// Set stores v at (y, x).
func (g *Grid) Set(y, x int, v float64) { g.Data[y*g.Cols+x] = v }

// Generator fills dst (len b.Rows*b.Cols, row-major within the block) with the
// values of one block. Implementations must be safe for concurrent use; blocks
// of one materialization pass may be generated in parallel.
type Generator func(ctx context.Context, b Block, dst []float64) error

// Array is a deferred 2D float64 array. It carries no data, only the recipe
// to produce any block on demand.
type Array struct {
	rows, cols int
	chunks     ChunkSpec
	gen        Generator
}

// New creates a deferred array with the given shape and chunk layout.
func New(rows, cols int, chunks ChunkSpec, gen Generator) *Array {
	return &Array{
		rows:   rows,
		cols:   cols,
		chunks: chunks.normalize(rows, cols),
		gen:    gen,
	}
}

// FromGrid wraps an already-materialized grid as a deferred array.
func FromGrid(g *Grid, chunks ChunkSpec) *Array {
	return New(g.Rows, g.Cols, chunks, func(_ context.Context, b Block, dst []float64) error {
		for y := 0; y < b.Rows; y++ {
			src := g.Data[(b.Y0+y)*g.Cols+b.X0 : (b.Y0+y)*g.Cols+b.X0+b.Cols]
			copy(dst[y*b.Cols:(y+1)*b.Cols], src)
		}
		return nil
	})
}

// Shape returns (rows, cols).
func (a *Array) Shape() (int, int) { return a.rows, a.cols }

// Chunks returns the normalized chunk layout.
func (a *Array) Chunks() ChunkSpec { return a.chunks }

// Blocks enumerates the chunk grid in row-major order. The order is
// deterministic and is the canonical block order for on-disk layouts.
func (a *Array) Blocks() []Block {
	var blocks []Block
	for y0 := 0; y0 < a.rows; y0 += a.chunks.Rows {
		for x0 := 0; x0 < a.cols; x0 += a.chunks.Cols {
			rows := a.chunks.Rows
			if y0+rows > a.rows {
				rows = a.rows - y0
			}
			cols := a.chunks.Cols
			if x0+cols > a.cols {
				cols = a.cols - x0
			}
			blocks = append(blocks, Block{
				Row:  y0 / a.chunks.Rows,
				Col:  x0 / a.chunks.Cols,
				Y0:   y0,
				X0:   x0,
				Rows: rows,
				Cols: cols,
			})
		}
	}
	return blocks
}

// Generate produces one block into a freshly allocated buffer.
func (a *Array) Generate(ctx context.Context, b Block) ([]float64, error) {
	dst := make([]float64, b.Rows*b.Cols)
	if err := a.gen(ctx, b, dst); err != nil {
		return nil, fmt.Errorf("generate block (%d,%d): %w", b.Row, b.Col, err)
	}
	return dst, nil
}

// Map returns a deferred elementwise transform of a.
func (a *Array) Map(f func(float64) float64) *Array {
	inner := a.gen
	return New(a.rows, a.cols, a.chunks, func(ctx context.Context, b Block, dst []float64) error {
		if err := inner(ctx, b, dst); err != nil {
			return err
		}
		for i, v := range dst {
			dst[i] = f(v)
		}
		return nil
	})
}

// Map2 returns a deferred elementwise combination of two arrays of the same
// shape. The result uses a's chunk layout.
func Map2(a, b *Array, f func(x, y float64) float64) (*Array, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, fmt.Errorf("shape mismatch: %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	return New(a.rows, a.cols, a.chunks, func(ctx context.Context, blk Block, dst []float64) error {
		other := make([]float64, blk.Rows*blk.Cols)
		if err := b.gen(ctx, blk, other); err != nil {
			return err
		}
		if err := a.gen(ctx, blk, dst); err != nil {
			return err
		}
		for i := range dst {
			dst[i] = f(dst[i], other[i])
		}
		return nil
	}), nil
}

// Compute materializes the array.
func (a *Array) Compute(ctx context.Context) (*Grid, error) {
	grids, err := ComputeAll(ctx, a)
	if err != nil {
		return nil, err
	}
	return grids[0], nil
}

// ComputeAll materializes several arrays in one pass. Every block of every
// array is generated exactly once, bounded by a shared worker budget, so
// callers that need all outputs of one computation can evaluate them together
// instead of walking the graph per output.
func ComputeAll(ctx context.Context, arrays ...*Array) ([]*Grid, error) {
	grids := make([]*Grid, len(arrays))
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

	g, ctx := errgroup.WithContext(ctx)
	for i, arr := range arrays {
		grid := NewGrid(arr.rows, arr.cols)
		grids[i] = grid

		for _, blk := range arr.Blocks() {
			arr, blk := arr, blk
			g.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				buf, err := arr.Generate(ctx, blk)
				if err != nil {
					return err
				}
				for y := 0; y < blk.Rows; y++ {
					copy(grid.Data[(blk.Y0+y)*grid.Cols+blk.X0:(blk.Y0+y)*grid.Cols+blk.X0+blk.Cols],
						buf[y*blk.Cols:(y+1)*blk.Cols])
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}

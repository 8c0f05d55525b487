package diskcache

import (
	"time"

	"github.com/skysight/satangles/lazy"
)

// Kind tags the role of one call argument. Sanitization and hashing dispatch
// on the kind, fixed at call-site construction, never on runtime inspection
// of an interface value.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindTime
	KindChunks
	// KindGeometry is a content-hashable geometry definition (an area).
	KindGeometry
	// KindSwath is an opaque geometry handle without a stable content hash.
	// Swaths are never hashed and make a call uncacheable.
	KindSwath
	// KindArray is an opaque lazy array. Arrays are never hashed and make a
	// call uncacheable.
	KindArray
)

// Hashable geometry definitions provide a stable content hash that stands in
// for the full coordinate set when fingerprinting.
type Hashable interface {
	ContentHash() string
}

// Arg is one positional argument of a cached computation. Order is
// semantically significant; sanitizers preserve arity and order.
type Arg struct {
	Kind     Kind
	Float    float64
	Int      int64
	Str      string
	Time     time.Time
	Chunks   lazy.ChunkSpec
	Geometry Hashable
	Opaque   any
	Array    *lazy.Array
}

// Float wraps a floating-point scalar.
func Float(v float64) Arg { return Arg{Kind: KindFloat, Float: v} }

// Int wraps an integer scalar.
func Int(v int64) Arg { return Arg{Kind: KindInt, Int: v} }

// String wraps a string.
func String(v string) Arg { return Arg{Kind: KindString, Str: v} }

// Time wraps a timestamp.
func Time(t time.Time) Arg { return Arg{Kind: KindTime, Time: t} }

// Chunks wraps a chunk layout.
func Chunks(c lazy.ChunkSpec) Arg { return Arg{Kind: KindChunks, Chunks: c} }

// Geometry wraps a content-hashable geometry definition.
func Geometry(g Hashable) Arg { return Arg{Kind: KindGeometry, Geometry: g} }

// Swath wraps an opaque geometry handle that cannot be fingerprinted.
func Swath(v any) Arg { return Arg{Kind: KindSwath, Opaque: v} }

// Array wraps an opaque lazy array.
func Array(a *lazy.Array) Arg { return Arg{Kind: KindArray, Array: a} }

// neverHashed reports whether the argument is dropped before hashing. This
// exclusion applies regardless of eligibility.
func (a Arg) neverHashed() bool {
	return a.Kind == KindArray || a.Kind == KindSwath
}

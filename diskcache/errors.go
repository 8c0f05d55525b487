package diskcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCacheDir is returned when an operation that requires a cache
	// directory (such as Clear) finds none configured.
	ErrNoCacheDir = errors.New("diskcache: no cache directory configured")

	// ErrCacheInconsistent is returned when a write reported success but a
	// subsequent enumeration finds no artifacts. It signals a store or
	// filesystem malfunction, not a cache miss.
	ErrCacheInconsistent = errors.New("diskcache: results were cached but no artifacts were found")
)

// ErrNotLazyArray indicates that a to-be-cached output is not a usable lazy
// array. It is raised before any chunk of that call is written.
type ErrNotLazyArray struct {
	Index int
}

func (e *ErrNotLazyArray) Error() string {
	return fmt.Sprintf("diskcache: output %d is not a lazy array; only lazy arrays can be cached", e.Index)
}

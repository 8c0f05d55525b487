package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// canonicalTimeLayout is the textual form timestamps take in the hashed
// tuple. It is timezone-normalized to UTC before formatting.
const canonicalTimeLayout = "2006-01-02 15:04:05"

// Fingerprint derives the deterministic cache fingerprint for a call.
//
// Arguments that are never hashed (arrays, swath handles) are dropped first,
// regardless of whether the call ends up eligible for caching. Geometry
// definitions contribute their content hash, timestamps their canonical
// textual form. The reduced tuple, prefixed with the function name and
// version, is serialized with a stable encoding and digested with SHA-256.
// Identical reduced tuples always hash identically, independent of process
// or platform.
func Fingerprint(desc Descriptor, args []Arg) (string, error) {
	reduced := make([]any, 0, len(args)+2)
	reduced = append(reduced, desc.Name, desc.Version)

	for i, a := range args {
		if a.neverHashed() {
			continue
		}
		switch a.Kind {
		case KindFloat:
			reduced = append(reduced, a.Float)
		case KindInt:
			reduced = append(reduced, a.Int)
		case KindString:
			reduced = append(reduced, a.Str)
		case KindTime:
			reduced = append(reduced, a.Time.UTC().Format(canonicalTimeLayout))
		case KindChunks:
			reduced = append(reduced, [2]int{a.Chunks.Rows, a.Chunks.Cols})
		case KindGeometry:
			if a.Geometry == nil {
				return "", fmt.Errorf("diskcache: geometry argument %d has no content hash", i)
			}
			reduced = append(reduced, a.Geometry.ContentHash())
		default:
			return "", fmt.Errorf("diskcache: argument %d has unknown kind %d", i, a.Kind)
		}
	}

	// JSON arrays encode in element order with no field reordering, which
	// makes the digest stable across processes.
	data, err := json.Marshal(reduced)
	if err != nil {
		return "", fmt.Errorf("diskcache: encode arguments: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

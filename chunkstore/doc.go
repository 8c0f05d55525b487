// Package chunkstore persists lazy arrays as directory-per-array chunk stores.
//
// An artifact directory holds one compressed payload per block plus a
// meta.json describing shape, chunk layout, dtype, and codec. meta.json is
// written last, so a directory without it is an incomplete write and is
// ignored by readers.
//
// Codec selection is a breaking-change boundary: payloads written by one
// codec are only readable by the same codec, which is why the codec name is
// recorded in the metadata.
package chunkstore

// Package blobstore abstracts the byte-level backend under the cache root.
//
// Keys are slash-separated relative paths. A cached artifact occupies a key
// prefix (its directory), so DeletePrefix removes an artifact as a unit.
// Local is the default backend; the minio subpackage serves S3-compatible
// object storage for fleets sharing one cache root.
package blobstore

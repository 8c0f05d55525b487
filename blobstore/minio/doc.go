// Package minio implements blobstore.Store on MinIO and other S3-compatible
// object storage, so several processing hosts can share one cache root.
//
// Note that the cache performs no cross-process coordination; concurrent
// population of the same fingerprint relies on duplicate writes being
// content-equivalent.
package minio

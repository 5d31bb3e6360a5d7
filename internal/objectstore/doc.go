// Package objectstore talks to S3-compatible object storage with minio-go.
//
// Listing is exposed one page at a time (ListObjectsPage) so the storage
// domain walks buckets through the same pagination engine as every other
// endpoint. Objects become entities keyed by "Key"; buckets by "Name".
package objectstore

// Package storage browses object storage buckets: find keys, inspect object
// metadata, delete and download objects in bulk.
package storage

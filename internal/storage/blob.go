package storage

import "io"

// BlobStore holds the static assets of the player: topic question files and
// the reference documents questions point into.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

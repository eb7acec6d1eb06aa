package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to cold storage. The history archiver uses it to
// ship aged audit rows out of the database.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

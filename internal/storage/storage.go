package storage

import (
	"context"
	"io"
)

type PutInput struct {
	Key         string // slash-separated, relative to the store root
	ContentType string
	Size        int64
}

type PutResult struct {
	Key      string
	Location string // file:// or s3:// locator of the stored object
}

// Storage is write-only: archived payloads are read back with the backend's own tools.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
}

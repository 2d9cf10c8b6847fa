package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DocumentSource lists and reads raw course documents for ingestion.
// Implementations cover a local directory and an S3 bucket.
type DocumentSource interface {
	// List returns the names of all readable course documents
	List(ctx context.Context) ([]string, error)
	// Read opens the named document for reading
	Read(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSourceFromEnv builds a DocumentSource from environment configuration.
// DOCS_SOURCE selects the backend ("local" or "s3", defaulting to local) and
// DOCS_PATH names the directory or the bucket (optionally "bucket/prefix").
func NewSourceFromEnv() (DocumentSource, error) {
	path := os.Getenv("DOCS_PATH")
	if path == "" {
		path = "./docs"
	}

	switch source := os.Getenv("DOCS_SOURCE"); source {
	case "", "local":
		return NewLocalSource(path), nil
	case "s3":
		return NewS3SourceFromEnv(context.Background(), path)
	default:
		return nil, fmt.Errorf("unknown document source type: %s", source)
	}
}

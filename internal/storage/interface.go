package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrFileNotFound = errors.New("file not found")
)

// DocumentStore holds uploaded verification documents (ID scans, proofs of address).
// Keys are slash-separated relative paths such as "kyc/<user>/<uuid>.pdf".
type DocumentStore interface {
	// NewKey allocates a fresh key under the user's prefix, keeping filename's extension.
	NewKey(userID, filename string) string

	// UploadURL returns where the client should PUT the document bytes for key.
	UploadURL(key string) string

	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error
}

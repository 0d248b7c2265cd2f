// Package blob holds whole-value backends for file-storage shared cells.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Backend loads and atomically replaces whole documents addressed by path.
type Backend interface {
	// Load returns ErrNotFound when nothing was saved at path.
	Load(ctx context.Context, path string) ([]byte, error)
	// Save replaces the document at path. Readers observe either the previous
	// or the new document, never a partial write.
	Save(ctx context.Context, path string, data []byte) error
}

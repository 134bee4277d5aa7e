package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweeney/chronodesk/internal/config"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value blob store.
type Backend interface {
	// Get returns the blob stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the blob stored under key. A failed Put leaves the
	// previous value intact.
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// OpenBackend opens the backend selected by driver inside dataDir, creating
// the directory first.
func OpenBackend(driver, dataDir string) (Backend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch driver {
	case config.StorageFile, "":
		return NewFileBackend(dataDir)
	case config.StorageSQLite:
		return NewSQLiteBackend(filepath.Join(dataDir, "chronodesk.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

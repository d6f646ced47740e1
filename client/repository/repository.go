package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
)

const (
	fileName   = "session.yaml"
	sqliteName = "session.db"
	pebbleName = "session.pebble"
)

// Open returns the session storage selected by cfg.Storage, rooted at
// cfg.DataDir.
func Open(cfg domain.Config) (usecase.Storage, error) {
	if cfg.Storage == domain.StorageMemory {
		return NewMemory(), nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("error creating data dir: %w", err)
	}
	switch cfg.Storage {
	case domain.StorageFile, "":
		return NewFile(filepath.Join(cfg.DataDir, fileName))
	case domain.StorageSQLite:
		return NewSQLite(filepath.Join(cfg.DataDir, sqliteName))
	case domain.StoragePebble:
		return NewPebble(filepath.Join(cfg.DataDir, pebbleName))
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

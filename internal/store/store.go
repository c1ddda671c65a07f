// Package store provides board.Store backends:
//   - file: one JSON file per board (default, CLI use)
//   - memory: process-local, for tests and throwaway daemons
//   - redis: shared by several daemons
//   - mongo: one document per board
package store

import (
	"context"
	"fmt"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/config"
)

// ErrNotFound is returned when a board does not exist.
var ErrNotFound = board.ErrNotFound

// Open builds the backend selected by cfg.Storage.
func Open(ctx context.Context, cfg *config.Config) (board.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile, "":
		dir, err := cfg.BoardsDir()
		if err != nil {
			return nil, err
		}
		return NewFileStore(dir)
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageRedis:
		return NewRedisStore(ctx, cfg.Storage.Redis)
	case config.StorageMongo:
		return NewMongoStore(ctx, cfg.Storage.Mongo)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

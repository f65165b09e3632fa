// Package backend selects the storage implementation named in the configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/groupledger/internal/config"
	"github.com/mmynk/groupledger/internal/storage/postgres"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
	"github.com/mmynk/groupledger/internal/storage/sqlstore"
)

// Open connects to the configured database and applies migrations.
func Open(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.DBPath)
		return store, nil
	case "postgres":
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

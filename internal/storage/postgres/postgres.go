// Package postgres opens the PostgreSQL-backed ledger store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/groupledger/internal/storage/migrations"
	"github.com/mmynk/groupledger/internal/storage/sqlstore"
)

// New connects to databaseURL, applies pending migrations and returns a
// store backed by a pgx connection pool. Group and split request rows are
// locked with SELECT ... FOR UPDATE, so writers to different groups do not
// block each other.
func New(ctx context.Context, databaseURL string) (*sqlstore.Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	return sqlstore.New(db, sqlstore.Postgres, sqlstore.WithCloser(pool.Close)), nil
}

// RunMigrations applies pending schema migrations through a dedicated
// database/sql handle on pool.
func RunMigrations(pool *pgxpool.Pool) error {
	migrateDB := stdlib.OpenDBFromPool(pool)
	defer migrateDB.Close()

	return migrateUp(migrateDB)
}

func migrateUp(db *sql.DB) error {
	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	src, err := iofs.New(migrations.Postgres, "postgres")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

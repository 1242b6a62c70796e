package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations executes all pending database migrations found in migrationsFS
func RunMigrations(db *sql.DB, migrationsFS fs.FS, logger *zap.Logger) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...")

	if err := goose.Up(db, "."); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// MigrationStatus is the schema version the database is at and the newest
// version shipped in the migrations FS
type MigrationStatus struct {
	Current int64
	Latest  int64
}

// Pending reports whether embedded migrations have not been applied yet
func (s MigrationStatus) Pending() bool {
	return s.Current < s.Latest
}

// GetMigrationStatus returns the current migration status
func GetMigrationStatus(db *sql.DB, migrationsFS fs.FS) (MigrationStatus, error) {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	known, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to collect migrations: %w", err)
	}
	last, err := known.Last()
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to find latest migration: %w", err)
	}

	return MigrationStatus{Current: current, Latest: last.Version}, nil
}

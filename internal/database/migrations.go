package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies every pending migration in fsys and logs each one.
func RunMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, logger *zap.Logger) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, result := range results {
		logger.Info("Applied migration",
			zap.Int64("version", result.Source.Version),
			zap.String("source", result.Source.Path),
			zap.Duration("duration", result.Duration),
		)
	}
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int("applied", len(results)))
	return nil
}

// HasPendingMigrations reports whether fsys holds migrations the database
// has not applied yet.
func HasPendingMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) (bool, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return false, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider.HasPending(ctx)
}

package data

import (
	"context"
	"database/sql"

	"github.com/target/residence-console/internal/migrate"
)

// RunMigrations executes database migrations by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}

package admin

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the migration part of repomanager.RepositoryManager.
type Schema interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	SchemaVersion(ctx context.Context, db *sql.DB) (int64, error)
}

type dbMigrator struct {
	db     *sql.DB
	schema Schema
}

// NewMigrator applies the embedded migrations to db.
func NewMigrator(db *sql.DB, s Schema) Migrator {
	return &dbMigrator{db: db, schema: s}
}

func (m *dbMigrator) Migrate(ctx context.Context) (int64, error) {
	if err := m.schema.RunMigrations(ctx, m.db); err != nil {
		return 0, fmt.Errorf("migration error: %w", err)
	}
	return m.schema.SchemaVersion(ctx, m.db)
}

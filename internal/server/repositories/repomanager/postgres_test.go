package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if en := m.Entries(db); en == nil {
		t.Fatal("Entries() nil")
	}
	if ev := m.Events(db); ev == nil {
		t.Fatal("Events() nil")
	}
	if rt := m.RevokedTokens(db); rt == nil {
		t.Fatal("RevokedTokens() nil")
	}

	var _ users.Repository = m.Users(db)
	var _ entries.Repository = m.Entries(db)
	var _ events.Repository = m.Events(db)
	var _ revokedtokens.Repository = m.RevokedTokens(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseVersion
	defer func() { gooseVersion = orig }()

	gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) { return 3, nil }

	m := &PostgresRepositoryManager{}
	v, err := m.SchemaVersion(context.Background(), db)
	if err != nil || v != 3 {
		t.Fatalf("want 3, got %d %v", v, err)
	}

	gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) { return 0, errors.New("no table") }
	if _, err := m.SchemaVersion(context.Background(), db); err == nil {
		t.Fatal("expected error")
	}
}

package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/config"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifestyle/internal/server/revocation"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func testApp(t *testing.T, c *config.Config) *App {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &App{config: c, logger: logging.Nop(), db: db}
}

func TestCookiePath(t *testing.T) {
	assert.Equal(t, "/api", cookiePath("/api"))
	assert.Equal(t, "/api", cookiePath("/api/"))
	assert.Equal(t, "/", cookiePath(""))
	assert.Equal(t, "/", cookiePath("/"))
}

func TestNewApp_DBError(t *testing.T) {
	old := openDB
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { openDB = old })

	app, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewDenylist_DisabledByDefault(t *testing.T) {
	app := testApp(t, testConfig())

	d, err := app.newDenylist(context.Background(), &repomanager.PostgresRepositoryManager{})
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Nil(t, app.janitor)
}

func TestNewDenylist_Postgres(t *testing.T) {
	c := testConfig()
	c.RevokeOnLogout = true
	app := testApp(t, c)

	d, err := app.newDenylist(context.Background(), &repomanager.PostgresRepositoryManager{})
	require.NoError(t, err)
	assert.IsType(t, &revocation.PostgresDenylist{}, d)
	assert.NotNil(t, app.janitor)
}

func TestNewDenylist_RedisError(t *testing.T) {
	c := testConfig()
	c.RevokeOnLogout = true
	c.RedisURL = "redis://localhost:6379/0"
	app := testApp(t, c)

	var gotURL string
	old := newRedisDenylist
	newRedisDenylist = func(ctx context.Context, url string) (*revocation.RedisDenylist, error) {
		gotURL = url
		return nil, errors.New("redis ping: refused")
	}
	t.Cleanup(func() { newRedisDenylist = old })

	_, err := app.newDenylist(context.Background(), &repomanager.PostgresRepositoryManager{})
	require.Error(t, err)
	assert.Equal(t, c.RedisURL, gotURL)
	assert.Nil(t, app.janitor)
}

func TestClose_RunsClosersInReverse(t *testing.T) {
	app := testApp(t, testConfig())

	var order []int
	app.closers = []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errors.New("ignored") },
	}
	app.close()
	app.close()

	assert.Equal(t, []int{2, 1}, order)
}

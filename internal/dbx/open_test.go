package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_PingsTheDatabase(t *testing.T) {
	db, err := open(context.Background(), "sqlite", "file:"+t.Name()+"?mode=memory")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 20, db.Stats().MaxOpenConnections)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := open(context.Background(), "no-such-driver", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error")
}

func TestOpen_PingFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := open(ctx, "sqlite", "file:"+t.Name()+"?mode=memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
}

func TestOpen_UsesPgxDriver(t *testing.T) {
	var gotDriver string
	old := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver = driver
		return nil, errors.New("stop")
	}
	t.Cleanup(func() { sqlOpen = old })

	_, err := Open(context.Background(), "postgres://localhost/x")
	require.Error(t, err)
	assert.Equal(t, "pgx", gotDriver)
}

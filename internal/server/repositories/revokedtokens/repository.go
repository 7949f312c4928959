// Package revokedtokens provides a PostgreSQL-backed denylist of refresh
// token ids.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

type Repository interface {
	// Create denylists a token id until its expiry. Revoking the same id
	// twice is not an error.
	Create(ctx context.Context, token *models.RevokedToken) error

	// Exists reports whether tokenID is denylisted.
	Exists(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired removes rows that expired before now and returns how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

package revocation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
)

// PostgresDenylist stores revoked ids in the revoked_tokens table.
type PostgresDenylist struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostgresDenylist(db *sql.DB, m repomanager.RepositoryManager) *PostgresDenylist {
	return &PostgresDenylist{db: db, repomanager: m}
}

func (d *PostgresDenylist) Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	err := d.repomanager.RevokedTokens(d.db).Create(ctx, &models.RevokedToken{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (d *PostgresDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	found, err := d.repomanager.RevokedTokens(d.db).Exists(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("error checking revoked token: %w", err)
	}
	return found, nil
}

// Purge deletes rows whose tokens expired before now.
func (d *PostgresDenylist) Purge(ctx context.Context, now time.Time) (int64, error) {
	n, err := d.repomanager.RevokedTokens(d.db).DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("error purging revoked tokens: %w", err)
	}
	return n, nil
}

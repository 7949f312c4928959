// Package revocation keeps refresh-token ids that were explicitly revoked on
// logout. Entries live until the token itself would have expired.
package revocation

import (
	"context"
	"time"
)

// Denylist records revoked refresh-token ids.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Purger removes entries that outlived their token.
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

package models

import "time"

// RevokedToken is a denylisted refresh token id. Rows are useless after
// ExpiresAt because the token itself is expired by then.
type RevokedToken struct {
	TokenID   string
	UserID    int64
	ExpiresAt time.Time
}

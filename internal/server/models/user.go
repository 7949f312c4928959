// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash is an encoded argon2id hash and never
// leaves the service layer.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	DateJoined   time.Time
}

// UserPatch lists the fields of a partial user update; nil means unchanged.
type UserPatch struct {
	UserName     *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.UserName == nil && p.Email == nil && p.PasswordHash == nil
}

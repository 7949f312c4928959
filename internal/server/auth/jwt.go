// Package auth issues and verifies the signed tokens that carry a user's
// identity: short-lived access tokens and longer-lived refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the registered JWT claims plus the user id and token type.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"user_id"`
	TokenType TokenType `json:"token_type"`
}

// Settings configure an Issuer and a Verifier.
type Settings struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Pair is a freshly minted access/refresh token pair.
type Pair struct {
	Access  string
	Refresh string
	// RefreshID is the jti of the refresh token.
	RefreshID        string
	RefreshExpiresAt time.Time
}

// Issuer mints HS256 tokens.
type Issuer struct {
	settings Settings
}

func NewIssuer(s Settings) *Issuer {
	return &Issuer{settings: s}
}

// IssuePair mints an access and a refresh token for userID.
func (i *Issuer) IssuePair(userID int64) (*Pair, error) {
	access, _, err := i.issue(userID, TokenTypeAccess, i.settings.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := i.issue(userID, TokenTypeRefresh, i.settings.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Access:           access,
		Refresh:          refresh,
		RefreshID:        claims.ID,
		RefreshExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueAccess mints an access token for userID.
func (i *Issuer) IssueAccess(userID int64) (string, error) {
	token, _, err := i.issue(userID, TokenTypeAccess, i.settings.AccessTTL)
	return token, err
}

func (i *Issuer) issue(userID int64, typ TokenType, ttl time.Duration) (string, *Claims, error) {
	now := i.settings.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.settings.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, claims, nil
}

// Verifier checks signature, expiry and token type.
type Verifier struct {
	settings Settings
	parser   *jwt.Parser
}

func NewVerifier(s Settings) *Verifier {
	return &Verifier{
		settings: s,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(s.now),
		),
	}
}

// Verify parses tokenString and returns its claims when the token is signed
// with the configured secret, unexpired and of type want.
//
// Expired tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func (v *Verifier) Verify(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}

	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.settings.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != want || claims.UserID == 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// UserIDFromAccess is a convenience wrapper for access tokens.
func (v *Verifier) UserIDFromAccess(tokenString string) (int64, error) {
	claims, err := v.Verify(tokenString, TokenTypeAccess)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Package session implements login, refresh and logout on top of signed
// tokens. The access token travels in response bodies; the refresh token
// lives only in an HttpOnly cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/auth"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/revocation"
)

// Client-facing messages.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgLoginSuccessful     = "Login successful."
	MsgLogoutSuccessful    = "Logout successful."
)

// Authenticator checks a username and password.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Config is fixed at construction.
type Config struct {
	CookieName string
	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	RefreshTTL time.Duration
	// RevokeOnLogout denylists the presented refresh token on logout.
	RevokeOnLogout bool
}

type LoginResult struct {
	Message     string `json:"message"`
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type RefreshResult struct {
	Access string `json:"access"`
	UserID int64  `json:"user_id"`
}

type LogoutResult struct {
	Message string `json:"message"`
}

type Controller struct {
	cfg      Config
	users    Authenticator
	issuer   *auth.Issuer
	verifier *auth.Verifier
	denylist revocation.Denylist
	log      logging.Logger
}

// NewController builds a Controller. denylist may be nil, in which case
// refresh tokens stay valid until they expire.
func NewController(cfg Config, users Authenticator, issuer *auth.Issuer, verifier *auth.Verifier,
	denylist revocation.Denylist, log logging.Logger) *Controller {
	if cfg.CookieName == "" {
		cfg.CookieName = common.RefreshTokenCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &Controller{
		cfg:      cfg,
		users:    users,
		issuer:   issuer,
		verifier: verifier,
		denylist: denylist,
		log:      log,
	}
}

// CookieName is the name of the refresh cookie.
func (c *Controller) CookieName() string { return c.cfg.CookieName }

// Login authenticates the user and returns the response body together with
// the refresh cookie to set.
func (c *Controller) Login(ctx context.Context, username, password string) (*LoginResult, *http.Cookie, error) {
	if username == "" || password == "" {
		return nil, nil, common.NewAuthenticationFailed(MsgCredentialsRequired)
	}

	user, err := c.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.log.Info(ctx, "login failed", "username", username)
		}
		return nil, nil, err
	}

	pair, err := c.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("error issuing tokens: %w", err)
	}

	c.log.Info(ctx, "login succeeded", "user_id", user.ID)

	return &LoginResult{
		Message:     MsgLoginSuccessful,
		UserID:      user.ID,
		AccessToken: pair.Access,
	}, c.refreshCookie(pair.Refresh), nil
}

// Refresh mints a new access token from the refresh cookie value. The
// refresh token itself is not rotated.
func (c *Controller) Refresh(ctx context.Context, cookieValue string) (*RefreshResult, error) {
	if cookieValue == "" {
		return nil, common.ErrRefreshTokenMissing
	}

	claims, err := c.verifier.Verify(cookieValue, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	if c.denylist != nil {
		revoked, err := c.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, common.ErrTokenRevoked
		}
	}

	access, err := c.issuer.IssueAccess(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	userID, err := c.verifier.UserIDFromAccess(access)
	if err != nil {
		return nil, fmt.Errorf("error reading issued access token: %w", err)
	}

	return &RefreshResult{Access: access, UserID: userID}, nil
}

// Logout returns the cookie that clears the refresh token on the client.
// With RevokeOnLogout the presented token of userID is denylisted as well.
func (c *Controller) Logout(ctx context.Context, userID int64, cookieValue string) (*LogoutResult, *http.Cookie, error) {
	if c.cfg.RevokeOnLogout && c.denylist != nil && cookieValue != "" {
		if err := c.revoke(ctx, userID, cookieValue); err != nil {
			return nil, nil, err
		}
	}

	c.log.Info(ctx, "logout", "user_id", userID)

	return &LogoutResult{Message: MsgLogoutSuccessful}, c.expiredCookie(), nil
}

func (c *Controller) revoke(ctx context.Context, userID int64, cookieValue string) error {
	claims, err := c.verifier.Verify(cookieValue, auth.TokenTypeRefresh)
	if err != nil || claims.UserID != userID {
		// Nothing usable to revoke; the cookie is cleared anyway.
		return nil
	}
	return c.denylist.Revoke(ctx, claims.ID, userID, claims.ExpiresAt.Time.UTC())
}

func (c *Controller) refreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    value,
		Path:     c.cfg.CookiePath,
		MaxAge:   int(c.cfg.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.cfg.SameSite,
	}
}

func (c *Controller) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    "",
		Path:     c.cfg.CookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.cfg.SameSite,
	}
}

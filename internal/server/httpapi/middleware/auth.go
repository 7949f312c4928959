package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

// AccessVerifier resolves an access token to a user id.
type AccessVerifier interface {
	UserIDFromAccess(token string) (int64, error)
}

// UserGetter loads the account behind a verified token.
type UserGetter interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

type userIDKey struct{}

const bearerPrefix = "Bearer "

// Auth requires "Authorization: Bearer <access token>". The caller's id is
// stored in the context for UserIDFrom. When users is not nil, tokens of
// deleted accounts are rejected.
func Auth(v AccessVerifier, users UserGetter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, bearerPrefix) {
				unauthorized(w, apierrors.Detail{
					Detail: apierrors.DetailNotAuthenticated,
				})
				return
			}

			token := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" {
				unauthorized(w, apierrors.Detail{
					Detail: apierrors.DetailNotAuthenticated,
				})
				return
			}

			userID, err := v.UserIDFromAccess(token)
			if err != nil {
				logging.From(r.Context(), nil).Debug(r.Context(), "access token rejected", "error", err)
				unauthorized(w, apierrors.Detail{
					Detail: apierrors.DetailBearerNotValid,
					Code:   apierrors.CodeTokenNotValid,
				})
				return
			}

			if users != nil {
				if _, err := users.Get(r.Context(), userID); err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						unauthorized(w, apierrors.Detail{
							Detail: apierrors.DetailUserNotFound,
							Code:   apierrors.CodeUserNotFound,
						})
						return
					}
					apierrors.WriteError(w, r, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			ctx = logging.Into(ctx, logging.From(ctx, nil).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated caller stored by Auth.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

func unauthorized(w http.ResponseWriter, body apierrors.Detail) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	apierrors.WriteJSON(w, http.StatusUnauthorized, body)
}

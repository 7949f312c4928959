// Package apierrors turns service errors into HTTP responses. Bodies follow
// the shape API clients already parse: {"detail": "..."} for most failures
// and a field-to-messages object for validation errors.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/logging"
)

// StatusClientClosedRequest is the de facto status for a client that went away.
const StatusClientClosedRequest = 499

// Client-facing details.
const (
	DetailNotFound         = "Not found."
	DetailInternal         = "Internal server error."
	DetailTokenNotValid    = "Token is invalid or expired"
	DetailRefreshMissing   = "Refresh token not found in cookies."
	DetailClientClosed     = "Client closed request."
	DetailTimeout          = "Request timed out."
	DetailNotAuthenticated = "Authentication credentials were not provided."
	DetailBearerNotValid   = "Given token not valid for any token type"
	DetailUserNotFound     = "User not found"
	CodeTokenNotValid      = "token_not_valid"
	CodeNotAuthenticated   = "not_authenticated"
	CodeUserNotFound       = "user_not_found"
)

// Detail is the body of every non-validation error.
type Detail struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// ParseError reports a request body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "JSON parse error - " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedMediaTypeError reports a request body that is not JSON.
type UnsupportedMediaTypeError struct {
	ContentType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("Unsupported media type %q in request.", e.ContentType)
}

// ToHTTP maps err to a status and a JSON body. Anything not recognised is a
// 500; only authentication failures produce 401.
func ToHTTP(err error) (int, any) {
	var (
		verr     *common.ValidationError
		authErr  *common.AuthenticationFailedError
		nf       *common.NotFoundError
		conflict *common.ConflictError
		parseErr *ParseError
		mediaErr *UnsupportedMediaTypeError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError, Detail{Detail: DetailInternal}
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Fields
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, Detail{Detail: parseErr.Error()}
	case errors.As(err, &mediaErr):
		return http.StatusUnsupportedMediaType, Detail{Detail: mediaErr.Error()}
	case errors.As(err, &conflict):
		return http.StatusBadRequest, map[string][]string{conflict.Field: {conflict.Error() + "."}}
	case errors.Is(err, common.ErrRefreshTokenMissing):
		return http.StatusBadRequest, Detail{Detail: DetailRefreshMissing}
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, Detail{Detail: authErr.Detail}
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized, Detail{Detail: DetailTokenNotValid, Code: CodeTokenNotValid}
	case errors.As(err, &nf):
		return http.StatusNotFound, Detail{Detail: nf.Detail}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, Detail{Detail: DetailNotFound}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, Detail{Detail: DetailClientClosed}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Detail{Detail: DetailTimeout}
	default:
		return http.StatusInternalServerError, Detail{Detail: DetailInternal}
	}
}

// WriteError writes the response for err. Server-side failures are logged
// with the request-scoped logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ToHTTP(err)

	if status >= http.StatusInternalServerError {
		logging.From(r.Context(), nil).Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}

	WriteJSON(w, status, body)
}

// WriteJSON writes value as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// MethodNotAllowed answers requests to a known path with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, Detail{Detail: fmt.Sprintf("Method %q not allowed.", r.Method)})
}

// NotFound answers requests to unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, Detail{Detail: DetailNotFound})
}

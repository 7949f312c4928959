// Package handlers implements the REST endpoints on top of the services and
// the session controller.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/middleware"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
	"github.com/dmitrijs2005/lifestyle/internal/server/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Patch(ctx context.Context, id int64, in services.PatchInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, userID int64, in services.ChangePasswordInput) error
}

type EntryService interface {
	Create(ctx context.Context, callerID int64, in services.EntryInput) (*models.Entry, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	List(ctx context.Context, filter entries.ListFilter) ([]*models.Entry, error)
	Update(ctx context.Context, id int64, in services.EntryInput, partial bool) (*models.Entry, error)
	Delete(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, id int64) (*models.Entry, error)
	CreateAttachment(ctx context.Context, id int64) (*services.Attachment, error)
	AttachmentURL(ctx context.Context, id int64) (string, error)
}

type EventService interface {
	Create(ctx context.Context, callerID int64, in services.EventInput) (*models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter events.ListFilter) ([]*models.Event, error)
	Update(ctx context.Context, id int64, in services.EventInput, partial bool) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// Sessions issues and clears the refresh cookie.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*session.LoginResult, *http.Cookie, error)
	Refresh(ctx context.Context, cookieValue string) (*session.RefreshResult, error)
	Logout(ctx context.Context, userID int64, cookieValue string) (*session.LogoutResult, *http.Cookie, error)
	CookieName() string
}

// Handlers bundles the dependencies of all endpoints.
type Handlers struct {
	Users    UserService
	Entries  EntryService
	Events   EventService
	Sessions Sessions
}

func New(users UserService, entries EntryService, events EventService, sessions Sessions) *Handlers {
	return &Handlers{
		Users:    users,
		Entries:  entries,
		Events:   events,
		Sessions: sessions,
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	apierrors.WriteJSON(w, status, value)
}

// decodeJSON reads a JSON object into value. An empty body leaves value
// untouched, unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, value any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return &apierrors.UnsupportedMediaTypeError{ContentType: ct}
		}
	}
	if r.Body == nil {
		return nil
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(value); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &apierrors.ParseError{Err: err}
	}
	return nil
}

// pathID reads the {id} URL parameter. The route pattern only admits digits,
// so a failure here is an overflow and is reported as not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

// caller returns the authenticated user id. Routes that call it sit behind
// middleware.Auth.
func caller(r *http.Request) (int64, error) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		return 0, common.NewAuthenticationFailed(apierrors.DetailNotAuthenticated)
	}
	return id, nil
}

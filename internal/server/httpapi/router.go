// Package httpapi assembles the REST API: middleware, CORS and routes.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/handlers"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/middleware"
)

// Options configures NewRouter.
type Options struct {
	Logger  logging.Logger
	Timeout time.Duration
	// BasePath prefixes every route, e.g. "/api". Empty mounts at the root.
	BasePath string
	// Metrics is optional.
	Metrics *middleware.Metrics
}

// NewRouter builds the API handler. Trailing slashes are optional on every
// route.
func NewRouter(h *handlers.Handlers, verifier middleware.AccessVerifier, opts Options) http.Handler {
	root := chi.NewRouter()

	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	root.Use(
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Recover(),
		cors.Handler(corsOptions()),
		chimw.StripSlashes,
		middleware.Timeout(opts.Timeout),
	)
	root.NotFound(apierrors.NotFound)
	root.MethodNotAllowed(apierrors.MethodNotAllowed)

	base := strings.TrimRight(opts.BasePath, "/")
	if base == "" {
		registerRoutes(root, h, verifier)
		return root
	}

	api := chi.NewRouter()
	api.NotFound(apierrors.NotFound)
	api.MethodNotAllowed(apierrors.MethodNotAllowed)
	registerRoutes(api, h, verifier)
	root.Mount(base, api)
	return root
}

// Browser clients send the refresh cookie cross-origin, so any origin is
// echoed back with credentials allowed.
func corsOptions() cors.Options {
	return cors.Options{
		AllowOriginFunc:  func(_ *http.Request, _ string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", common.AuthorizationHeaderName, common.RequestIDHeaderName},
		ExposedHeaders:   []string{common.RequestIDHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func registerRoutes(r chi.Router, h *handlers.Handlers, verifier middleware.AccessVerifier) {
	// anonymous
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/token/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier, h.Users))

		r.Post("/logout", h.Logout)

		// users
		r.Get("/users", h.ListUsers)
		r.Post("/users/change-password", h.ChangePassword)
		r.Get("/users/{id:[0-9]+}", h.GetUser)
		r.Patch("/users/{id:[0-9]+}", h.PatchUser)
		r.Delete("/users/{id:[0-9]+}", h.DeleteUser)

		// entries
		r.Get("/entries", h.ListEntries)
		r.Post("/entries", h.CreateEntry)
		r.Get("/entries/{id:[0-9]+}", h.GetEntry)
		r.Put("/entries/{id:[0-9]+}", h.UpdateEntry)
		r.Patch("/entries/{id:[0-9]+}", h.UpdateEntry)
		r.Delete("/entries/{id:[0-9]+}", h.DeleteEntry)
		r.Post("/entries/{id:[0-9]+}/toggle_favorite", h.ToggleFavorite)
		r.Post("/entries/{id:[0-9]+}/attachment", h.CreateAttachment)
		r.Get("/entries/{id:[0-9]+}/attachment", h.GetAttachment)

		// events
		r.Get("/events", h.ListEvents)
		r.Post("/events", h.CreateEvent)
		r.Get("/events/{id:[0-9]+}", h.GetEvent)
		r.Put("/events/{id:[0-9]+}", h.UpdateEvent)
		r.Patch("/events/{id:[0-9]+}", h.UpdateEvent)
		r.Delete("/events/{id:[0-9]+}", h.DeleteEvent)
	})
}

package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login returns the access token in the body and sets the refresh cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, cookie, err := h.Sessions.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, res)
}

// Register creates an account. It is open to anonymous callers.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Users.Register(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userFromModel(user))
}

// Refresh mints an access token from the refresh cookie. The body is ignored.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.Refresh(r.Context(), h.refreshCookie(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Logout clears the refresh cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, cookie, err := h.Sessions.Logout(r.Context(), userID, h.refreshCookie(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) refreshCookie(r *http.Request) string {
	c, err := r.Cookie(h.Sessions.CookieName())
	if err != nil {
		return ""
	}
	return c.Value
}

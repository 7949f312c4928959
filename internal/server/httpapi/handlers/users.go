package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
)

// MsgUserNotFound is the 404 detail of the user endpoints.
const MsgUserNotFound = "User not found"

func userNotFound(err error) error {
	var nf *common.NotFoundError
	if errors.Is(err, common.ErrorNotFound) && !errors.As(err, &nf) {
		return &common.NotFoundError{Detail: MsgUserNotFound}
	}
	return err
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userFromModel(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

func (h *Handlers) PatchUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	var in services.PatchInput
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Users.Patch(r.Context(), id, in)
	if err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword changes the caller's own password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in services.ChangePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), userID, in); err != nil {
		apierrors.WriteError(w, r, userNotFound(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

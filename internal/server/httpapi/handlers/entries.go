package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/listquery"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
)

type attachmentResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
}

// ListEntries supports author, created_at, favorite, search and ordering.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	p := listquery.NewParams(r.URL.Query())
	filter := entries.ListFilter{
		Author:    p.Int64("author"),
		CreatedOn: p.Date("created_at"),
		Favorite:  p.Bool("favorite"),
		Search:    p.String("search"),
		Ordering:  listquery.ParseOrdering(p.String("ordering"), entries.OrderingFields, entries.DefaultOrdering),
	}
	if err := p.Err(); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	list, err := h.Entries.List(r.Context(), filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]entryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, entryFromModel(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in entryRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	entry, err := h.Entries.Create(r.Context(), userID, in.input())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entryFromModel(entry))
}

func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	entry, err := h.Entries.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entryFromModel(entry))
}

// UpdateEntry serves both PUT and PATCH.
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in entryRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	partial := r.Method == http.MethodPatch
	entry, err := h.Entries.Update(r.Context(), id, in.input(), partial)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entryFromModel(entry))
}

func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Entries.Delete(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	entry, err := h.Entries.ToggleFavorite(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entryFromModel(entry))
}

// CreateAttachment hands out a presigned upload URL and records the key.
func (h *Handlers) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	att, err := h.Entries.CreateAttachment(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, attachmentResponse{Key: att.Key, UploadURL: att.UploadURL})
}

func (h *Handlers) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	url, err := h.Entries.AttachmentURL(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{DownloadURL: url})
}

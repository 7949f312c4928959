package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
	"github.com/dmitrijs2005/lifestyle/internal/server/listquery"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
)

// ListEvents supports author, start_time, end_time, search and ordering.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	p := listquery.NewParams(r.URL.Query())
	filter := events.ListFilter{
		Author:   p.Int64("author"),
		StartsOn: p.Date("start_time"),
		EndsOn:   p.Date("end_time"),
		Search:   p.String("search"),
		Ordering: listquery.ParseOrdering(p.String("ordering"), events.OrderingFields, events.DefaultOrdering),
	}
	if err := p.Err(); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	list, err := h.Events.List(r.Context(), filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, eventFromModel(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	event, err := h.Events.Create(r.Context(), userID, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, eventFromModel(event))
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventFromModel(event))
}

// UpdateEvent serves both PUT and PATCH.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	event, err := h.Events.Update(r.Context(), id, in, r.Method == http.MethodPatch)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventFromModel(event))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

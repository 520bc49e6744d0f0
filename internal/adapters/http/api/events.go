package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/catalog"
	"github.com/okian/fest/internal/domain/model"
)

// EventsDependencies defines the interface for event definition operations.
type EventsDependencies interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	CreateEvent(ctx context.Context, in service.EventInput) (model.Event, error)
	UpdateEvent(ctx context.Context, id string, in service.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	UploadEventImage(ctx context.Context, id, filename string, r io.Reader) (model.Event, error)
}

// EventsHandler handles event definition requests.
type EventsHandler struct {
	deps EventsDependencies
	keys IdempotencyDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventsDependencies, keys IdempotencyDependencies) *EventsHandler {
	return &EventsHandler{deps: deps, keys: keys}
}

// HandleCatalog handles GET /catalog requests with the built-in event list.
func (h *EventsHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Entries())
}

// HandleList handles GET /events requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	events, err := h.deps.ListEvents(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleGet handles GET /events/{id} requests.
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event"
	ev, err := h.deps.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleCreate handles POST /admin/events requests.
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	idempotentCreate(w, r, op, h.keys, func(ctx context.Context) (model.Event, string, error) {
		ev, err := h.deps.CreateEvent(ctx, req.input())
		return ev, ev.ID, err
	})
}

// HandleUpdate handles PUT /admin/events/{id} requests.
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_event"
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	ev, err := h.deps.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleDelete handles DELETE /admin/events/{id} requests.
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_event"
	if err := h.deps.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadImage handles POST /admin/events/{id}/image multipart uploads.
func (h *EventsHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_event_image"
	f, filename, err := multipartFile(w, r)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	defer f.Close()

	ev, err := h.deps.UploadEventImage(r.Context(), chi.URLParam(r, "id"), filename, f)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/participant"
)

// ParticipantsDependencies defines the interface for participant operations.
type ParticipantsDependencies interface {
	Participants(ctx context.Context, f participant.Filter) (service.ParticipantList, error)
	Register(ctx context.Context, reg model.Registration) (model.Registration, error)
	ListRegistrations(ctx context.Context) ([]model.Registration, error)
	DeleteRegistration(ctx context.Context, id string) error
}

// ParticipantsHandler handles participant and registration requests.
type ParticipantsHandler struct {
	deps ParticipantsDependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps ParticipantsDependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

// filterFrom reads ?team= and ?event= from the query.
func filterFrom(r *http.Request) participant.Filter {
	q := r.URL.Query()
	return participant.Filter{
		Team:  q.Get("team"),
		Event: q.Get("event"),
	}
}

// HandleList handles GET /participants requests with the merged list.
func (h *ParticipantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_participants"
	list, err := h.deps.Participants(r.Context(), filterFrom(r))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if list.Participants == nil {
		list.Participants = []participant.View{}
	}
	writeJSON(w, http.StatusOK, list.Participants)
}

// HandleMergePreview handles GET /admin/participants requests. It returns
// the merged list together with the merge report and degraded sources.
func (h *ParticipantsHandler) HandleMergePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.merge_preview"
	list, err := h.deps.Participants(r.Context(), filterFrom(r))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if list.Participants == nil {
		list.Participants = []participant.View{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleRegister handles POST /registrations requests.
func (h *ParticipantsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var req registrationRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	reg, err := h.deps.Register(r.Context(), req.registration())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// HandleListRegistrations handles GET /admin/registrations requests.
func (h *ParticipantsHandler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_registrations"
	regs, err := h.deps.ListRegistrations(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// HandleDeleteRegistration handles DELETE /admin/registrations/{id} requests.
func (h *ParticipantsHandler) HandleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_registration"
	if err := h.deps.DeleteRegistration(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

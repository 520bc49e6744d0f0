package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/scoring"
)

// ResultsDependencies defines the interface for placement operations.
type ResultsDependencies interface {
	SettingsReader
	ListResults(ctx context.Context, eventName string) ([]model.Placement, error)
	GetResult(ctx context.Context, id string) (model.Placement, error)
	CreateResult(ctx context.Context, in service.ResultInput, confirm bool) (model.Placement, error)
	UpdateResult(ctx context.Context, id string, in service.ResultInput, confirm bool) (model.Placement, error)
	DeleteResult(ctx context.Context, id string) error
	Recalculate(ctx context.Context) (scoring.RecalcReport, error)
}

// ResultsHandler handles placement requests.
type ResultsHandler struct {
	deps ResultsDependencies
	keys IdempotencyDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies, keys IdempotencyDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps, keys: keys}
}

// resultView is the public shape of a placement. Points is omitted while
// result points are hidden.
type resultView struct {
	ID          string         `json:"id"`
	EventName   string         `json:"eventName"`
	Placing     model.Placing  `json:"placing"`
	Category    model.Category `json:"category"`
	Grade       model.Grade    `json:"grade"`
	StudentName string         `json:"studentName"`
	ChestNumber string         `json:"chestNumber"`
	Team        string         `json:"team"`
	Points      *int           `json:"points,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func publicResult(p model.Placement, showPoints bool) resultView {
	v := resultView{
		ID:          p.ID,
		EventName:   p.EventName,
		Placing:     p.Placing,
		Category:    p.Category,
		Grade:       p.Grade,
		StudentName: p.StudentName,
		ChestNumber: p.ChestNumber,
		Team:        p.Team,
		CreatedAt:   p.CreatedAt,
	}
	if showPoints {
		pts := p.Points
		v.Points = &pts
	}
	return v
}

// HandlePublicList handles GET /results?event=NAME requests.
func (h *ResultsHandler) HandlePublicList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_results"
	ctx := r.Context()
	settings, err := h.deps.Settings(ctx)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	results, err := h.deps.ListResults(ctx, r.URL.Query().Get("event"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	out := make([]resultView, 0, len(results))
	for _, p := range results {
		out = append(out, publicResult(p, settings.ShowPointsResults))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAdminList handles GET /admin/results requests; points always show.
func (h *ResultsHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_list_results"
	results, err := h.deps.ListResults(r.Context(), r.URL.Query().Get("event"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if results == nil {
		results = []model.Placement{}
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleCreate handles POST /admin/results?confirm=true requests.
func (h *ResultsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_result"
	var req resultRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	confirm := confirmed(r)
	idempotentCreate(w, r, op, h.keys, func(ctx context.Context) (model.Placement, string, error) {
		p, err := h.deps.CreateResult(ctx, req.input(), confirm)
		return p, p.ID, err
	})
}

// HandleUpdate handles PUT /admin/results/{id}?confirm=true requests.
func (h *ResultsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_result"
	var req resultRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	p, err := h.deps.UpdateResult(r.Context(), chi.URLParam(r, "id"), req.input(), confirmed(r))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /admin/results/{id} requests.
func (h *ResultsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_result"
	if err := h.deps.DeleteResult(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecalculate handles POST /admin/results/recalculate requests.
func (h *ResultsHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.recalculate"
	report, err := h.deps.Recalculate(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

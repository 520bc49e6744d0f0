package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
)

const defaultTopIndividuals = 10

// StandingsDependencies defines the interface for standings reads.
type StandingsDependencies interface {
	PublicStandings(ctx context.Context) (types.Standings, error)
	TopIndividuals(ctx context.Context, n int) ([]types.IndividualEntry, error)
	IndividualRank(ctx context.Context, identity string) (types.IndividualEntry, error)
	TeamRank(ctx context.Context, team string) (types.TeamEntry, error)
	IndividualDetail(ctx context.Context, identity string) (scoring.Individual, error)
}

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps     StandingsDependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleStandings handles GET /standings requests.
func (h *StandingsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	st, err := h.deps.PublicStandings(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleTopIndividuals handles GET /standings/individuals?limit=N requests.
func (h *StandingsHandler) HandleTopIndividuals(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_individuals"
	n := defaultTopIndividuals
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopIndividuals(r.Context(), n)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleIndividual handles GET /standings/individuals/{identity} requests.
func (h *StandingsHandler) HandleIndividual(w http.ResponseWriter, r *http.Request) {
	const op = "api.individual_rank"
	e, err := h.deps.IndividualRank(r.Context(), chi.URLParam(r, "identity"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleTeam handles GET /standings/teams/{team} requests.
func (h *StandingsHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_rank"
	e, err := h.deps.TeamRank(r.Context(), chi.URLParam(r, "team"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleChampionships handles GET /championships requests.
func (h *StandingsHandler) HandleChampionships(w http.ResponseWriter, r *http.Request) {
	const op = "api.championships"
	st, err := h.deps.PublicStandings(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Champions)
}

// HandleIndividualDetail handles GET /admin/standings/individuals/{identity}
// requests with every placement of the student.
func (h *StandingsHandler) HandleIndividualDetail(w http.ResponseWriter, r *http.Request) {
	const op = "api.individual_detail"
	ind, err := h.deps.IndividualDetail(r.Context(), chi.URLParam(r, "identity"))
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

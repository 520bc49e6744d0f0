// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/okian/fest/internal/adapters/upload"
	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/pkg/logger"
)

// Route prefixes.
const (
	PublicPrefix = "/api/v1"
	AdminPrefix  = "/api/v1/admin"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventsDependencies
	ResultsDependencies
	ParticipantsDependencies
	StandingsDependencies
	SettingsDependencies
	ContentDependencies
	ExportDependencies
	IdempotencyDependencies
	StatsProvider
}

// SettingsReader exposes the resolved settings.
type SettingsReader interface {
	Settings(ctx context.Context) (model.Settings, error)
}

// IdempotencyDependencies remember Idempotency-Key values for admin creates.
type IdempotencyDependencies interface {
	Claim(ctx context.Context, key string) (string, bool)
	Complete(ctx context.Context, key, result string)
	Release(ctx context.Context, key string)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	eventsHandler       *EventsHandler
	resultsHandler      *ResultsHandler
	participantsHandler *ParticipantsHandler
	standingsHandler    *StandingsHandler
	settingsHandler     *SettingsHandler
	contentHandler      *ContentHandler
	exportHandler       *ExportHandler

	settings SettingsReader
	hub      *Hub

	adminToken     string
	rateLimit      rate.Limit
	rateBurst      int
	allowedOrigins []string
	maxLimit       int
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		rateLimit:      rate.Limit(defaultRateLimit),
		rateBurst:      defaultRateBurst,
		allowedOrigins: []string{"*"},
		maxLimit:       defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.settings = deps
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.eventsHandler = NewEventsHandler(deps, deps)
	s.resultsHandler = NewResultsHandler(deps, deps)
	s.participantsHandler = NewParticipantsHandler(deps)
	s.standingsHandler = NewStandingsHandler(deps, s.maxLimit)
	s.settingsHandler = NewSettingsHandler(deps)
	s.contentHandler = NewContentHandler(deps, deps)
	s.exportHandler = NewExportHandler(deps)
	return s
}

// Routes builds the router. Callers may mount extra routes on the result.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(CORSMiddleware(s.allowedOrigins))
	r.Use(RouteMetrics)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)
	if s.hub != nil {
		r.Get("/ws/standings", s.hub.HandleStandings)
	}

	r.Route(PublicPrefix, func(r chi.Router) {
		r.Get("/settings", s.settingsHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(MaintenanceMiddleware(s.settings))

			r.Get("/catalog", s.eventsHandler.HandleCatalog)
			r.Get("/events", s.eventsHandler.HandleList)
			r.Get("/events/{id}", s.eventsHandler.HandleGet)
			r.Get("/results", s.resultsHandler.HandlePublicList)
			r.Get("/participants", s.participantsHandler.HandleList)
			r.Post("/registrations", s.participantsHandler.HandleRegister)
			r.Get("/standings", s.standingsHandler.HandleStandings)
			r.Get("/standings/teams/{team}", s.standingsHandler.HandleTeam)
			r.Get("/standings/individuals", s.standingsHandler.HandleTopIndividuals)
			r.Get("/standings/individuals/{identity}", s.standingsHandler.HandleIndividual)
			r.Get("/championships", s.standingsHandler.HandleChampionships)
			r.Get("/gallery", s.contentHandler.HandleListGallery)
			r.Get("/announcements", s.contentHandler.HandleListAnnouncements)
		})
	})

	r.Route(AdminPrefix, func(r chi.Router) {
		r.Use(RateLimitMiddleware(NewIPRateLimiter(s.rateLimit, s.rateBurst)))
		r.Use(BearerAuthMiddleware(s.adminToken))

		r.Post("/events", s.eventsHandler.HandleCreate)
		r.Put("/events/{id}", s.eventsHandler.HandleUpdate)
		r.Delete("/events/{id}", s.eventsHandler.HandleDelete)
		r.Post("/events/{id}/image", s.eventsHandler.HandleUploadImage)

		r.Get("/results", s.resultsHandler.HandleAdminList)
		r.Post("/results", s.resultsHandler.HandleCreate)
		r.Post("/results/recalculate", s.resultsHandler.HandleRecalculate)
		r.Put("/results/{id}", s.resultsHandler.HandleUpdate)
		r.Delete("/results/{id}", s.resultsHandler.HandleDelete)

		r.Get("/participants", s.participantsHandler.HandleMergePreview)
		r.Get("/registrations", s.participantsHandler.HandleListRegistrations)
		r.Delete("/registrations/{id}", s.participantsHandler.HandleDeleteRegistration)

		r.Get("/standings/individuals/{identity}", s.standingsHandler.HandleIndividualDetail)
		r.Patch("/settings", s.settingsHandler.HandlePatch)

		r.Post("/gallery", s.contentHandler.HandleAddGallery)
		r.Delete("/gallery/{id}", s.contentHandler.HandleDeleteGallery)
		r.Post("/announcements", s.contentHandler.HandleCreateAnnouncement)
		r.Put("/announcements/{id}", s.contentHandler.HandleUpdateAnnouncement)
		r.Delete("/announcements/{id}", s.contentHandler.HandleDeleteAnnouncement)

		r.Get("/export/participants.csv", s.exportHandler.HandleParticipants)
		r.Get("/export/results.csv", s.exportHandler.HandleResults)
		r.Get("/export/standings.xlsx", s.exportHandler.HandleStandings)
	})

	return r
}

// NewHTTPServer wraps handler with the process timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service errors to a status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConfirmRequired):
		return http.StatusConflict, "confirm_required"
	case errors.Is(err, service.ErrDuplicateEvent):
		return http.StatusConflict, "duplicate_event"
	case errors.Is(err, ErrInProgress):
		return http.StatusConflict, "in_progress"
	case errors.Is(err, service.ErrRegistrationClosed):
		return http.StatusForbidden, "registration_closed"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, service.ErrUploadUnavailable):
		return http.StatusServiceUnavailable, "upload_unavailable"
	case errors.Is(err, upload.ErrRejected), errors.Is(err, upload.ErrNoURL):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal_error"
}

// fail writes err with the status classify picks. Unexpected errors are
// logged and reported without detail.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
		writeError(w, status, code, NewKind(op, ErrInternal))
		return
	}
	writeError(w, status, code, Wrap(op, err))
}

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/fest/internal/adapters/export"
	"github.com/okian/fest/internal/domain/participant"
)

const contentTypeCSV = "text/csv; charset=utf-8"

// ExportDependencies defines the interface for file exports.
type ExportDependencies interface {
	ExportParticipants(ctx context.Context, w io.Writer, f participant.Filter) error
	ExportResults(ctx context.Context, w io.Writer, eventName string, withPoints bool) error
	ExportStandings(ctx context.Context, w io.Writer) error
}

// ExportHandler handles file downloads.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleParticipants handles GET /admin/export/participants.csv requests.
func (h *ExportHandler) HandleParticipants(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_participants"
	h.serve(w, r, op, "participants.csv", contentTypeCSV, func(buf io.Writer) error {
		return h.deps.ExportParticipants(r.Context(), buf, filterFrom(r))
	})
}

// HandleResults handles GET /admin/export/results.csv?event=&points=
// requests. Points are included unless points=false.
func (h *ExportHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_results"
	withPoints := true
	if v := r.URL.Query().Get("points"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		withPoints = b
	}
	h.serve(w, r, op, "results.csv", contentTypeCSV, func(buf io.Writer) error {
		return h.deps.ExportResults(r.Context(), buf, r.URL.Query().Get("event"), withPoints)
	})
}

// HandleStandings handles GET /admin/export/standings.xlsx requests.
func (h *ExportHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_standings"
	h.serve(w, r, op, "standings.xlsx", export.ContentTypeXLSX, func(buf io.Writer) error {
		return h.deps.ExportStandings(r.Context(), buf)
	})
}

// serve renders into memory first so a failure still gets a JSON error.
func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, op, filename, contentType string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		fail(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
)

// SettingsDependencies defines the interface for site settings.
type SettingsDependencies interface {
	SettingsReader
	UpdateSettings(ctx context.Context, p service.SettingsPatch) (model.Settings, error)
}

// SettingsHandler handles settings requests.
type SettingsHandler struct {
	deps SettingsDependencies
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps SettingsDependencies) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

// HandleGet handles GET /settings requests.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_settings"
	s, err := h.deps.Settings(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandlePatch handles PATCH /admin/settings requests. Absent fields keep
// their stored value.
func (h *SettingsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_settings"
	var req settingsRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	p := req.patch()
	if p.Empty() {
		fail(w, r, op, fmt.Errorf("%w: no settings given", ErrBadRequest))
		return
	}
	s, err := h.deps.UpdateSettings(r.Context(), p)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
)

// ContentDependencies defines the interface for gallery and announcements.
type ContentDependencies interface {
	ListGallery(ctx context.Context) ([]model.GalleryItem, error)
	AddGalleryItem(ctx context.Context, title, caption, filename string, r io.Reader) (model.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id string) error
	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, in service.AnnouncementInput) (model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id string, in service.AnnouncementInput) (model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

// ContentHandler handles gallery and announcement requests.
type ContentHandler struct {
	deps ContentDependencies
	keys IdempotencyDependencies
}

// NewContentHandler creates a new content handler.
func NewContentHandler(deps ContentDependencies, keys IdempotencyDependencies) *ContentHandler {
	return &ContentHandler{deps: deps, keys: keys}
}

// HandleListGallery handles GET /gallery requests.
func (h *ContentHandler) HandleListGallery(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_gallery"
	items, err := h.deps.ListGallery(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if items == nil {
		items = []model.GalleryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleAddGallery handles POST /admin/gallery multipart uploads with
// "title", "caption" and "file" parts.
func (h *ContentHandler) HandleAddGallery(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_gallery"
	f, filename, err := multipartFile(w, r)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	defer f.Close()

	title, caption := r.FormValue("title"), r.FormValue("caption")
	idempotentCreate(w, r, op, h.keys, func(ctx context.Context) (model.GalleryItem, string, error) {
		item, err := h.deps.AddGalleryItem(ctx, title, caption, filename, f)
		return item, item.ID, err
	})
}

// HandleDeleteGallery handles DELETE /admin/gallery/{id} requests.
func (h *ContentHandler) HandleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_gallery"
	if err := h.deps.DeleteGalleryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListAnnouncements handles GET /announcements requests.
func (h *ContentHandler) HandleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_announcements"
	items, err := h.deps.ListAnnouncements(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if items == nil {
		items = []model.Announcement{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleCreateAnnouncement handles POST /admin/announcements requests.
func (h *ContentHandler) HandleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_announcement"
	var req announcementRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	idempotentCreate(w, r, op, h.keys, func(ctx context.Context) (model.Announcement, string, error) {
		a, err := h.deps.CreateAnnouncement(ctx, req.input())
		return a, a.ID, err
	})
}

// HandleUpdateAnnouncement handles PUT /admin/announcements/{id} requests.
func (h *ContentHandler) HandleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_announcement"
	var req announcementRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	a, err := h.deps.UpdateAnnouncement(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleDeleteAnnouncement handles DELETE /admin/announcements/{id} requests.
func (h *ContentHandler) HandleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_announcement"
	if err := h.deps.DeleteAnnouncement(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

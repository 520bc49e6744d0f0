package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/domain/model"
)

// ListGallery returns gallery items, newest first.
func (s *Service) ListGallery(ctx context.Context) ([]model.GalleryItem, error) {
	items, err := docstore.ListAs[model.GalleryItem](ctx, s.store, model.CollectionGallery,
		docstore.OrderBy("createdAt", true),
	)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return items, nil
}

// AddGalleryItem uploads the image and stores the item.
func (s *Service) AddGalleryItem(ctx context.Context, title, caption, filename string, r io.Reader) (model.GalleryItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.GalleryItem{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	url, err := s.upload(ctx, filename, r)
	if err != nil {
		return model.GalleryItem{}, err
	}
	item := model.GalleryItem{
		Title:     title,
		Caption:   strings.TrimSpace(caption),
		ImageURL:  url,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.store.Create(ctx, model.CollectionGallery, item)
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("create gallery item: %w", err)
	}
	item.ID = id
	return item, nil
}

// DeleteGalleryItem removes an item. Missing items are not an error.
func (s *Service) DeleteGalleryItem(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.CollectionGallery, id); err != nil {
		return fmt.Errorf("delete gallery item: %w", err)
	}
	return nil
}

// AnnouncementInput creates or replaces an announcement.
type AnnouncementInput struct {
	Title  string
	Body   string
	Pinned bool
}

// ListAnnouncements returns pinned announcements first, each group newest
// first.
func (s *Service) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	list, err := docstore.ListAs[model.Announcement](ctx, s.store, model.CollectionAnnouncements,
		docstore.OrderBy("createdAt", true),
	)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Pinned && !list[j].Pinned })
	return list, nil
}

func (s *Service) buildAnnouncement(in AnnouncementInput) (model.Announcement, error) {
	a := model.Announcement{
		Title:  strings.TrimSpace(in.Title),
		Body:   strings.TrimSpace(in.Body),
		Pinned: in.Pinned,
	}
	if a.Title == "" {
		return a, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return a, nil
}

// CreateAnnouncement stores a new announcement.
func (s *Service) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (model.Announcement, error) {
	a, err := s.buildAnnouncement(in)
	if err != nil {
		return model.Announcement{}, err
	}
	a.CreatedAt = s.now().UTC()
	id, err := s.store.Create(ctx, model.CollectionAnnouncements, a)
	if err != nil {
		return model.Announcement{}, fmt.Errorf("create announcement: %w", err)
	}
	a.ID = id
	return a, nil
}

// UpdateAnnouncement replaces an announcement, keeping its creation time.
func (s *Service) UpdateAnnouncement(ctx context.Context, id string, in AnnouncementInput) (model.Announcement, error) {
	cur, err := docstore.GetAs[model.Announcement](ctx, s.store, model.CollectionAnnouncements, id)
	if err != nil {
		return model.Announcement{}, notFound(err, "announcement", id)
	}
	a, err := s.buildAnnouncement(in)
	if err != nil {
		return model.Announcement{}, err
	}
	a.ID = id
	a.CreatedAt = cur.CreatedAt
	if err := s.store.Set(ctx, model.CollectionAnnouncements, id, a); err != nil {
		return model.Announcement{}, fmt.Errorf("update announcement: %w", err)
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement. Missing ones are not an error.
func (s *Service) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.CollectionAnnouncements, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/adapters/upload"
	"github.com/okian/fest/internal/domain/catalog"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/pkg/logger"
)

// EventInput creates or replaces an event definition. An empty StageType is
// derived from the name.
type EventInput struct {
	Name        string
	Category    string
	StageType   string
	Description string
	Venue       string
	Date        string
}

// ListEvents returns every event ordered by date. The call is bounded by the
// configured list timeout.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	events, err := docstore.ListAs[model.Event](ctx, s.store, model.CollectionEvents,
		docstore.OrderBy("date", false),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, id string) (model.Event, error) {
	ev, err := docstore.GetAs[model.Event](ctx, s.store, model.CollectionEvents, id)
	if err != nil {
		return model.Event{}, notFound(err, "event", id)
	}
	return ev, nil
}

// findEventByName looks an event up by its normalized name.
func (s *Service) findEventByName(ctx context.Context, name string) (model.Event, bool, error) {
	events, err := docstore.ListAs[model.Event](ctx, s.store, model.CollectionEvents)
	if err != nil {
		return model.Event{}, false, fmt.Errorf("list events: %w", err)
	}
	want := normalize.EventName(name)
	for _, ev := range events {
		if strings.EqualFold(normalize.EventName(ev.Name), want) {
			return ev, true, nil
		}
	}
	return model.Event{}, false, nil
}

func (s *Service) buildEvent(in EventInput) (model.Event, error) {
	name := normalize.EventName(in.Name)
	if name == "" {
		return model.Event{}, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	cat, err := model.ParseCategory(in.Category)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	stage, err := parseStage(in.StageType, name)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Name:        name,
		Category:    cat,
		StageType:   stage,
		IsGeneral:   catalog.IsGeneral(name),
		Description: strings.TrimSpace(in.Description),
		Venue:       strings.TrimSpace(in.Venue),
		Date:        strings.TrimSpace(in.Date),
	}, nil
}

// parseStage accepts onStage or offStage in any case; empty means classify
// by name.
func parseStage(raw, name string) (catalog.StageType, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return catalog.Classify(name), nil
	case strings.EqualFold(raw, string(catalog.OnStage)):
		return catalog.OnStage, nil
	case strings.EqualFold(raw, string(catalog.OffStage)):
		return catalog.OffStage, nil
	}
	return catalog.Unknown, fmt.Errorf("%w: stage type %q", ErrInvalidInput, raw)
}

// CreateEvent stores a new event. Names are unique ignoring case.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) (model.Event, error) {
	ev, err := s.buildEvent(in)
	if err != nil {
		return model.Event{}, err
	}
	if _, exists, err := s.findEventByName(ctx, ev.Name); err != nil {
		return model.Event{}, err
	} else if exists {
		return model.Event{}, fmt.Errorf("%w: %s", ErrDuplicateEvent, ev.Name)
	}

	now := s.now().UTC()
	ev.CreatedAt, ev.UpdatedAt = now, now
	id, err := s.store.Create(ctx, model.CollectionEvents, ev)
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	ev.ID = id
	s.logger.Info(ctx, "event created",
		logger.String("id", id),
		logger.String("name", ev.Name),
		logger.String("stageType", string(ev.StageType)),
		logger.Bool("general", ev.IsGeneral),
	)
	return ev, nil
}

// UpdateEvent replaces the editable fields of an event.
func (s *Service) UpdateEvent(ctx context.Context, id string, in EventInput) (model.Event, error) {
	cur, err := s.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	ev, err := s.buildEvent(in)
	if err != nil {
		return model.Event{}, err
	}
	if other, exists, err := s.findEventByName(ctx, ev.Name); err != nil {
		return model.Event{}, err
	} else if exists && other.ID != id {
		return model.Event{}, fmt.Errorf("%w: %s", ErrDuplicateEvent, ev.Name)
	}

	ev.ID = id
	ev.ImageURL = cur.ImageURL
	ev.CreatedAt = cur.CreatedAt
	ev.UpdatedAt = s.now().UTC()
	if err := s.store.Set(ctx, model.CollectionEvents, id, ev); err != nil {
		return model.Event{}, fmt.Errorf("update event: %w", err)
	}
	return ev, nil
}

// DeleteEvent removes an event. Missing events are not an error.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.CollectionEvents, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// UploadEventImage hosts the image and stores its URL on the event.
func (s *Service) UploadEventImage(ctx context.Context, id, filename string, r io.Reader) (model.Event, error) {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return model.Event{}, err
	}
	url, err := s.upload(ctx, filename, r)
	if err != nil {
		return model.Event{}, err
	}
	err = s.store.Update(ctx, model.CollectionEvents, id, map[string]any{
		"imageURL":  url,
		"updatedAt": s.now().UTC(),
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("save event image: %w", err)
	}
	return s.GetEvent(ctx, id)
}

func (s *Service) upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadUnavailable
	}
	url, err := s.uploader.Upload(ctx, filename, r)
	if err != nil {
		if errors.Is(err, upload.ErrNotConfigured) {
			return "", ErrUploadUnavailable
		}
		s.logger.Warn(ctx, "image upload failed", logger.String("file", filename), logger.Error(err))
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

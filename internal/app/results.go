package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// ResultInput is a placement as entered by an admin. Category defaults to
// the category of the matching event definition.
type ResultInput struct {
	EventName   string
	Placing     string
	Category    string
	Grade       string
	StudentName string
	ChestNumber string
	Team        string
}

// ListResults returns placements, newest first. A non-empty eventName keeps
// only that event's placements.
func (s *Service) ListResults(ctx context.Context, eventName string) ([]model.Placement, error) {
	opts := []docstore.ListOption{docstore.OrderBy("createdAt", true)}
	if name := normalize.EventName(eventName); name != "" {
		opts = append(opts, docstore.WhereEqual("eventName", name))
	}
	results, err := docstore.ListAs[model.Placement](ctx, s.store, model.CollectionResults, opts...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// GetResult returns one placement.
func (s *Service) GetResult(ctx context.Context, id string) (model.Placement, error) {
	p, err := docstore.GetAs[model.Placement](ctx, s.store, model.CollectionResults, id)
	if err != nil {
		return model.Placement{}, notFound(err, "result", id)
	}
	return p, nil
}

func (s *Service) buildPlacement(ctx context.Context, in ResultInput) (model.Placement, error) {
	p := model.Placement{
		EventName:   normalize.EventName(in.EventName),
		StudentName: strings.TrimSpace(in.StudentName),
		ChestNumber: strings.TrimSpace(in.ChestNumber),
		Team:        strings.TrimSpace(in.Team),
	}
	if p.EventName == "" {
		return p, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if p.StudentName == "" && p.Team == "" {
		return p, fmt.Errorf("%w: a student name or a team is required", ErrInvalidInput)
	}

	var err error
	if p.Placing, err = model.ParsePlacing(in.Placing); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if p.Grade, err = model.ParseGrade(in.Grade); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if p.Category, err = model.ParseCategory(in.Category); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if p.Category == model.CategoryNone {
		ev, ok, err := s.findEventByName(ctx, p.EventName)
		if err != nil {
			return p, err
		}
		if ok {
			p.Category = ev.Category
		}
	}
	return s.engine.Apply(p), nil
}

// placingTaken reports whether another placement of the same event already
// holds p's placing.
func (s *Service) placingTaken(ctx context.Context, p model.Placement) (bool, error) {
	if p.Placing == model.PlacingNone {
		return false, nil
	}
	existing, err := s.ListResults(ctx, p.EventName)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.ID != p.ID && e.Placing == p.Placing {
			return true, nil
		}
	}
	return false, nil
}

// CreateResult scores and stores a placement. A placing already awarded for
// the event is refused with ErrConfirmRequired unless confirm is set.
func (s *Service) CreateResult(ctx context.Context, in ResultInput, confirm bool) (model.Placement, error) {
	p, err := s.buildPlacement(ctx, in)
	if err != nil {
		return model.Placement{}, err
	}
	if !confirm {
		taken, err := s.placingTaken(ctx, p)
		if err != nil {
			return model.Placement{}, err
		}
		if taken {
			return model.Placement{}, fmt.Errorf("%w: %s %s", ErrConfirmRequired, p.EventName, p.Placing)
		}
	}

	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	id, err := s.store.Create(ctx, model.CollectionResults, p)
	if err != nil {
		return model.Placement{}, fmt.Errorf("create result: %w", err)
	}
	p.ID = id
	metrics.RecordPointsComputed()
	s.logger.Info(ctx, "result recorded",
		logger.String("id", id),
		logger.String("event", p.EventName),
		logger.String("placing", string(p.Placing)),
		logger.Int("points", p.Points),
	)
	return p, nil
}

// UpdateResult replaces a placement and recomputes its points.
func (s *Service) UpdateResult(ctx context.Context, id string, in ResultInput, confirm bool) (model.Placement, error) {
	cur, err := s.GetResult(ctx, id)
	if err != nil {
		return model.Placement{}, err
	}
	p, err := s.buildPlacement(ctx, in)
	if err != nil {
		return model.Placement{}, err
	}
	p.ID = id
	if !confirm && (p.Placing != cur.Placing || p.EventName != cur.EventName) {
		taken, err := s.placingTaken(ctx, p)
		if err != nil {
			return model.Placement{}, err
		}
		if taken {
			return model.Placement{}, fmt.Errorf("%w: %s %s", ErrConfirmRequired, p.EventName, p.Placing)
		}
	}

	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Set(ctx, model.CollectionResults, id, p); err != nil {
		return model.Placement{}, fmt.Errorf("update result: %w", err)
	}
	metrics.RecordPointsComputed()
	return p, nil
}

// DeleteResult removes a placement. Missing placements are not an error.
func (s *Service) DeleteResult(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.CollectionResults, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

// Recalculate recomputes the points of every stored placement and writes
// only those that changed.
func (s *Service) Recalculate(ctx context.Context) (scoring.RecalcReport, error) {
	start := time.Now()
	results, err := docstore.ListAs[model.Placement](ctx, s.store, model.CollectionResults)
	if err != nil {
		return scoring.RecalcReport{}, fmt.Errorf("list results: %w", err)
	}

	writer := scoring.PointsWriterFunc(func(ctx context.Context, id string, points int) error {
		return s.store.Update(ctx, model.CollectionResults, id, map[string]any{
			"points":    points,
			"updatedAt": s.now().UTC(),
		})
	})
	rep, err := s.engine.Recalculate(ctx, results, writer)
	took := time.Since(start)
	metrics.RecordRecalculation(rep.Updated, rep.Unchanged, rep.Failed, took)
	if err != nil {
		return rep, err
	}

	s.logger.Info(ctx, "points recalculated",
		logger.Int("scanned", rep.Scanned),
		logger.Int("updated", rep.Updated),
		logger.Int("unchanged", rep.Unchanged),
		logger.Int("failed", rep.Failed),
		logger.Duration("took", took),
	)
	return rep, nil
}

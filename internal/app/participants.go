package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/internal/domain/participant"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// Participant sources.
const (
	SourceLive  = "live"
	SourceSheet = "sheet"
)

// ParticipantList is the merged participant view with its merge report.
type ParticipantList struct {
	Participants []participant.View `json:"participants"`
	Stats        participant.Stats  `json:"stats"`
	// Degraded names the sources that failed and were treated as empty.
	Degraded []string `json:"degraded,omitempty"`
}

// Participants loads live registrations and spreadsheet rows concurrently,
// merges them by identity and applies f. A source that fails to load is
// logged and contributes nothing.
func (s *Service) Participants(ctx context.Context, f participant.Filter) (ParticipantList, error) {
	var (
		live, imported          []participant.Record
		liveFailed, sheetFailed bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		regs, err := docstore.ListAs[model.Registration](gctx, s.store, model.CollectionRegistrations)
		if err != nil {
			s.degrade(gctx, SourceLive, err)
			liveFailed = true
			return nil
		}
		live = make([]participant.Record, 0, len(regs))
		for _, r := range regs {
			live = append(live, participant.FromRegistration(r))
		}
		return nil
	})
	if s.sheet != nil && s.sheet.Configured() {
		g.Go(func() error {
			recs, err := s.sheet.FetchRecords(gctx)
			if err != nil {
				s.degrade(gctx, SourceSheet, err)
				sheetFailed = true
				return nil
			}
			imported = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ParticipantList{}, err
	}
	if err := ctx.Err(); err != nil {
		return ParticipantList{}, fmt.Errorf("load participants: %w", err)
	}

	merged := participant.Merge(live, imported)
	st := merged.Stats
	metrics.RecordMerge(st.Live, st.Imported, st.Merged, st.Collisions)

	out := ParticipantList{
		Participants: make([]participant.View, 0, merged.Len()),
		Stats:        st,
	}
	if liveFailed {
		out.Degraded = append(out.Degraded, SourceLive)
	}
	if sheetFailed {
		out.Degraded = append(out.Degraded, SourceSheet)
	}
	for _, r := range merged.Records() {
		if f.Match(r) {
			out.Participants = append(out.Participants, r.View())
		}
	}
	return out, nil
}

func (s *Service) degrade(ctx context.Context, source string, err error) {
	metrics.RecordSourceDegraded(source)
	s.logger.Warn(ctx, "participant source unavailable, treating as empty",
		logger.String("source", source),
		logger.Error(err),
	)
}

// Register stores a live registration. It fails with ErrRegistrationClosed
// while registration is switched off.
func (s *Service) Register(ctx context.Context, reg model.Registration) (model.Registration, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return model.Registration{}, err
	}
	if !settings.RegistrationOpen {
		return model.Registration{}, ErrRegistrationClosed
	}

	reg.ID = ""
	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.CICNumber = strings.TrimSpace(reg.CICNumber)
	reg.ChestNumber = strings.TrimSpace(reg.ChestNumber)
	reg.Team = strings.TrimSpace(reg.Team)
	if reg.FullName == "" {
		return model.Registration{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	reg.OnStageEvents = eventList(reg.OnStageEvents)
	reg.OffStageEvents = eventList(reg.OffStageEvents)
	reg.GeneralEvents = eventList(reg.GeneralEvents)
	reg.CreatedAt = s.now().UTC()

	id, err := s.store.Create(ctx, model.CollectionRegistrations, reg)
	if err != nil {
		return model.Registration{}, fmt.Errorf("create registration: %w", err)
	}
	reg.ID = id
	s.logger.Info(ctx, "registration received",
		logger.String("id", id),
		logger.String("identity", participant.ResolveIdentity(reg.ChestNumber, reg.FullName)),
	)
	return reg, nil
}

// eventList normalizes submitted event names; entries may be comma lists.
func eventList(in []string) []string {
	var out []string
	for _, raw := range in {
		out = append(out, normalize.SplitEvents(raw)...)
	}
	return out
}

// ListRegistrations returns live registrations, newest first.
func (s *Service) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	regs, err := docstore.ListAs[model.Registration](ctx, s.store, model.CollectionRegistrations,
		docstore.OrderBy("createdAt", true),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// DeleteRegistration removes a live registration. Missing ones are not an
// error.
func (s *Service) DeleteRegistration(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.CollectionRegistrations, id); err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
	"github.com/okian/fest/pkg/logger"
)

// Rebuild recomputes team and individual standings from every stored
// placement, publishes the snapshot and pushes the public view to the
// broadcaster. Rebuilds run one at a time.
func (s *Service) Rebuild(ctx context.Context) (types.Standings, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	results, err := docstore.ListAs[model.Placement](ctx, s.store, model.CollectionResults)
	if err != nil {
		return types.Standings{}, fmt.Errorf("list results: %w", err)
	}

	st := s.standings.Publish(ctx, scoring.TeamTotals(results), scoring.Individuals(results))
	s.logger.Debug(ctx, "standings published",
		logger.Any("version", st.Version),
		logger.Int("teams", len(st.Teams)),
		logger.Int("individuals", len(st.Individuals)),
	)

	if s.broadcaster != nil {
		settings, err := s.Settings(ctx)
		if err != nil {
			return st, err
		}
		s.broadcaster.Broadcast(publicView(st, settings))
	}
	return st, nil
}

func publicView(st types.Standings, settings model.Settings) types.Standings {
	if settings.ShowPointsHome {
		return st
	}
	return st.WithoutPoints()
}

// Standings returns the latest snapshot with points.
func (s *Service) Standings(ctx context.Context) types.Standings {
	return s.standings.Standings(ctx)
}

// PublicStandings returns the latest snapshot, without points unless the
// home points flag is on.
func (s *Service) PublicStandings(ctx context.Context) (types.Standings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return types.Standings{}, err
	}
	return publicView(s.standings.Standings(ctx), settings), nil
}

// TopIndividuals returns the first n ranked students of the public view.
func (s *Service) TopIndividuals(ctx context.Context, n int) ([]types.IndividualEntry, error) {
	top, err := s.standings.TopIndividuals(ctx, n)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.ShowPointsHome {
		for i := range top {
			top[i].Points = nil
		}
	}
	return top, nil
}

// IndividualRank returns one student's public standings entry.
func (s *Service) IndividualRank(ctx context.Context, identity string) (types.IndividualEntry, error) {
	e, err := s.standings.IndividualRank(ctx, identity)
	if err != nil {
		return types.IndividualEntry{}, fmt.Errorf("individual %q: %w", identity, ErrNotFound)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return types.IndividualEntry{}, err
	}
	if !settings.ShowPointsHome {
		e.Points = nil
	}
	return e, nil
}

// TeamRank returns one team's public standings entry.
func (s *Service) TeamRank(ctx context.Context, team string) (types.TeamEntry, error) {
	e, err := s.standings.TeamRank(ctx, team)
	if err != nil {
		return types.TeamEntry{}, fmt.Errorf("team %q: %w", team, ErrNotFound)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return types.TeamEntry{}, err
	}
	if !settings.ShowPointsHome {
		e.Points = nil
	}
	return e, nil
}

// IndividualDetail returns a student's aggregate with every placement.
func (s *Service) IndividualDetail(ctx context.Context, identity string) (scoring.Individual, error) {
	ind, err := s.standings.Individual(ctx, identity)
	if err != nil {
		return scoring.Individual{}, fmt.Errorf("individual %q: %w", identity, ErrNotFound)
	}
	return ind, nil
}

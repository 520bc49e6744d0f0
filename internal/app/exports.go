package service

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/fest/internal/adapters/export"
	"github.com/okian/fest/internal/domain/participant"
)

// ExportParticipants writes the merged participant list as CSV.
func (s *Service) ExportParticipants(ctx context.Context, w io.Writer, f participant.Filter) error {
	list, err := s.Participants(ctx, f)
	if err != nil {
		return err
	}
	if err := export.Participants(w, list.Participants); err != nil {
		return fmt.Errorf("export participants: %w", err)
	}
	return nil
}

// ExportResults writes placements as CSV. Points are included only when
// withPoints is set.
func (s *Service) ExportResults(ctx context.Context, w io.Writer, eventName string, withPoints bool) error {
	results, err := s.ListResults(ctx, eventName)
	if err != nil {
		return err
	}
	if err := export.Results(w, results, withPoints); err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	return nil
}

// ExportStandings writes the current standings as an XLSX workbook. Nothing
// published yet means a build first.
func (s *Service) ExportStandings(ctx context.Context, w io.Writer) error {
	st := s.standings.Standings(ctx)
	if st.Version == 0 {
		var err error
		if st, err = s.Rebuild(ctx); err != nil {
			return err
		}
	}
	if err := export.StandingsXLSX(w, st); err != nil {
		return fmt.Errorf("export standings: %w", err)
	}
	return nil
}

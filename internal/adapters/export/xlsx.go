package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/fest/internal/domain/types"
)

// Sheet names of the standings workbook.
const (
	SheetTeams       = "Teams"
	SheetIndividuals = "Individuals"
	SheetChampions   = "Champions"
)

// ContentTypeXLSX is the MIME type of a workbook download.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StandingsXLSX writes a workbook with team standings, individual standings
// and champions.
func StandingsXLSX(w io.Writer, s types.Standings) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetTeams); err != nil {
		return err
	}
	for _, name := range []string{SheetIndividuals, SheetChampions} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	teams := [][]any{{"Rank", "Team", "Points"}}
	for _, t := range s.Teams {
		teams = append(teams, []any{t.Rank, t.Team, points(t.Points)})
	}
	if err := fill(f, SheetTeams, teams); err != nil {
		return err
	}

	inds := [][]any{{"Rank", "Name", "Chest Number", "Team", "Points", "First", "Second", "Third"}}
	for _, e := range s.Individuals {
		inds = append(inds, []any{e.Rank, e.Name, e.ChestNumber, e.Team, points(e.Points), e.Firsts, e.Seconds, e.Thirds})
	}
	if err := fill(f, SheetIndividuals, inds); err != nil {
		return err
	}

	champs := [][]any{{"Title", "Name", "Chest Number", "Team", "Points"}}
	for _, c := range []struct {
		title string
		entry *types.IndividualEntry
	}{
		{"Highest total", s.Champions.HighestTotal},
		{"Category A champion", s.Champions.Eligible},
	} {
		if c.entry == nil {
			champs = append(champs, []any{c.title, "", "", "", ""})
			continue
		}
		champs = append(champs, []any{c.title, c.entry.Name, c.entry.ChestNumber, c.entry.Team, points(c.entry.Points)})
	}
	if err := fill(f, SheetChampions, champs); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func fill(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func points(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

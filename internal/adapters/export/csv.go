// Package export renders admin downloads: CSV with every field quoted and
// XLSX standings workbooks.
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/participant"
)

// Column orders are fixed; downstream spreadsheets depend on them.
var (
	ParticipantColumns = []string{
		"Identity", "Full Name", "CIC Number", "Chest Number", "Team",
		"On Stage Events", "Off Stage Events", "General Events", "Source",
	}
	ResultColumns = []string{
		"Event", "Placing", "Category", "Grade", "Student", "Chest Number", "Team", "Points",
	}
)

// WriteCSV writes header and rows, double-quoting every field and doubling
// embedded quotes. Lines end with CRLF.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeLine(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Participants writes merged participants.
func Participants(w io.Writer, views []participant.View) error {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.Identity,
			v.FullName,
			v.CICNumber,
			v.ChestNumber,
			v.Team,
			strings.Join(v.OnStageEvents, ", "),
			strings.Join(v.OffStageEvents, ", "),
			strings.Join(v.GeneralEvents, ", "),
			string(v.Provenance),
		})
	}
	return WriteCSV(w, ParticipantColumns, rows)
}

// Results writes placements. The points column is left blank when
// showPoints is false.
func Results(w io.Writer, placements []model.Placement, showPoints bool) error {
	rows := make([][]string, 0, len(placements))
	for _, p := range placements {
		pts := ""
		if showPoints {
			pts = strconv.Itoa(p.Points)
		}
		rows = append(rows, []string{
			p.EventName,
			string(p.Placing),
			string(p.Category),
			string(p.Grade),
			p.StudentName,
			p.ChestNumber,
			p.Team,
			pts,
		})
	}
	return WriteCSV(w, ResultColumns, rows)
}

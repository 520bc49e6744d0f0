package festctl

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
)

const verifyInterval = 250 * time.Millisecond

// ExpectedTeams scores the plan locally. Results take the category of their
// planned event.
func ExpectedTeams(plan Plan) []scoring.TeamTotal {
	cats := make(map[string]model.Category, len(plan.Events))
	for _, ev := range plan.Events {
		c, _ := model.ParseCategory(ev.Category)
		cats[ev.Name] = c
	}

	engine := scoring.NewEngine()
	placements := make([]model.Placement, 0, len(plan.Results))
	for _, r := range plan.Results {
		placing, _ := model.ParsePlacing(r.Placing)
		grade, _ := model.ParseGrade(r.Grade)
		placements = append(placements, engine.Apply(model.Placement{
			EventName:   r.EventName,
			Placing:     placing,
			Category:    cats[r.EventName],
			Grade:       grade,
			StudentName: r.StudentName,
			ChestNumber: r.ChestNumber,
			Team:        r.Team,
		}))
	}
	return scoring.TeamTotals(placements)
}

// CompareTeams lists the differences between the expected totals and the
// served team table. Points are compared only when the server shows them.
func CompareTeams(want []scoring.TeamTotal, got []types.TeamEntry) []string {
	var diffs []string
	if len(want) != len(got) {
		diffs = append(diffs, fmt.Sprintf("expected %d teams, server has %d", len(want), len(got)))
	}
	served := make(map[string]types.TeamEntry, len(got))
	for _, t := range got {
		served[t.Team] = t
	}
	for _, w := range want {
		g, ok := served[w.Team]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("team %s missing", w.Team))
			continue
		}
		if g.Points != nil && *g.Points != w.Points {
			diffs = append(diffs, fmt.Sprintf("team %s: expected %d points, server has %d", w.Team, w.Points, *g.Points))
		}
	}
	return diffs
}

// Verify polls the standings until the team table matches the plan or ctx
// ends. Standings are rebuilt asynchronously so the first reads may lag.
func Verify(ctx context.Context, c *Client, plan Plan) ([]string, error) {
	want := ExpectedTeams(plan)
	ticker := time.NewTicker(verifyInterval)
	defer ticker.Stop()

	for {
		st, err := c.Standings(ctx)
		if err != nil {
			return nil, err
		}
		diffs := CompareTeams(want, st.Teams)
		if len(diffs) == 0 {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return diffs, nil
		case <-ticker.C:
		}
	}
}

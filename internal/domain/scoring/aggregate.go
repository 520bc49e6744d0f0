package scoring

import (
	"sort"
	"strings"

	"github.com/okian/fest/internal/domain/model"
)

// TeamTotal is the summed points of one team.
type TeamTotal struct {
	Team       string `json:"team"`
	Points     int    `json:"points"`
	Placements int    `json:"placements"`
}

// TeamTotals sums points by exact team string. Placements without a team are
// ignored. Sorted by points descending, then team ascending.
func TeamTotals(placements []model.Placement) []TeamTotal {
	idx := map[string]int{}
	var out []TeamTotal
	for _, p := range placements {
		if p.Team == "" {
			continue
		}
		i, ok := idx[p.Team]
		if !ok {
			i = len(out)
			idx[p.Team] = i
			out = append(out, TeamTotal{Team: p.Team})
		}
		out[i].Points += p.Points
		out[i].Placements++
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// Individual is the aggregated record of one student.
type Individual struct {
	Identity    string            `json:"identity"`
	Name        string            `json:"name"`
	ChestNumber string            `json:"chestNumber,omitempty"`
	Team        string            `json:"team,omitempty"`
	Points      int               `json:"points"`
	Firsts      int               `json:"firsts"`
	Seconds     int               `json:"seconds"`
	Thirds      int               `json:"thirds"`
	Unplaced    int               `json:"unplaced"`
	Placements  []model.Placement `json:"placements"`
}

// PlacementIdentity groups placements by student: the chest number when set
// and not "0", otherwise the lowercased name joined with the team.
func PlacementIdentity(p model.Placement) string {
	if c := chest(p); c != "" {
		return c
	}
	return strings.ToLower(strings.TrimSpace(p.StudentName)) + "|" + p.Team
}

// chest returns the trimmed chest number, or "" when it is unset or "0".
func chest(p model.Placement) string {
	if c := strings.TrimSpace(p.ChestNumber); c != "0" {
		return c
	}
	return ""
}

// Individuals aggregates placements per student. Team-only placements (no
// name and no usable chest number) are skipped. Sorted by points descending, then
// identity ascending.
func Individuals(placements []model.Placement) []Individual {
	idx := map[string]int{}
	var out []Individual
	for _, p := range placements {
		if strings.TrimSpace(p.StudentName) == "" && chest(p) == "" {
			continue
		}
		id := PlacementIdentity(p)
		i, ok := idx[id]
		if !ok {
			i = len(out)
			idx[id] = i
			out = append(out, Individual{Identity: id})
		}
		ind := &out[i]
		if ind.Name == "" {
			ind.Name = strings.TrimSpace(p.StudentName)
		}
		if ind.ChestNumber == "" {
			ind.ChestNumber = strings.TrimSpace(p.ChestNumber)
		}
		if ind.Team == "" {
			ind.Team = p.Team
		}
		ind.Points += p.Points
		switch p.Placing {
		case model.PlacingFirst:
			ind.Firsts++
		case model.PlacingSecond:
			ind.Seconds++
		case model.PlacingThird:
			ind.Thirds++
		default:
			ind.Unplaced++
		}
		ind.Placements = append(ind.Placements, p)
	}
	sort.Slice(out, func(i, j int) bool { return ranksBefore(out[i], out[j]) })
	return out
}

func ranksBefore(a, b Individual) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Identity < b.Identity
}

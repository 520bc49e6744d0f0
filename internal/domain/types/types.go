// Package types contains standings read shapes shared by the API, the live
// hub and the CLI.
package types

import (
	"time"

	"github.com/okian/fest/internal/domain/scoring"
)

// TeamEntry is one ranked team. Points is nil when points are hidden.
type TeamEntry struct {
	Rank   int    `json:"rank"`
	Team   string `json:"team"`
	Points *int   `json:"points,omitempty"`
}

// IndividualEntry is one ranked student.
type IndividualEntry struct {
	Rank        int    `json:"rank"`
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	ChestNumber string `json:"chestNumber,omitempty"`
	Team        string `json:"team,omitempty"`
	Points      *int   `json:"points,omitempty"`
	Firsts      int    `json:"firsts"`
	Seconds     int    `json:"seconds"`
	Thirds      int    `json:"thirds"`
}

// Champions holds the two championship winners; nil when nobody qualifies.
type Champions struct {
	HighestTotal *IndividualEntry `json:"highestTotal,omitempty"`
	Eligible     *IndividualEntry `json:"eligible,omitempty"`
}

// Standings is the payload of the standings endpoints and the live feed.
type Standings struct {
	Version     uint64            `json:"version"`
	GeneratedAt time.Time         `json:"generatedAt"`
	PointsShown bool              `json:"pointsShown"`
	Teams       []TeamEntry       `json:"teams"`
	Individuals []IndividualEntry `json:"individuals"`
	Champions   Champions         `json:"champions"`
}

// TeamEntryFrom ranks a team total.
func TeamEntryFrom(rank int, t scoring.TeamTotal) TeamEntry {
	pts := t.Points
	return TeamEntry{Rank: rank, Team: t.Team, Points: &pts}
}

// IndividualEntryFrom ranks an individual.
func IndividualEntryFrom(rank int, ind scoring.Individual) IndividualEntry {
	pts := ind.Points
	return IndividualEntry{
		Rank:        rank,
		Identity:    ind.Identity,
		Name:        ind.Name,
		ChestNumber: ind.ChestNumber,
		Team:        ind.Team,
		Points:      &pts,
		Firsts:      ind.Firsts,
		Seconds:     ind.Seconds,
		Thirds:      ind.Thirds,
	}
}

// WithoutPoints returns a copy of s with every points value removed.
func (s Standings) WithoutPoints() Standings {
	out := s
	out.PointsShown = false
	out.Teams = make([]TeamEntry, len(s.Teams))
	for i, t := range s.Teams {
		t.Points = nil
		out.Teams[i] = t
	}
	out.Individuals = make([]IndividualEntry, len(s.Individuals))
	for i, ind := range s.Individuals {
		ind.Points = nil
		out.Individuals[i] = ind
	}
	out.Champions = Champions{
		HighestTotal: stripped(s.Champions.HighestTotal),
		Eligible:     stripped(s.Champions.Eligible),
	}
	return out
}

func stripped(e *IndividualEntry) *IndividualEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.Points = nil
	return &c
}

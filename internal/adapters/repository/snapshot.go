package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
	"github.com/okian/fest/pkg/metrics"
)

// Snapshot is an immutable view of the standings with O(1) lookups.
type Snapshot struct {
	Standings types.Standings

	TeamIndex       map[string]int
	IndividualIndex map[string]int
	Details         map[string]scoring.Individual
}

// SnapshotStore publishes whole snapshots atomically; readers never block
// writers.
type SnapshotStore struct {
	mu       sync.Mutex // serializes Publish
	version  uint64
	topLimit int
	now      func() time.Time

	snapshot atomic.Pointer[Snapshot]
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		topLimit: 500,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{
		Standings: types.Standings{
			Teams:       []types.TeamEntry{},
			Individuals: []types.IndividualEntry{},
		},
		TeamIndex:       map[string]int{},
		IndividualIndex: map[string]int{},
		Details:         map[string]scoring.Individual{},
	})
	return s
}

// Publish ranks teams and individuals and swaps the snapshot in. Inputs must
// already be ordered as scoring.TeamTotals and scoring.Individuals return them.
func (s *SnapshotStore) Publish(_ context.Context, teams []scoring.TeamTotal, individuals []scoring.Individual) types.Standings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	snap := &Snapshot{
		TeamIndex:       make(map[string]int, len(teams)),
		IndividualIndex: make(map[string]int, len(individuals)),
		Details:         make(map[string]scoring.Individual, len(individuals)),
	}

	teamRanks := denseRanks(len(teams), func(i int) int { return teams[i].Points })
	teamEntries := make([]types.TeamEntry, len(teams))
	for i, t := range teams {
		teamEntries[i] = types.TeamEntryFrom(teamRanks[i], t)
		snap.TeamIndex[t.Team] = i
	}

	indRanks := denseRanks(len(individuals), func(i int) int { return individuals[i].Points })
	indEntries := make([]types.IndividualEntry, len(individuals))
	for i, ind := range individuals {
		indEntries[i] = types.IndividualEntryFrom(indRanks[i], ind)
		snap.IndividualIndex[ind.Identity] = i
		snap.Details[ind.Identity] = ind
	}

	var champs types.Champions
	if top, ok := scoring.HighestTotal(individuals); ok {
		e := indEntries[snap.IndividualIndex[top.Identity]]
		champs.HighestTotal = &e
	}
	if top, ok := scoring.EligibleChampion(individuals); ok {
		e := indEntries[snap.IndividualIndex[top.Identity]]
		champs.Eligible = &e
	}

	at := s.now()
	snap.Standings = types.Standings{
		Version:     s.version,
		GeneratedAt: at,
		PointsShown: true,
		Teams:       teamEntries,
		Individuals: indEntries,
		Champions:   champs,
	}
	s.snapshot.Store(snap)
	metrics.RecordSnapshot(at, len(individuals))
	return snap.Standings
}

// Snapshot returns the current immutable snapshot.
func (s *SnapshotStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *SnapshotStore) Standings(_ context.Context) types.Standings {
	return s.snapshot.Load().Standings
}

func (s *SnapshotStore) TeamRank(_ context.Context, team string) (types.TeamEntry, error) {
	snap := s.snapshot.Load()
	i, ok := snap.TeamIndex[team]
	if !ok {
		return types.TeamEntry{}, ErrNotFound
	}
	return snap.Standings.Teams[i], nil
}

func (s *SnapshotStore) IndividualRank(_ context.Context, identity string) (types.IndividualEntry, error) {
	snap := s.snapshot.Load()
	i, ok := snap.IndividualIndex[identity]
	if !ok {
		return types.IndividualEntry{}, ErrNotFound
	}
	return snap.Standings.Individuals[i], nil
}

func (s *SnapshotStore) Individual(_ context.Context, identity string) (scoring.Individual, error) {
	ind, ok := s.snapshot.Load().Details[identity]
	if !ok {
		return scoring.Individual{}, ErrNotFound
	}
	return ind, nil
}

func (s *SnapshotStore) TopIndividuals(_ context.Context, n int) ([]types.IndividualEntry, error) {
	if n < 1 || n > s.topLimit {
		return nil, ErrInvalidLimit
	}
	all := s.snapshot.Load().Standings.Individuals
	if n > len(all) {
		n = len(all)
	}
	out := make([]types.IndividualEntry, n)
	copy(out, all[:n])
	return out, nil
}

func (s *SnapshotStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Standings.Individuals)
}

// denseRanks gives equal points the same rank; the next distinct total
// takes the following rank.
func denseRanks(n int, points func(int) int) []int {
	ranks := make([]int, n)
	rank := 0
	for i := range ranks {
		if i == 0 || points(i) != points(i-1) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

// Package repository keeps the current standings snapshot.
package repository

import (
	"context"

	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
)

// Store provides read/write access to the standings state.
type Store interface {
	// Publish replaces the snapshot with one built from the given totals
	// and returns it.
	Publish(ctx context.Context, teams []scoring.TeamTotal, individuals []scoring.Individual) types.Standings

	// Standings returns the current snapshot. Before the first Publish it
	// is empty with Version 0.
	Standings(ctx context.Context) types.Standings

	// TeamRank returns a team's entry. Returns ErrNotFound for unknown teams.
	TeamRank(ctx context.Context, team string) (types.TeamEntry, error)

	// IndividualRank returns one student's entry by identity.
	IndividualRank(ctx context.Context, identity string) (types.IndividualEntry, error)

	// Individual returns the aggregate with its placement list.
	Individual(ctx context.Context, identity string) (scoring.Individual, error)

	// TopIndividuals returns the first n individuals in rank order.
	TopIndividuals(ctx context.Context, n int) ([]types.IndividualEntry, error)

	// Count returns the number of ranked individuals.
	Count(ctx context.Context) int
}

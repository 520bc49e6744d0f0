package scoring

import "github.com/okian/fest/internal/domain/model"

// HighestTotal returns the individual with the greatest points. Equal totals
// go to the smallest identity.
func HighestTotal(individuals []Individual) (Individual, bool) {
	return best(individuals, func(Individual) bool { return true })
}

// EligibleChampion returns the highest scorer among individuals holding at
// least one Category A first place graded A+.
func EligibleChampion(individuals []Individual) (Individual, bool) {
	return best(individuals, Eligible)
}

// Eligible reports whether ind qualifies for the gated championship.
func Eligible(ind Individual) bool {
	for _, p := range ind.Placements {
		if p.Category == model.CategoryA && p.Placing == model.PlacingFirst && p.Grade == model.GradeAPlus {
			return true
		}
	}
	return false
}

func best(individuals []Individual, keep func(Individual) bool) (Individual, bool) {
	var (
		top   Individual
		found bool
	)
	for _, ind := range individuals {
		if !keep(ind) {
			continue
		}
		if !found || ranksBefore(ind, top) {
			top, found = ind, true
		}
	}
	return top, found
}

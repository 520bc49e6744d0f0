package types_test

import (
	"testing"

	"github.com/okian/fest/internal/domain/scoring"
	types "github.com/okian/fest/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntries(t *testing.T) {
	Convey("Given aggregated standings", t, func() {
		team := types.TeamEntryFrom(1, scoring.TeamTotal{Team: "PYRA", Points: 42})
		ind := types.IndividualEntryFrom(2, scoring.Individual{Identity: "045", Name: "Aisha", Points: 19, Firsts: 1})

		Convey("Then ranked entries should carry the values", func() {
			So(team.Rank, ShouldEqual, 1)
			So(*team.Points, ShouldEqual, 42)
			So(ind.Rank, ShouldEqual, 2)
			So(*ind.Points, ShouldEqual, 19)
			So(ind.Firsts, ShouldEqual, 1)
		})

		Convey("When points are hidden", func() {
			s := types.Standings{
				PointsShown: true,
				Teams:       []types.TeamEntry{team},
				Individuals: []types.IndividualEntry{ind},
				Champions:   types.Champions{HighestTotal: &ind},
			}
			hidden := s.WithoutPoints()

			Convey("Then no points should remain and the original should be intact", func() {
				So(hidden.PointsShown, ShouldBeFalse)
				So(hidden.Teams[0].Points, ShouldBeNil)
				So(hidden.Individuals[0].Points, ShouldBeNil)
				So(hidden.Champions.HighestTotal.Points, ShouldBeNil)
				So(hidden.Champions.Eligible, ShouldBeNil)
				So(*s.Teams[0].Points, ShouldEqual, 42)
				So(*s.Champions.HighestTotal.Points, ShouldEqual, 19)
			})
		})
	})
}

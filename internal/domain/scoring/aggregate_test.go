package scoring_test

import (
	"testing"

	"github.com/okian/fest/internal/domain/model"
	scoring "github.com/okian/fest/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeamTotals(t *testing.T) {
	Convey("Given placements across teams", t, func() {
		placements := []model.Placement{
			{Team: "PYRA", Points: 19},
			{Team: "ZETA", Points: 10},
			{Team: "pyra", Points: 5},
			{Team: "ZETA", Points: 9},
			{Team: "", Points: 50},
			{Team: "AQUA", Points: 19},
		}

		Convey("When summing", func() {
			totals := scoring.TeamTotals(placements)

			Convey("Then teams should compare case-sensitively and sort by points then name", func() {
				So(totals, ShouldResemble, []scoring.TeamTotal{
					{Team: "AQUA", Points: 19, Placements: 1},
					{Team: "PYRA", Points: 19, Placements: 1},
					{Team: "ZETA", Points: 19, Placements: 2},
					{Team: "pyra", Points: 5, Placements: 1},
				})
			})
		})
	})
}

func TestIndividuals(t *testing.T) {
	Convey("Given placements for several students", t, func() {
		placements := []model.Placement{
			{StudentName: "Aisha", ChestNumber: "045", Team: "PYRA", Placing: model.PlacingFirst, Points: 19},
			{StudentName: "Aisha K", ChestNumber: "045", Team: "PYRA", Placing: model.PlacingThird, Points: 4},
			{StudentName: "Rahul", ChestNumber: "0", Team: "ZETA", Placing: model.PlacingSecond, Points: 8},
			{StudentName: "rahul ", Team: "ZETA", Points: 5},
			{StudentName: "Rahul", Team: "PYRA", Placing: model.PlacingFirst, Points: 10},
			{Team: "ZETA", EventName: "GROUP SONG", Placing: model.PlacingFirst, Points: 25},
		}

		Convey("When aggregating", func() {
			ind := scoring.Individuals(placements)

			Convey("Then students should group by chest number else name and team", func() {
				So(len(ind), ShouldEqual, 3)
				So(ind[0].Identity, ShouldEqual, "045")
				So(ind[0].Points, ShouldEqual, 23)
				So(ind[0].Name, ShouldEqual, "Aisha")
				So(ind[0].Firsts, ShouldEqual, 1)
				So(ind[0].Thirds, ShouldEqual, 1)
				So(len(ind[0].Placements), ShouldEqual, 2)

				So(ind[1].Identity, ShouldEqual, "rahul|ZETA")
				So(ind[1].Points, ShouldEqual, 13)
				So(ind[1].Seconds, ShouldEqual, 1)
				So(ind[1].Unplaced, ShouldEqual, 1)

				So(ind[2].Identity, ShouldEqual, "rahul|PYRA")
			})
		})
	})

	Convey("Given a team-only placement entered with chest number 0", t, func() {
		placements := []model.Placement{
			{ChestNumber: "0", Team: "ZETA", EventName: "QAWWALI", Placing: model.PlacingFirst, Points: 25},
			{ChestNumber: " 0 ", Team: "PYRA", EventName: "GROUP SONG", Placing: model.PlacingSecond, Points: 15},
			{StudentName: "Rahul", ChestNumber: "0", Team: "ZETA", Placing: model.PlacingThird, Points: 4},
		}

		Convey("Then only the named student should become an individual", func() {
			ind := scoring.Individuals(placements)
			So(len(ind), ShouldEqual, 1)
			So(ind[0].Identity, ShouldEqual, "rahul|ZETA")
		})

		Convey("Then team totals should still count it", func() {
			totals := scoring.TeamTotals(placements)
			So(totals[0].Team, ShouldEqual, "ZETA")
			So(totals[0].Points, ShouldEqual, 29)
		})
	})

	Convey("Given the identity of a placement", t, func() {
		So(scoring.PlacementIdentity(model.Placement{ChestNumber: " 12 ", StudentName: "X"}), ShouldEqual, "12")
		So(scoring.PlacementIdentity(model.Placement{StudentName: " Nihal ", Team: "AQUA"}), ShouldEqual, "nihal|AQUA")
	})
}

func TestChampionships(t *testing.T) {
	gated := model.Placement{Category: model.CategoryA, Placing: model.PlacingFirst, Grade: model.GradeAPlus}

	Convey("Given individuals with a tie at the top", t, func() {
		individuals := []scoring.Individual{
			{Identity: "zed", Points: 40},
			{Identity: "amy", Points: 40, Placements: []model.Placement{gated}},
			{Identity: "bob", Points: 60},
			{Identity: "cat", Points: 30, Placements: []model.Placement{gated}},
		}

		Convey("Then the highest total should win outright", func() {
			top, ok := scoring.HighestTotal(individuals)
			So(ok, ShouldBeTrue)
			So(top.Identity, ShouldEqual, "bob")
		})

		Convey("Then the gated championship should only consider eligible students", func() {
			top, ok := scoring.EligibleChampion(individuals)
			So(ok, ShouldBeTrue)
			So(top.Identity, ShouldEqual, "amy")
		})

		Convey("Then equal totals should go to the smaller identity regardless of order", func() {
			tied := []scoring.Individual{{Identity: "zed", Points: 40}, {Identity: "amy", Points: 40}}
			top, _ := scoring.HighestTotal(tied)
			So(top.Identity, ShouldEqual, "amy")
			top, _ = scoring.HighestTotal([]scoring.Individual{tied[1], tied[0]})
			So(top.Identity, ShouldEqual, "amy")
		})
	})

	Convey("Given nobody meets the gate", t, func() {
		almost := []scoring.Individual{
			{Identity: "a", Points: 50, Placements: []model.Placement{{Category: model.CategoryA, Placing: model.PlacingFirst, Grade: model.GradeA}}},
			{Identity: "b", Points: 50, Placements: []model.Placement{{Category: model.CategoryB, Placing: model.PlacingFirst, Grade: model.GradeAPlus}}},
		}

		Convey("Then no eligible champion should be returned", func() {
			_, ok := scoring.EligibleChampion(almost)
			So(ok, ShouldBeFalse)
			_, ok = scoring.HighestTotal(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

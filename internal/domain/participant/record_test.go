package participant

import (
	"testing"

	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolveIdentity(t *testing.T) {
	Convey("Given chest numbers and names", t, func() {
		Convey("Then a real chest number should be the identity", func() {
			So(ResolveIdentity(" 045 ", "Aisha"), ShouldEqual, "045")
		})

		Convey("Then chest number 0 should fall back to the name", func() {
			So(ResolveIdentity("0", "  Aisha K "), ShouldEqual, "aisha k")
			So(ResolveIdentity(" 0 ", "Aisha K"), ShouldEqual, "aisha k")
		})

		Convey("Then an empty chest number should fall back to the name", func() {
			So(ResolveIdentity("", "RAHUL"), ShouldEqual, "rahul")
		})

		Convey("Then zero-padded chest numbers should be kept verbatim", func() {
			So(ResolveIdentity("00", "Rahul"), ShouldEqual, "00")
		})

		Convey("Then same-named students without chest numbers should collide", func() {
			a := Record{FullName: "Fathima"}
			b := Record{FullName: "fathima "}
			So(a.Identity(), ShouldEqual, b.Identity())
		})
	})
}

func TestEventSet(t *testing.T) {
	Convey("Given raw event names", t, func() {
		s := NewEventSet("quiz, short vloging", "  ", "Quiz")

		Convey("Then they should be normalized and deduplicated", func() {
			So(s.Sorted(), ShouldResemble, []string{"QUIZ", "SHORT VLOGGING"})
			So(s.Has("short vlogging"), ShouldBeTrue)
			So(s.Has("mime"), ShouldBeFalse)
		})
	})
}

func TestFromRowAndRegistration(t *testing.T) {
	Convey("Given a spreadsheet row", t, func() {
		row := normalize.Row{
			"CHEST NO":        "101",
			"FULL NAME":       " Rahul ",
			"TEAM NAME":       "ZETA",
			"ON STAGE EVENTS": "quiz,mime",
			"OFF STAGE":       "essay wrting",
			"GENERAL EVENTS":  "q&h",
		}
		r := FromRow(normalize.Default(), row)

		Convey("Then canonical fields should be filled", func() {
			So(r.Identity(), ShouldEqual, "101")
			So(r.FullName, ShouldEqual, "Rahul")
			So(r.Team, ShouldEqual, "ZETA")
			So(r.OnStage.Sorted(), ShouldResemble, []string{"MIME", "QUIZ"})
			So(r.OffStage.Sorted(), ShouldResemble, []string{"ESSAY WRITING"})
			So(r.General.Sorted(), ShouldResemble, []string{"Q AND H"})
			So(r.Provenance, ShouldEqual, Imported)
		})
	})

	Convey("Given a live registration", t, func() {
		r := FromRegistration(model.Registration{
			FullName:      "Aisha",
			ChestNumber:   "045",
			Team:          "PYRA",
			OnStageEvents: []string{"Quiz"},
		})

		Convey("Then it should be a live record", func() {
			So(r.Provenance, ShouldEqual, Live)
			So(r.View().OnStageEvents, ShouldResemble, []string{"QUIZ"})
			So(r.View().OffStageEvents, ShouldResemble, []string{})
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a participant", t, func() {
		r := Record{Team: "PYRA", OnStage: NewEventSet("QUIZ"), General: NewEventSet("GROUP SONG")}

		Convey("Then filters should match by team and any event set", func() {
			So(Filter{}.Match(r), ShouldBeTrue)
			So(Filter{Team: "pyra"}.Match(r), ShouldBeTrue)
			So(Filter{Team: "ZETA"}.Match(r), ShouldBeFalse)
			So(Filter{Event: "group song"}.Match(r), ShouldBeTrue)
			So(Filter{Team: "PYRA", Event: "MIME"}.Match(r), ShouldBeFalse)
		})
	})
}

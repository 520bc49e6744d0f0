package normalize

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLookup(t *testing.T) {
	Convey("Given a spreadsheet row with inconsistent headers", t, func() {
		row := Row{
			"CHEST  NO":       " 045 ",
			"Student Name":    "Aisha K",
			"TEAM":            "",
			"team name":       "PYRA",
			"On Stage Events": "quiz, mime",
		}

		Convey("When the alias differs only by inner whitespace", func() {
			got := Lookup(row, "CHEST NO")

			Convey("Then the whitespace-insensitive match should return the trimmed value", func() {
				So(got, ShouldEqual, "045")
			})
		})

		Convey("When the alias differs only by case", func() {
			So(Lookup(row, "STUDENT NAME"), ShouldEqual, "Aisha K")
		})

		Convey("When the first alias resolves to an empty value", func() {
			got := Lookup(row, "TEAM", "TEAM NAME")

			Convey("Then the next alias should be tried", func() {
				So(got, ShouldEqual, "PYRA")
			})
		})

		Convey("When no alias matches", func() {
			So(Lookup(row, "CIC NUMBER", "CIC"), ShouldEqual, "")
		})

		Convey("When the row or aliases are empty", func() {
			So(Lookup(nil, "NAME"), ShouldEqual, "")
			So(Lookup(row), ShouldEqual, "")
			So(Lookup(row, "", "   "), ShouldEqual, "")
		})
	})

	Convey("Given two keys that collapse to the same alias", t, func() {
		row := Row{"chest no": "12", "CHEST NO": "", "Chest No": "7"}

		Convey("Then the result should be stable across calls", func() {
			first := Lookup(row, "CHEST NO")
			for i := 0; i < 20; i++ {
				So(Lookup(row, "CHEST NO"), ShouldEqual, first)
			}
			So(first, ShouldEqual, "7")
		})
	})
}

func TestAliasTable(t *testing.T) {
	Convey("Given the default alias table", t, func() {
		table := Default()
		row := Row{"CHEST NUMBER": "101", "FULL NAME": "Rahul", "HOUSE": "ZETA", "GENERAL": "group song"}

		Convey("Then canonical fields should resolve through any accepted spelling", func() {
			So(table.Get(row, FieldChestNumber), ShouldEqual, "101")
			So(table.Get(row, FieldFullName), ShouldEqual, "Rahul")
			So(table.Get(row, FieldTeam), ShouldEqual, "ZETA")
			So(table.Get(row, FieldGeneral), ShouldEqual, "group song")
			So(table.Get(row, FieldCICNumber), ShouldEqual, "")
		})

		Convey("Then unknown fields should fall back to a direct lookup", func() {
			So(table.Get(Row{"remarks": "late"}, "Remarks"), ShouldEqual, "late")
		})

		Convey("When overrides are configured", func() {
			custom := table.WithOverrides(map[string][]string{
				"CHESTNUMBER": {"BADGE"},
				"venue":       {"HALL"},
			})

			Convey("Then they should be tried before the defaults", func() {
				r := Row{"BADGE": "9", "CHEST NO": "8", "HALL": "Main"}
				So(custom.Get(r, FieldChestNumber), ShouldEqual, "9")
				So(custom.Get(r, "venue"), ShouldEqual, "Main")
			})

			Convey("Then the original table should be untouched", func() {
				So(table[FieldChestNumber][0], ShouldEqual, "chestNumber")
				_, ok := table["venue"]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

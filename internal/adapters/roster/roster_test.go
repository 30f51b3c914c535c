package roster_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/raceday/finishline/internal/adapters/roster"
	"github.com/raceday/finishline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	Convey("Given a well-formed roster CSV", t, func() {
		input := strings.Join([]string{
			"bib,name,team,rfid",
			"101,Ada Boone,North,TAG-101",
			"102,Cal Reyes,South,",
			"103,Dee Marsh,North,TAG-103",
		}, "\n")

		Convey("When it is parsed", func() {
			runners, err := roster.ParseCSV(strings.NewReader(input))

			Convey("Then every row becomes a runner", func() {
				So(err, ShouldBeNil)
				So(runners, ShouldHaveLength, 3)
				So(runners[0], ShouldResemble, model.Runner{Bib: 101, Name: "Ada Boone", Team: "North", Tag: "TAG-101"})
				So(runners[1].Tag, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a roster without the optional rfid column", t, func() {
		input := "bib,name,team\n104,Eli Ford,West\n"

		Convey("Then parsing still succeeds", func() {
			runners, err := roster.ParseCSV(strings.NewReader(input))
			So(err, ShouldBeNil)
			So(runners, ShouldHaveLength, 1)
			So(runners[0].Team, ShouldEqual, "West")
		})
	})

	Convey("Given a roster with a non-numeric bib", t, func() {
		input := "bib,name,team\nabc,Eli Ford,West\n"

		Convey("Then parsing fails with ErrBadRoster", func() {
			_, err := roster.ParseCSV(strings.NewReader(input))
			So(errors.Is(err, roster.ErrBadRoster), ShouldBeTrue)
		})
	})

	Convey("Given a roster with a non-positive bib", t, func() {
		input := "bib,name,team\n0,Eli Ford,West\n"

		Convey("Then parsing fails with ErrBadRoster", func() {
			_, err := roster.ParseCSV(strings.NewReader(input))
			So(errors.Is(err, roster.ErrBadRoster), ShouldBeTrue)
		})
	})

	Convey("Given a roster missing a required column", t, func() {
		input := "bib,name\n101,Ada Boone\n"

		Convey("Then parsing fails with ErrBadRoster", func() {
			_, err := roster.ParseCSV(strings.NewReader(input))
			So(errors.Is(err, roster.ErrBadRoster), ShouldBeTrue)
		})
	})
}

func TestDirectory(t *testing.T) {
	Convey("Given an empty directory", t, func() {
		dir := roster.NewDirectory()

		Convey("Then lookups miss", func() {
			_, ok := dir.Lookup(101)
			So(ok, ShouldBeFalse)
			So(dir.Len(), ShouldEqual, 0)
		})

		Convey("When runners are upserted", func() {
			dir.Upsert([]model.Runner{
				{Bib: 101, Name: "Ada Boone", Team: "North"},
				{Bib: 102, Name: "Cal Reyes", Team: "South"},
			})

			Convey("Then lookups resolve", func() {
				r, ok := dir.Lookup(101)
				So(ok, ShouldBeTrue)
				So(r.Name, ShouldEqual, "Ada Boone")
				So(dir.Len(), ShouldEqual, 2)
			})

			Convey("Then a duplicate bib overwrites the prior entry", func() {
				dir.Upsert([]model.Runner{{Bib: 101, Name: "Ada B. Boone", Team: "North"}})
				r, _ := dir.Lookup(101)
				So(r.Name, ShouldEqual, "Ada B. Boone")
				So(dir.Len(), ShouldEqual, 2)
			})
		})
	})
}

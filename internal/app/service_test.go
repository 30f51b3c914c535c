package app_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/raceday/finishline/internal/adapters/repository"
	"github.com/raceday/finishline/internal/app"
	"github.com/raceday/finishline/internal/domain/model"
	"github.com/raceday/finishline/internal/domain/raceclock"
	"github.com/raceday/finishline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// tickingClock returns a clock whose time source advances one second
// per read, starting from a fixed instant.
func tickingClock() *raceclock.Clock {
	base := time.Date(2025, 10, 4, 9, 0, 0, 0, time.UTC)
	return raceclock.New(raceclock.WithNow(func() time.Time {
		base = base.Add(time.Second)
		return base
	}))
}

type failingChime struct{}

func (failingChime) Play(context.Context) error {
	return errors.New("speaker unplugged")
}

func TestRecord(t *testing.T) {
	Convey("Given a service with a running race", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store, app.WithClock(tickingClock()))
		ctx := context.Background()
		So(svc.StartRace(ctx), ShouldBeNil)

		Convey("When a numeric bib is recorded", func() {
			ev, err := svc.Record(ctx, "150")

			Convey("Then one event is appended with that bib", func() {
				So(err, ShouldBeNil)
				So(ev.Bib, ShouldEqual, 150)
				So(ev.Seq, ShouldEqual, 1)
				So(ev.Elapsed, ShouldBeGreaterThanOrEqualTo, 0)
				So(ev.Date, ShouldEqual, "2025-10-04")

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When blank input is recorded", func() {
			ev, err := svc.Record(ctx, "")

			Convey("Then a bib-0 placeholder is written", func() {
				So(err, ShouldBeNil)
				So(ev.Bib, ShouldEqual, model.UnknownBib)
				So(ev.Unknown(), ShouldBeTrue)
			})
		})

		Convey("When whitespace-only input is recorded", func() {
			ev, err := svc.Record(ctx, "   ")

			Convey("Then it counts as blank, not garbage", func() {
				So(err, ShouldBeNil)
				So(ev.Bib, ShouldEqual, model.UnknownBib)
			})
		})

		Convey("When non-numeric input is recorded", func() {
			_, err := svc.Record(ctx, "abc")

			Convey("Then the call fails with ErrInvalidBib and writes nothing", func() {
				So(errors.Is(err, app.ErrInvalidBib), ShouldBeTrue)
				n, cerr := store.Count(ctx)
				So(cerr, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When a bib absent from the directory is recorded", func() {
			ev, err := svc.Record(ctx, "987")

			Convey("Then the event is still persisted", func() {
				So(err, ShouldBeNil)
				So(ev.Bib, ShouldEqual, 987)
			})
		})

		Convey("When the same input is recorded twice", func() {
			first, err := svc.Record(ctx, "150")
			So(err, ShouldBeNil)
			second, err := svc.Record(ctx, "150")
			So(err, ShouldBeNil)

			Convey("Then two distinct events exist", func() {
				So(second.Seq, ShouldBeGreaterThan, first.Seq)
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When many finishes are recorded", func() {
			inputs := []string{"101", "", "102", "103", "", "104"}
			var lastSeq uint64
			for _, in := range inputs {
				ev, err := svc.Record(ctx, in)
				So(err, ShouldBeNil)
				So(ev.Seq, ShouldBeGreaterThan, lastSeq)
				lastSeq = ev.Seq
			}

			Convey("Then the store length equals the number of calls", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, len(inputs))
			})

			Convey("Then elapsed times are non-decreasing in insertion order", func() {
				events, err := store.Snapshot(ctx)
				So(err, ShouldBeNil)
				for i := 1; i < len(events); i++ {
					So(events[i].Elapsed, ShouldBeGreaterThanOrEqualTo, events[i-1].Elapsed)
				}
			})
		})
	})

	Convey("Given a service whose race has not started", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store)
		ctx := context.Background()

		Convey("When a finish is recorded", func() {
			_, err := svc.Record(ctx, "150")

			Convey("Then the call fails with ErrRaceNotActive and writes nothing", func() {
				So(errors.Is(err, app.ErrRaceNotActive), ShouldBeTrue)
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a stopped race", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store, app.WithClock(tickingClock()))
		ctx := context.Background()
		So(svc.StartRace(ctx), ShouldBeNil)
		So(svc.StopRace(ctx), ShouldBeNil)

		Convey("Then recording fails with ErrRaceNotActive", func() {
			_, err := svc.Record(ctx, "150")
			So(errors.Is(err, app.ErrRaceNotActive), ShouldBeTrue)
		})

		Convey("Then restarting fails with the clock's transition error", func() {
			So(errors.Is(svc.StartRace(ctx), raceclock.ErrInvalidTransition), ShouldBeTrue)
		})

		Convey("Then stopping again is rejected, not ignored", func() {
			So(errors.Is(svc.StopRace(ctx), raceclock.ErrNotRunning), ShouldBeTrue)
		})
	})

	Convey("Given a service whose chime fails", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store,
			app.WithClock(tickingClock()),
			app.WithChime(failingChime{}),
		)
		ctx := context.Background()
		So(svc.StartRace(ctx), ShouldBeNil)

		Convey("Then recording still succeeds", func() {
			ev, err := svc.Record(ctx, "150")
			So(err, ShouldBeNil)
			So(ev.Seq, ShouldEqual, 1)
		})
	})
}

func TestClockControl(t *testing.T) {
	Convey("Given a fresh service", t, func() {
		svc := app.New(repository.NewMemoryStore(), app.WithClock(tickingClock()))
		ctx := context.Background()

		Convey("Then the clock starts NotStarted", func() {
			So(svc.ClockState(), ShouldEqual, raceclock.NotStarted)
		})

		Convey("When the race starts", func() {
			So(svc.StartRace(ctx), ShouldBeNil)

			Convey("Then the state is Running and a second start fails", func() {
				So(svc.ClockState(), ShouldEqual, raceclock.Running)
				So(errors.Is(svc.StartRace(ctx), raceclock.ErrAlreadyRunning), ShouldBeTrue)
			})
		})

		Convey("When stopping before starting", func() {
			Convey("Then the call fails with ErrNotRunning", func() {
				So(errors.Is(svc.StopRace(ctx), raceclock.ErrNotRunning), ShouldBeTrue)
			})
		})
	})
}

func TestReports(t *testing.T) {
	Convey("Given a finished race with two full teams", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store, app.WithClock(tickingClock()))
		ctx := context.Background()

		// Team A takes places 1,3,4,6,7; Team B takes 2,5,8,9,10.
		roster := []model.Runner{
			{Bib: 101, Name: "A1", Team: "Team A"},
			{Bib: 102, Name: "A2", Team: "Team A"},
			{Bib: 103, Name: "A3", Team: "Team A"},
			{Bib: 104, Name: "A4", Team: "Team A"},
			{Bib: 105, Name: "A5", Team: "Team A"},
			{Bib: 201, Name: "B1", Team: "Team B"},
			{Bib: 202, Name: "B2", Team: "Team B"},
			{Bib: 203, Name: "B3", Team: "Team B"},
			{Bib: 204, Name: "B4", Team: "Team B"},
			{Bib: 205, Name: "B5", Team: "Team B"},
		}
		So(svc.ImportRoster(ctx, roster), ShouldBeNil)
		So(svc.StartRace(ctx), ShouldBeNil)

		finishOrder := []string{"101", "201", "102", "103", "202", "104", "105", "203", "204", "205"}
		for _, bib := range finishOrder {
			_, err := svc.Record(ctx, bib)
			So(err, ShouldBeNil)
		}
		So(svc.StopRace(ctx), ShouldBeNil)

		Convey("When the individual report is computed", func() {
			ranked, err := svc.Rank(ctx)

			Convey("Then places follow the finish order", func() {
				So(err, ShouldBeNil)
				So(ranked, ShouldHaveLength, 10)
				So(ranked[0].Place, ShouldEqual, 1)
				So(ranked[0].Bib, ShouldEqual, 101)
				So(ranked[0].Name, ShouldEqual, "A1")
				So(ranked[9].Bib, ShouldEqual, 205)
			})

			Convey("Then a second read yields identical output", func() {
				again, err := svc.Rank(ctx)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, ranked)
			})
		})

		Convey("When the team report is computed", func() {
			entries, err := svc.ScoreTeams(ctx)

			Convey("Then Team A's 21 beats Team B's 34", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Team, ShouldEqual, "Team A")
				So(entries[0].Total, ShouldEqual, 21)
				So(entries[0].Scorers, ShouldResemble, []int{1, 3, 4, 6, 7})
				So(entries[1].Team, ShouldEqual, "Team B")
				So(entries[1].Total, ShouldEqual, 34)
			})

			Convey("Then a second read yields identical output", func() {
				again, err := svc.ScoreTeams(ctx)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, entries)
			})
		})
	})

	Convey("Given an empty results store", t, func() {
		svc := app.New(repository.NewMemoryStore())
		ctx := context.Background()

		Convey("Then both reports are empty, not errors", func() {
			ranked, err := svc.Rank(ctx)
			So(err, ShouldBeNil)
			So(ranked, ShouldBeEmpty)

			entries, err := svc.ScoreTeams(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given recorded finishes for bibs missing from the directory", t, func() {
		store := repository.NewMemoryStore()
		svc := app.New(store, app.WithClock(tickingClock()))
		ctx := context.Background()
		So(svc.StartRace(ctx), ShouldBeNil)
		_, err := svc.Record(ctx, "555")
		So(err, ShouldBeNil)
		_, err = svc.Record(ctx, "")
		So(err, ShouldBeNil)

		Convey("Then the report surfaces them with UNKNOWN placeholders", func() {
			ranked, err := svc.Rank(ctx)
			So(err, ShouldBeNil)
			So(ranked, ShouldHaveLength, 2)
			So(ranked[0].Name, ShouldEqual, model.UnknownLabel)
			So(ranked[1].Bib, ShouldEqual, model.UnknownBib)
			So(ranked[1].Team, ShouldEqual, model.UnknownLabel)
		})
	})
}

func TestRestoreDirectory(t *testing.T) {
	Convey("Given a store already holding a roster", t, func() {
		store := repository.NewMemoryStore()
		ctx := context.Background()
		So(store.UpsertRunners(ctx, []model.Runner{
			{Bib: 101, Name: "Ada Boone", Team: "North"},
		}), ShouldBeNil)

		Convey("When a new service restores the directory", func() {
			svc := app.New(store, app.WithClock(tickingClock()))
			So(svc.RestoreDirectory(ctx), ShouldBeNil)
			So(svc.StartRace(ctx), ShouldBeNil)
			_, err := svc.Record(ctx, "101")
			So(err, ShouldBeNil)

			Convey("Then reports resolve the persisted runners", func() {
				ranked, err := svc.Rank(ctx)
				So(err, ShouldBeNil)
				So(ranked[0].Name, ShouldEqual, "Ada Boone")
				So(ranked[0].Team, ShouldEqual, "North")
			})
		})
	})
}

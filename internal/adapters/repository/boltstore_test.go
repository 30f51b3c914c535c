package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/raceday/finishline/internal/adapters/repository"
	"github.com/raceday/finishline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T) *repository.BoltStore {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "race.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreAppend(t *testing.T) {
	Convey("Given an open race database", t, func() {
		store := openTestStore(t)
		ctx := context.Background()

		Convey("When events are appended", func() {
			first, err := store.Append(ctx, model.FinishEvent{Bib: 101, Elapsed: 611.2, Date: "2025-10-04"})
			So(err, ShouldBeNil)
			second, err := store.Append(ctx, model.FinishEvent{Bib: 0, Elapsed: 612.9, Date: "2025-10-04"})
			So(err, ShouldBeNil)

			Convey("Then sequence ids are strictly increasing", func() {
				So(first.Seq, ShouldEqual, 1)
				So(second.Seq, ShouldEqual, 2)
			})

			Convey("Then the count matches the number of appends", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When no events have been appended", func() {
			Convey("Then the snapshot is empty", func() {
				events, err := store.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})
	})
}

func TestBoltStoreSnapshotOrdering(t *testing.T) {
	Convey("Given events with out-of-order and tied elapsed times", t, func() {
		store := openTestStore(t)
		ctx := context.Background()

		for _, ev := range []model.FinishEvent{
			{Bib: 103, Elapsed: 700.5},
			{Bib: 101, Elapsed: 698.0},
			{Bib: 102, Elapsed: 700.5},
		} {
			_, err := store.Append(ctx, ev)
			So(err, ShouldBeNil)
		}

		Convey("When a snapshot is taken", func() {
			events, err := store.Snapshot(ctx)
			So(err, ShouldBeNil)

			Convey("Then ordering is by elapsed, ties by sequence id", func() {
				So(events, ShouldHaveLength, 3)
				So(events[0].Bib, ShouldEqual, 101)
				So(events[1].Bib, ShouldEqual, 103) // seq 1 before seq 3 at 700.5
				So(events[2].Bib, ShouldEqual, 102)
			})

			Convey("Then a repeated snapshot is identical", func() {
				again, err := store.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, events)
			})
		})
	})
}

func TestBoltStoreRunners(t *testing.T) {
	Convey("Given an open race database", t, func() {
		store := openTestStore(t)
		ctx := context.Background()

		Convey("When runners are bulk-loaded", func() {
			err := store.UpsertRunners(ctx, []model.Runner{
				{Bib: 102, Name: "Cal Reyes", Team: "South"},
				{Bib: 101, Name: "Ada Boone", Team: "North"},
			})
			So(err, ShouldBeNil)

			Convey("Then listing orders by team then bib", func() {
				runners, err := store.Runners(ctx)
				So(err, ShouldBeNil)
				So(runners, ShouldHaveLength, 2)
				So(runners[0].Team, ShouldEqual, "North")
				So(runners[1].Team, ShouldEqual, "South")
			})

			Convey("Then re-importing a bib overwrites the entry", func() {
				err := store.UpsertRunners(ctx, []model.Runner{
					{Bib: 101, Name: "Ada B. Boone", Team: "North"},
				})
				So(err, ShouldBeNil)

				runners, err := store.Runners(ctx)
				So(err, ShouldBeNil)
				So(runners, ShouldHaveLength, 2)
				So(runners[0].Name, ShouldEqual, "Ada B. Boone")
			})
		})

		Convey("When a runner has a non-positive bib", func() {
			err := store.UpsertRunners(ctx, []model.Runner{{Bib: 0, Name: "Nobody"}})

			Convey("Then the load fails with ErrBadRunner and writes nothing", func() {
				So(errors.Is(err, repository.ErrBadRunner), ShouldBeTrue)
				runners, rerr := store.Runners(ctx)
				So(rerr, ShouldBeNil)
				So(runners, ShouldBeEmpty)
			})
		})
	})
}

func TestBoltStoreReopen(t *testing.T) {
	Convey("Given a race database with recorded state", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "race.db")
		ctx := context.Background()

		store, err := repository.Open(path)
		So(err, ShouldBeNil)
		raceID := store.RaceID()
		_, err = store.Append(ctx, model.FinishEvent{Bib: 150, Elapsed: 432.1})
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("When the database is reopened", func() {
			reopened, err := repository.Open(path)
			So(err, ShouldBeNil)
			defer func() { _ = reopened.Close() }()

			Convey("Then the race id is stable", func() {
				So(reopened.RaceID(), ShouldEqual, raceID)
			})

			Convey("Then existing events survive and sequencing resumes", func() {
				events, err := reopened.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)

				next, err := reopened.Append(ctx, model.FinishEvent{Bib: 151, Elapsed: 440.0})
				So(err, ShouldBeNil)
				So(next.Seq, ShouldEqual, 2)
			})
		})
	})
}

func TestNextDatabasePath(t *testing.T) {
	Convey("Given an empty data directory", t, func() {
		dir := t.TempDir()

		Convey("When the first path of the day is requested", func() {
			path, err := repository.NextDatabasePath(dir)
			So(err, ShouldBeNil)

			Convey("Then the sequence starts at 01", func() {
				So(filepath.Base(path), ShouldEndWith, "-01-race.db")
			})

			Convey("And creating that database bumps the next sequence", func() {
				store, err := repository.Open(path)
				So(err, ShouldBeNil)
				So(store.Close(), ShouldBeNil)

				second, err := repository.NextDatabasePath(dir)
				So(err, ShouldBeNil)
				So(filepath.Base(second), ShouldEndWith, "-02-race.db")
			})
		})
	})
}

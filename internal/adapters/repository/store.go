// Package repository provides durable storage for a single race: the
// append-only results log and the persisted runner directory.
package repository

import (
	"context"

	"github.com/raceday/finishline/internal/domain/model"
)

// Store is the persistence surface for one race.
type Store interface {
	// Append inserts a finish event and assigns the next sequence id.
	// The returned event carries the assigned Seq.
	Append(ctx context.Context, ev model.FinishEvent) (model.FinishEvent, error)

	// Snapshot returns a consistent copy of all finish events ordered
	// by ascending elapsed time, ties broken by sequence id.
	Snapshot(ctx context.Context) ([]model.FinishEvent, error)

	// Count returns the number of finish events in the log.
	Count(ctx context.Context) (int, error)

	// UpsertRunners bulk-loads directory entries; duplicate bibs
	// overwrite prior entries. Bibs must be positive.
	UpsertRunners(ctx context.Context, runners []model.Runner) error

	// Runners returns all directory entries ordered by team then bib.
	Runners(ctx context.Context) ([]model.Runner, error)

	// Close releases the underlying storage.
	Close() error
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/raceday/finishline/internal/domain/model"
)

// MemoryStore implements Store without durability. Used by tests and
// the simulation harness.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     uint64
	events  []model.FinishEvent
	runners map[int]model.Runner
	closed  bool
}

// NewMemoryStore creates an empty in-memory race store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runners: make(map[int]model.Runner),
	}
}

// Append inserts a finish event and assigns the next sequence id.
func (s *MemoryStore) Append(ctx context.Context, ev model.FinishEvent) (model.FinishEvent, error) {
	if err := ctx.Err(); err != nil {
		return model.FinishEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.FinishEvent{}, ErrClosed
	}
	s.seq++
	ev.Seq = s.seq
	s.events = append(s.events, ev)
	return ev, nil
}

// Snapshot returns a copy of all events ordered by elapsed then seq.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]model.FinishEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	events := make([]model.FinishEvent, len(s.events))
	copy(events, s.events)
	sort.Slice(events, func(i, j int) bool {
		if events[i].Elapsed != events[j].Elapsed {
			return events[i].Elapsed < events[j].Elapsed
		}
		return events[i].Seq < events[j].Seq
	})
	return events, nil
}

// Count returns the number of finish events.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.events), nil
}

// UpsertRunners bulk-loads directory entries; duplicate bibs overwrite.
func (s *MemoryStore) UpsertRunners(ctx context.Context, runners []model.Runner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range runners {
		if r.Bib <= 0 {
			return fmt.Errorf("%w: bib %d", ErrBadRunner, r.Bib)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, r := range runners {
		s.runners[r.Bib] = r
	}
	return nil
}

// Runners returns all directory entries ordered by team then bib.
func (s *MemoryStore) Runners(ctx context.Context) ([]model.Runner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	runners := make([]model.Runner, 0, len(s.runners))
	for _, r := range s.runners {
		runners = append(runners, r)
	}
	sort.Slice(runners, func(i, j int) bool {
		if runners[i].Team != runners[j].Team {
			return runners[i].Team < runners[j].Team
		}
		return runners[i].Bib < runners[j].Bib
	})
	return runners, nil
}

// Close marks the store closed; further calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Package app provides the timing and scoring service consumed by the
// console shell and any other front end.
package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raceday/finishline/internal/adapters/chime"
	"github.com/raceday/finishline/internal/adapters/repository"
	"github.com/raceday/finishline/internal/adapters/roster"
	"github.com/raceday/finishline/internal/domain/model"
	"github.com/raceday/finishline/internal/domain/raceclock"
	"github.com/raceday/finishline/internal/domain/scoring"
	"github.com/raceday/finishline/pkg/logger"
	"github.com/raceday/finishline/pkg/metrics"
)

// Service ties the race clock, results store, and runner directory
// together behind the recording and reporting operations.
//
// A single mutex serializes Record so sequence assignment stays
// strictly increasing even when a UI callback and a background feed
// both record finishes. Reports read an immutable store snapshot and
// may run concurrently with recording.
type Service struct {
	mu sync.Mutex

	clock     *raceclock.Clock
	store     repository.Store
	directory *roster.Directory
	bell      chime.Chime

	scorers    int
	displacers int
	raceDate   string

	logger logger.Logger
}

// New constructs a Service around the given results store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		clock:      raceclock.New(),
		store:      store,
		directory:  roster.NewDirectory(),
		bell:       chime.Noop{},
		scorers:    5,
		displacers: 2,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// RestoreDirectory loads the persisted runner directory into memory.
// Called after opening an existing race database.
func (s *Service) RestoreDirectory(ctx context.Context) error {
	runners, err := s.store.Runners(ctx)
	if err != nil {
		return fmt.Errorf("restore directory: %w", err)
	}
	s.directory.Upsert(runners)
	metrics.UpdateRunnersLoaded(s.directory.Len())
	return nil
}

// ImportRoster bulk-upserts runners into the store and the in-memory
// directory. Duplicate bibs overwrite prior entries.
func (s *Service) ImportRoster(ctx context.Context, runners []model.Runner) error {
	if err := s.store.UpsertRunners(ctx, runners); err != nil {
		return fmt.Errorf("import roster: %w", err)
	}
	s.directory.Upsert(runners)

	metrics.RecordRosterLoad()
	metrics.UpdateRunnersLoaded(s.directory.Len())
	s.logger.Info(ctx, "roster imported",
		logger.Int("runners", len(runners)),
		logger.Int("directory_size", s.directory.Len()),
	)
	return nil
}

// StartRace starts the race clock. The clock's error taxonomy passes
// through: ErrAlreadyRunning while running, ErrInvalidTransition after
// a stop.
func (s *Service) StartRace(ctx context.Context) error {
	if err := s.clock.Start(); err != nil {
		return err
	}
	startedAt, err := s.clock.StartedAt()
	if err != nil {
		return err
	}
	s.raceDate = startedAt.Format("2006-01-02")

	metrics.UpdateRaceState(int(raceclock.Running))
	s.logger.Info(ctx, "race started", logger.String("start", startedAt.Format("15:04:05")))
	return nil
}

// StopRace stops the race clock. Fails with ErrNotRunning when the
// race is not active; repeated stops are rejected, not ignored.
func (s *Service) StopRace(ctx context.Context) error {
	if err := s.clock.Stop(); err != nil {
		return err
	}
	metrics.UpdateRaceState(int(raceclock.Stopped))
	s.logger.Info(ctx, "race stopped")
	return nil
}

// ClockState reports the current clock state for callers that need to
// re-display it.
func (s *Service) ClockState() raceclock.State {
	return s.clock.State()
}

// Record validates a raw finish input and appends one finish event.
//
// Blank input records a bib-0 placeholder for later correction.
// Non-numeric input fails with ErrInvalidBib and writes nothing. The
// bib is deliberately not checked against the directory, so finishes
// can be recorded before the roster is final. Recording is
// non-idempotent: every successful call appends a new event.
func (s *Service) Record(ctx context.Context, raw string) (model.FinishEvent, error) {
	begin := time.Now()
	defer func() {
		metrics.RecordRecordLatency(float64(time.Since(begin).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if state := s.clock.State(); state != raceclock.Running {
		return model.FinishEvent{}, fmt.Errorf("%w: clock is %s", ErrRaceNotActive, state)
	}

	raw = strings.TrimSpace(raw)
	bib := model.UnknownBib
	if raw != "" {
		var err error
		bib, err = strconv.Atoi(raw)
		if err != nil {
			metrics.RecordInvalidBib()
			return model.FinishEvent{}, fmt.Errorf("%w: %q", ErrInvalidBib, raw)
		}
	}

	instant := s.clock.Now()
	elapsed, err := s.clock.ElapsedSince(instant)
	if err != nil {
		return model.FinishEvent{}, fmt.Errorf("compute elapsed: %w", err)
	}

	ev, err := s.store.Append(ctx, model.FinishEvent{
		Bib:     bib,
		Elapsed: elapsed.Seconds(),
		Date:    s.raceDate,
	})
	if err != nil {
		return model.FinishEvent{}, fmt.Errorf("record finish: %w", err)
	}

	metrics.RecordFinish()
	if ev.Unknown() {
		metrics.RecordUnknownFinisher()
	}
	if n, cerr := s.store.Count(ctx); cerr == nil {
		metrics.UpdateResultCount(n)
	}

	// Confirmation is best-effort; a silent finish still counts.
	if cerr := s.bell.Play(ctx); cerr != nil {
		metrics.RecordChimeFailure()
		s.logger.Warn(ctx, "finish chime failed", logger.Error(cerr))
	}

	s.logger.Info(ctx, "finish recorded",
		logger.Uint64("seq", ev.Seq),
		logger.Int("bib", ev.Bib),
		logger.Float64("elapsed", ev.Elapsed),
	)
	return ev, nil
}

// Rank produces the individual report from a consistent snapshot of
// the results store joined with the directory.
func (s *Service) Rank(ctx context.Context) ([]model.RankedResult, error) {
	events, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return scoring.Rank(events, s.directory), nil
}

// ScoreTeams produces the team report with the configured scorer and
// displacer counts.
func (s *Service) ScoreTeams(ctx context.Context) ([]model.TeamScoreEntry, error) {
	ranked, err := s.Rank(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.ScoreTeams(ranked,
		scoring.WithScorerCount(s.scorers),
		scoring.WithDisplacerCount(s.displacers),
	), nil
}

// Runners lists the loaded directory ordered by team then bib.
func (s *Service) Runners(ctx context.Context) ([]model.Runner, error) {
	runners, err := s.store.Runners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runners: %w", err)
	}
	return runners, nil
}

// ResultCount returns the size of the results log.
func (s *Service) ResultCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

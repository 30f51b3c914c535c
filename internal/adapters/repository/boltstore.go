package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/raceday/finishline/internal/domain/model"
	"github.com/raceday/finishline/pkg/metrics"
)

// Bucket and meta key names inside a race database file.
var (
	metaBucket    = []byte("meta")
	runnersBucket = []byte("runners")
	resultsBucket = []byte("results")

	raceIDKey  = []byte("race_id")
	createdKey = []byte("created")
)

const (
	defaultFileMode    = 0o600
	defaultOpenTimeout = 2 * time.Second
)

// BoltStore implements Store on a single bbolt file, one file per race.
type BoltStore struct {
	db     *bolt.DB
	raceID string

	fileMode    os.FileMode
	openTimeout time.Duration
}

// Open opens or creates a race database at path. A fresh database is
// stamped with a race id and creation date in its meta bucket.
func Open(path string, opts ...BoltOption) (*BoltStore, error) {
	s := &BoltStore{
		fileMode:    defaultFileMode,
		openTimeout: defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bolt.Open(path, s.fileMode, &bolt.Options{Timeout: s.openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open race database %s: %w", path, err)
	}
	s.db = db

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(runnersBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(resultsBucket); err != nil {
			return err
		}

		if id := meta.Get(raceIDKey); id != nil {
			s.raceID = string(id)
			return nil
		}
		s.raceID = uuid.NewString()
		if err := meta.Put(raceIDKey, []byte(s.raceID)); err != nil {
			return err
		}
		return meta.Put(createdKey, []byte(time.Now().Format("2006-01-02")))
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize race database: %w", err)
	}
	return s, nil
}

// RaceID returns the identifier stamped into the database at creation.
func (s *BoltStore) RaceID() string {
	return s.raceID
}

// Append inserts a finish event, assigning the next sequence id from
// the results bucket. The bucket sequence makes seq assignment atomic
// with the write.
func (s *BoltStore) Append(ctx context.Context, ev model.FinishEvent) (model.FinishEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return model.FinishEvent{}, err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		ev.Seq = seq
		buf, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), buf)
	})
	if err != nil {
		metrics.RecordStoreError()
		return model.FinishEvent{}, fmt.Errorf("%w: append: %v", ErrUnavailable, err)
	}
	return ev, nil
}

// Snapshot returns all finish events from one read transaction,
// ordered by elapsed time then sequence id.
func (s *BoltStore) Snapshot(ctx context.Context) ([]model.FinishEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []model.FinishEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).ForEach(func(_, v []byte) error {
			var ev model.FinishEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			events = append(events, ev)
			return nil
		})
	})
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: snapshot: %v", ErrUnavailable, err)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Elapsed != events[j].Elapsed {
			return events[i].Elapsed < events[j].Elapsed
		}
		return events[i].Seq < events[j].Seq
	})
	return events, nil
}

// Count returns the number of finish events in the log.
func (s *BoltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(resultsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("%w: count: %v", ErrUnavailable, err)
	}
	return n, nil
}

// UpsertRunners bulk-loads directory entries in a single transaction.
// Duplicate bibs overwrite prior entries.
func (s *BoltStore) UpsertRunners(ctx context.Context, runners []model.Runner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range runners {
		if r.Bib <= 0 {
			return fmt.Errorf("%w: bib %d", ErrBadRunner, r.Bib)
		}
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runnersBucket)
		for _, r := range runners {
			buf, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := b.Put(itob(uint64(r.Bib)), buf); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("%w: upsert runners: %v", ErrUnavailable, err)
	}
	return nil
}

// Runners returns all directory entries ordered by team then bib.
func (s *BoltStore) Runners(ctx context.Context) ([]model.Runner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var runners []model.Runner
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runnersBucket).ForEach(func(_, v []byte) error {
			var r model.Runner
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			runners = append(runners, r)
			return nil
		})
	})
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: runners: %v", ErrUnavailable, err)
	}

	sort.Slice(runners, func(i, j int) bool {
		if runners[i].Team != runners[j].Team {
			return runners[i].Team < runners[j].Team
		}
		return runners[i].Bib < runners[j].Bib
	})
	return runners, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// NextDatabasePath returns the path for a new race database under dir,
// named YYYYMMDD-NN-race.db with NN incrementing per calendar day.
func NextDatabasePath(dir string) (string, error) {
	today := time.Now().Format("20060102")
	matches, err := filepath.Glob(filepath.Join(dir, today+"-??-race.db"))
	if err != nil {
		return "", fmt.Errorf("scan data directory: %w", err)
	}

	next := 1
	for _, m := range matches {
		parts := strings.Split(filepath.Base(m), "-")
		if len(parts) < 2 {
			continue
		}
		if seq, err := strconv.Atoi(parts[1]); err == nil && seq >= next {
			next = seq + 1
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%02d-race.db", today, next)), nil
}

// itob encodes a sequence id as a big-endian key so bucket order
// matches insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Package roster loads the runner directory and serves bib lookups
// during timing.
package roster

import (
	"sync"

	"github.com/raceday/finishline/internal/domain/model"
)

// Directory is the in-memory bib index over the loaded roster. It is
// bulk-replaced between races and read-only while timing, but guarded
// for callers that reload mid-session.
type Directory struct {
	mu      sync.RWMutex
	entries map[int]model.Runner
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		entries: make(map[int]model.Runner),
	}
}

// Upsert merges runners into the directory; duplicate bibs overwrite.
func (d *Directory) Upsert(runners []model.Runner) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range runners {
		d.entries[r.Bib] = r
	}
}

// Lookup resolves a bib to its runner entry.
func (d *Directory) Lookup(bib int) (model.Runner, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.entries[bib]
	return r, ok
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Package model contains domain models passed between layers.
package model

// UnknownBib marks a finish recorded without a bib number, pending
// manual correction.
const UnknownBib = 0

// UnknownLabel substitutes for name and team when a bib has no
// directory entry.
const UnknownLabel = "UNKNOWN"

// Runner is a directory entry keyed by bib number.
type Runner struct {
	Bib  int    `json:"bib"`
	Name string `json:"name"`
	Team string `json:"team"`
	Tag  string `json:"tag,omitempty"` // optional external tag, e.g. RFID
}

// FinishEvent is one immutable row in the results log.
//
// Seq is assigned by the store at insert and is the definitive finish
// order. Elapsed is seconds since race start; bib 0 means unknown.
type FinishEvent struct {
	Seq     uint64  `json:"seq"`
	Bib     int     `json:"bib"`
	Elapsed float64 `json:"elapsed"`
	Date    string  `json:"date"` // race calendar date, YYYY-MM-DD
}

// Unknown reports whether the event is a bib-0 placeholder.
func (e FinishEvent) Unknown() bool {
	return e.Bib == UnknownBib
}

// RankedResult is one row of the individual report: a finish event
// joined with the runner directory and assigned a 1-based place.
type RankedResult struct {
	Place   int     `json:"place"`
	Bib     int     `json:"bib"`
	Name    string  `json:"name"`
	Team    string  `json:"team"`
	Elapsed float64 `json:"elapsed"`
}

// TeamScoreEntry is one row of the team report. Derived on demand,
// never persisted.
type TeamScoreEntry struct {
	Team       string `json:"team"`
	Scorers    []int  `json:"scorers"`              // places of the first five finishers
	Displacers []int  `json:"displacers,omitempty"` // places of the 6th and 7th, tie-break only
	Total      int    `json:"total"`                // sum of scorer places, lower wins
}

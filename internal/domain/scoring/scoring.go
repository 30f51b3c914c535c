// Package scoring computes the individual and team reports from a
// snapshot of the results log joined with the runner directory.
//
// Both computations are pure functions over their inputs, so they are
// safe to run while recording continues on the live store.
package scoring

import (
	"math"
	"sort"

	"github.com/raceday/finishline/internal/domain/model"
)

// Cross-country scoring convention: five scorers count toward the
// total, the next two displace for tie-breaks.
const (
	defaultScorerCount    = 5
	defaultDisplacerCount = 2
)

// Directory resolves a bib number to a runner entry. Lookups are
// best-effort: a missing bib joins as "UNKNOWN".
type Directory interface {
	Lookup(bib int) (model.Runner, bool)
}

// Rank produces the individual report: events ordered by ascending
// elapsed time (ties broken by insertion sequence), joined with the
// directory and assigned 1-based places. An empty snapshot yields an
// empty report.
func Rank(events []model.FinishEvent, dir Directory) []model.RankedResult {
	ordered := make([]model.FinishEvent, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Elapsed != ordered[j].Elapsed {
			return ordered[i].Elapsed < ordered[j].Elapsed
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	ranked := make([]model.RankedResult, 0, len(ordered))
	for i, ev := range ordered {
		name, team := model.UnknownLabel, model.UnknownLabel
		if r, ok := dir.Lookup(ev.Bib); ok {
			name, team = r.Name, r.Team
		}
		ranked = append(ranked, model.RankedResult{
			Place:   i + 1,
			Bib:     ev.Bib,
			Name:    name,
			Team:    team,
			Elapsed: ev.Elapsed,
		})
	}
	return ranked
}

// ScoreTeams produces the team report from an individual ranking.
//
// Teams qualify with at least as many finishers as the scorer count.
// The total is the sum of the scorers' places; lower wins. Equal
// totals compare displacer places in order, and a team missing a
// displacer at a compared position sorts after teams that have one.
func ScoreTeams(ranked []model.RankedResult, opts ...Option) []model.TeamScoreEntry {
	cfg := config{
		scorers:    defaultScorerCount,
		displacers: defaultDisplacerCount,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Group places by team, keeping first-arrival team order for a
	// stable final sort.
	placesByTeam := make(map[string][]int)
	teamOrder := make([]string, 0)
	for _, r := range ranked {
		if _, seen := placesByTeam[r.Team]; !seen {
			teamOrder = append(teamOrder, r.Team)
		}
		placesByTeam[r.Team] = append(placesByTeam[r.Team], r.Place)
	}

	entries := make([]model.TeamScoreEntry, 0, len(teamOrder))
	for _, team := range teamOrder {
		places := placesByTeam[team]
		if len(places) < cfg.scorers {
			continue // incomplete teams are not scored
		}

		scorers := places[:cfg.scorers]
		end := cfg.scorers + cfg.displacers
		if end > len(places) {
			end = len(places)
		}
		displacers := places[cfg.scorers:end]

		total := 0
		for _, p := range scorers {
			total += p
		}
		entries = append(entries, model.TeamScoreEntry{
			Team:       team,
			Scorers:    append([]int(nil), scorers...),
			Displacers: append([]int(nil), displacers...),
			Total:      total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total < entries[j].Total
		}
		for k := 0; k < cfg.displacers; k++ {
			a, b := displacerAt(entries[i], k), displacerAt(entries[j], k)
			if a != b {
				return a < b
			}
		}
		return false
	})
	return entries
}

// displacerAt returns the k-th displacer place, or an effectively
// infinite place when the team has none at that position.
func displacerAt(e model.TeamScoreEntry, k int) int {
	if k < len(e.Displacers) {
		return e.Displacers[k]
	}
	return math.MaxInt
}

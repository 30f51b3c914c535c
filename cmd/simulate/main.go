// Command simulate runs a synthetic race against an in-memory store
// and prints both reports. Useful for eyeballing the scoring engine
// without a real database or finish-line operator.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/raceday/finishline/internal/adapters/repository"
	"github.com/raceday/finishline/internal/app"
	"github.com/raceday/finishline/internal/domain/model"
	"github.com/raceday/finishline/pkg/logger"
)

func main() {
	teams := flag.Int("teams", 4, "number of teams")
	perTeam := flag.Int("runners", 7, "runners per team")
	unknowns := flag.Int("unknowns", 1, "unidentified finishers to inject")
	seed := flag.Int64("seed", 1, "shuffle seed")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn") // keep report output readable

	if err := run(context.Background(), *teams, *perTeam, *unknowns, *seed); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, teams, perTeam, unknowns int, seed int64) error {
	store := repository.NewMemoryStore()
	svc := app.New(store)

	roster := buildRoster(teams, perTeam)
	if err := svc.ImportRoster(ctx, roster); err != nil {
		return err
	}

	// Shuffle a finish order over the roster, with a few blank inputs
	// standing in for unidentified finishers.
	inputs := make([]string, 0, len(roster)+unknowns)
	for _, r := range roster {
		inputs = append(inputs, fmt.Sprintf("%d", r.Bib))
	}
	for i := 0; i < unknowns; i++ {
		inputs = append(inputs, "")
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(inputs), func(i, j int) {
		inputs[i], inputs[j] = inputs[j], inputs[i]
	})

	if err := svc.StartRace(ctx); err != nil {
		return err
	}
	for _, in := range inputs {
		if _, err := svc.Record(ctx, in); err != nil {
			return err
		}
	}
	if err := svc.StopRace(ctx); err != nil {
		return err
	}

	ranked, err := svc.Rank(ctx)
	if err != nil {
		return err
	}
	fmt.Println("=== Individual Results ===")
	for _, r := range ranked {
		fmt.Printf("%d. Bib: %d, Name: %s, Team: %s, Time: %.2fs\n",
			r.Place, r.Bib, r.Name, r.Team, r.Elapsed)
	}

	entries, err := svc.ScoreTeams(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\n=== Team Results ===")
	for i, e := range entries {
		fmt.Printf("%d. %s  scorers=%v  displacers=%v  total=%d\n",
			i+1, e.Team, e.Scorers, e.Displacers, e.Total)
	}
	return nil
}

// buildRoster generates bibs from 101 upward, one block per team.
func buildRoster(teams, perTeam int) []model.Runner {
	roster := make([]model.Runner, 0, teams*perTeam)
	bib := 101
	for t := 0; t < teams; t++ {
		team := fmt.Sprintf("Team %c", 'A'+t)
		for r := 0; r < perTeam; r++ {
			roster = append(roster, model.Runner{
				Bib:  bib,
				Name: fmt.Sprintf("Runner %d", bib),
				Team: team,
			})
			bib++
		}
	}
	return roster
}

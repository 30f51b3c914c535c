package console

import (
	"context"
	"fmt"
)

func (c *Console) showIndividual(ctx context.Context) {
	if !c.requireDatabase() {
		return
	}
	ranked, err := c.svc.Rank(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}

	fmt.Fprintln(c.out, "\n=== Individual Results ===")
	for _, r := range ranked {
		fmt.Fprintf(c.out, "%d. Bib: %d, Name: %s, Team: %s, Time: %.2fs\n",
			r.Place, r.Bib, r.Name, r.Team, r.Elapsed)
	}
}

func (c *Console) showTeams(ctx context.Context) {
	if !c.requireDatabase() {
		return
	}
	entries, err := c.svc.ScoreTeams(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}

	fmt.Fprintln(c.out, "\n=== Team Results (top 5 score, next 2 displace) ===")
	for _, e := range entries {
		fmt.Fprintf(c.out, "Team: %s\n", e.Team)
		fmt.Fprintf(c.out, "  Scorers (places): %v -> Total: %d\n", e.Scorers, e.Total)
		if len(e.Displacers) > 0 {
			fmt.Fprintf(c.out, "  Displacers (places): %v\n", e.Displacers)
		}
	}
}

func (c *Console) showRunners(ctx context.Context) {
	if !c.requireDatabase() {
		return
	}
	runners, err := c.svc.Runners(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}
	if len(runners) == 0 {
		fmt.Fprintln(c.out, "[INFO] No runners loaded.")
		return
	}

	fmt.Fprintln(c.out, "\n=== Runners by Team ===")
	currentTeam := ""
	for i, r := range runners {
		if i == 0 || r.Team != currentTeam {
			currentTeam = r.Team
			fmt.Fprintf(c.out, "\nTeam: %s\n", currentTeam)
		}
		fmt.Fprintf(c.out, "  Bib: %d | Name: %s\n", r.Bib, r.Name)
	}
}

// Package console implements the interactive menu shell around the
// timing service. All presentation lives here; the service surface
// stays the contractual core.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/raceday/finishline/internal/adapters/roster"
	"github.com/raceday/finishline/internal/app"
	"github.com/raceday/finishline/internal/domain/raceclock"
	"github.com/raceday/finishline/pkg/logger"
)

// OpenFunc opens a race database at path and returns the service bound
// to it plus a closer for the underlying store.
type OpenFunc func(path string) (*app.Service, func() error, error)

// NextPathFunc names a fresh race database under the data directory.
type NextPathFunc func() (string, error)

// Console drives the menu loop over an input stream and writer.
type Console struct {
	in      *bufio.Scanner
	out     io.Writer
	dataDir string
	open    OpenFunc
	next    NextPathFunc
	logger  logger.Logger

	svc    *app.Service
	closer func() error
	dbPath string
}

// Option applies a configuration option to the Console.
type Option func(*Console)

// WithLogger sets a custom logger for the console.
func WithLogger(l logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a console shell reading from in and writing to out.
func New(in io.Reader, out io.Writer, dataDir string, open OpenFunc, next NextPathFunc, opts ...Option) *Console {
	c := &Console{
		in:      bufio.NewScanner(in),
		out:     out,
		dataDir: dataDir,
		open:    open,
		next:    next,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("console")
	}
	return c
}

// Attach binds an already-open service to the console, used when main
// opens a database from configuration before the menu starts.
func (c *Console) Attach(svc *app.Service, path string, closer func() error) {
	c.svc = svc
	c.dbPath = path
	c.closer = closer
}

// Run shows the menu until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	defer c.closeCurrent(ctx)

	for {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "=== Race Timing Menu ===")
		fmt.Fprintln(c.out, "1) Create new race database")
		fmt.Fprintln(c.out, "2) Load existing race database")
		fmt.Fprintln(c.out, "3) Import roster CSV")
		fmt.Fprintln(c.out, "4) Start race")
		fmt.Fprintln(c.out, "5) Show individual results")
		fmt.Fprintln(c.out, "6) Show team results")
		fmt.Fprintln(c.out, "7) Show all runners")
		fmt.Fprintln(c.out, "8) Quit")

		choice, ok := c.prompt("Select an option: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			c.newDatabase(ctx)
		case "2":
			c.loadDatabase(ctx)
		case "3":
			c.importRoster(ctx)
		case "4":
			c.startRace(ctx)
		case "5":
			c.showIndividual(ctx)
		case "6":
			c.showTeams(ctx)
		case "7":
			c.showRunners(ctx)
		case "8":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice.")
		}
	}
}

// prompt prints msg and reads one trimmed line. ok is false when the
// input stream has ended.
func (c *Console) prompt(msg string) (string, bool) {
	fmt.Fprint(c.out, msg)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) requireDatabase() bool {
	if c.svc == nil {
		fmt.Fprintln(c.out, "[ERROR] No database loaded. Create or load one first.")
		return false
	}
	return true
}

func (c *Console) closeCurrent(ctx context.Context) {
	if c.closer == nil {
		return
	}
	if err := c.closer(); err != nil {
		c.logger.Warn(ctx, "closing race database failed", logger.Error(err))
	}
	c.svc, c.closer, c.dbPath = nil, nil, ""
}

func (c *Console) openAt(ctx context.Context, path string) {
	svc, closer, err := c.open(path)
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}
	c.closeCurrent(ctx)
	c.svc, c.closer, c.dbPath = svc, closer, path
	fmt.Fprintf(c.out, "[INFO] Using database: %s\n", path)
}

func (c *Console) newDatabase(ctx context.Context) {
	path, err := c.next()
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}
	c.openAt(ctx, path)
}

func (c *Console) loadDatabase(ctx context.Context) {
	name, ok := c.prompt("Database filename in " + c.dataDir + ": ")
	if !ok || name == "" {
		return
	}
	c.openAt(ctx, filepath.Join(c.dataDir, name))
}

func (c *Console) importRoster(ctx context.Context) {
	if !c.requireDatabase() {
		return
	}
	name, ok := c.prompt("Roster CSV filename in " + c.dataDir + ": ")
	if !ok || name == "" {
		return
	}
	path := filepath.Join(c.dataDir, name)
	runners, err := roster.LoadFile(path)
	if err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}
	if err := c.svc.ImportRoster(ctx, runners); err != nil {
		fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "[INFO] Loaded %d runners from %s\n", len(runners), path)
}

// startRace starts the clock and drops into live input mode until the
// operator types exit.
func (c *Console) startRace(ctx context.Context) {
	if !c.requireDatabase() {
		return
	}
	if err := c.svc.StartRace(ctx); err != nil {
		switch {
		case errors.Is(err, raceclock.ErrAlreadyRunning):
			fmt.Fprintln(c.out, "[INFO] Race is already running.")
		case errors.Is(err, raceclock.ErrInvalidTransition):
			fmt.Fprintln(c.out, "[ERROR] This race has finished; create a new database for the next one.")
		default:
			fmt.Fprintf(c.out, "[ERROR] %v\n", err)
		}
		return
	}

	fmt.Fprintln(c.out, "[INPUT] Race is active. Enter a bib number, or press Enter for an unknown finisher.")
	fmt.Fprintln(c.out, "Type 'exit' to stop the race and return to the menu.")
	c.liveInput(ctx)
}

func (c *Console) liveInput(ctx context.Context) {
	for c.svc.ClockState() == raceclock.Running {
		raw, ok := c.prompt("> ")
		if !ok || strings.EqualFold(raw, "exit") {
			if err := c.svc.StopRace(ctx); err != nil {
				fmt.Fprintf(c.out, "[ERROR] %v\n", err)
			} else {
				fmt.Fprintln(c.out, "[INFO] Race stopped. Returning to menu.")
			}
			return
		}

		ev, err := c.svc.Record(ctx, raw)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrInvalidBib):
				fmt.Fprintln(c.out, "[ERROR] Invalid bib number.")
			case errors.Is(err, app.ErrRaceNotActive):
				fmt.Fprintln(c.out, "[WARNING] Cannot record result: race is not active.")
				return
			default:
				fmt.Fprintf(c.out, "[ERROR] %v\n", err)
			}
			continue
		}

		display := raw
		if ev.Unknown() {
			display = "UNKNOWN"
		}
		fmt.Fprintf(c.out, "[RESULT] Bib %s finished in %.2fs\n", display, ev.Elapsed)
	}
}

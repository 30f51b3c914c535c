// Command finishline is the interactive race timing console.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raceday/finishline/internal/adapters/chime"
	"github.com/raceday/finishline/internal/adapters/console"
	"github.com/raceday/finishline/internal/adapters/repository"
	"github.com/raceday/finishline/internal/adapters/roster"
	"github.com/raceday/finishline/internal/app"
	"github.com/raceday/finishline/internal/config"
	"github.com/raceday/finishline/pkg/logger"
	"github.com/raceday/finishline/pkg/metrics"
)

// Metrics listener timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	dataDirMode       = 0o755
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := os.MkdirAll(cfg.DataDir, dataDirMode); err != nil {
		log.Fatal(ctx, "creating data directory failed", logger.String("dir", cfg.DataDir), logger.Error(err))
	}

	// Optional Prometheus exposition listener.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	var bell chime.Chime = chime.Noop{}
	if cfg.Chime {
		bell = chime.NewBell()
	}

	openRace := func(path string) (*app.Service, func() error, error) {
		store, err := repository.Open(path)
		if err != nil {
			return nil, nil, err
		}
		svc := app.New(store,
			app.WithChime(bell),
			app.WithTeamScorers(cfg.TeamScorers),
			app.WithTeamDisplacers(cfg.TeamDisplacers),
		)
		if err := svc.RestoreDirectory(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		log.Info(ctx, "race database open",
			logger.String("path", path),
			logger.String("race_id", store.RaceID()),
		)
		return svc, store.Close, nil
	}
	nextPath := func() (string, error) {
		return repository.NextDatabasePath(cfg.DataDir)
	}

	shell := console.New(os.Stdin, os.Stdout, cfg.DataDir, openRace, nextPath)

	// Resume a database named in configuration before the menu starts.
	if cfg.RaceDB != "" {
		path := filepath.Join(cfg.DataDir, cfg.RaceDB)
		svc, closer, err := openRace(path)
		if err != nil {
			log.Fatal(ctx, "opening configured race database failed", logger.String("path", path), logger.Error(err))
		}
		if cfg.RosterFile != "" {
			runners, err := roster.LoadFile(filepath.Join(cfg.DataDir, cfg.RosterFile))
			if err != nil {
				log.Fatal(ctx, "loading configured roster failed", logger.Error(err))
			}
			if err := svc.ImportRoster(ctx, runners); err != nil {
				log.Fatal(ctx, "importing configured roster failed", logger.Error(err))
			}
		}
		shell.Attach(svc, path, closer)
	}

	if err := shell.Run(ctx); err != nil {
		log.Error(ctx, "console exited with error", logger.Error(err))
	}
}

// serveMetrics exposes the custom registry until ctx is canceled.
func serveMetrics(ctx context.Context, addr string) {
	log := logger.Named("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "metrics listener starting", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics listener failed", logger.Error(err))
	}
}

// Command quoter replays recorded tick sessions through the quote engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/engine"
	"github.com/coachpo/quoter/internal/logging"
	"github.com/coachpo/quoter/internal/snapshot"
	"github.com/coachpo/quoter/internal/telemetry"
)

const (
	defaultConfigPath        = "config/quoter.yaml"
	defaultOutDir            = "out"
	telemetryShutdownTimeout = 5 * time.Second
)

type options struct {
	configPath string
	stateDir   string
	outDir     string
	workers    int
	sessions   []string
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to quoter YAML configuration")
	flag.StringVar(&opts.stateDir, "state-dir", "", "Directory for persisted state blobs (in-memory when empty)")
	flag.StringVar(&opts.outDir, "out-dir", defaultOutDir, "Directory receiving <session>.orders.jsonl files")
	flag.IntVar(&opts.workers, "workers", 4, "Maximum sessions replayed concurrently")
	flag.Parse()
	opts.sessions = flag.Args()
	return opts
}

func main() {
	opts := parseFlags()
	if len(opts.sessions) == 0 {
		fmt.Fprintln(os.Stderr, "usage: quoter [flags] session.jsonl [session.jsonl ...]")
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "quoter: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logging.SetLogger(logger)

	meterProvider, shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialise telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer shutdownCancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	eng, err := engine.New(cfg, engine.WithMeterProvider(meterProvider))
	if err != nil {
		return err
	}

	store, err := newStore(opts.stateDir)
	if err != nil {
		return err
	}

	logger.Info("replaying sessions",
		zap.Int("sessions", len(opts.sessions)),
		zap.Int("instruments", len(cfg.Instruments)),
		zap.String("out_dir", opts.outDir))

	summaries, err := runSessions(ctx, eng, store, opts.sessions, opts.outDir, opts.workers, logger)
	for _, s := range summaries {
		logger.Info("session finished",
			zap.String("session", s.Session),
			zap.Int("ticks", s.Ticks),
			zap.Int("orders", s.Orders),
			zap.String("output", s.Output))
	}
	return err
}

func newStore(stateDir string) (snapshot.Store, error) {
	if stateDir == "" {
		return snapshot.NewMemoryStore(), nil
	}
	store, err := snapshot.NewFileStore(stateDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

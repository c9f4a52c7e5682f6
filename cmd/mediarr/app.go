package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vmunix/mediarr/internal/analysis"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/database"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/organizer"
	"github.com/vmunix/mediarr/internal/scanner"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/internal/torrent"
	"github.com/vmunix/mediarr/internal/workqueue"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	bus      *events.Bus
	eventLog *events.EventLog

	library  *library.Store
	torrents *torrent.Store

	cache     *metadata.Cache
	meta      metadata.Service
	pipeline  *analysis.Pipeline
	analysis  *workqueue.Queue[analysis.Job]
	scanner   *scanner.Scanner
	organizer *organizer.FS
	client    torrent.Client
	processor *torrent.Processor
}

// loadConfig loads the --config file, or the discovered one. Without any
// config file the defaults are used.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return wire(cfg)
}

// wire opens the database and builds every component the config enables.
func wire(cfg *config.Config) (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		eventLog: events.NewEventLog(db),
		library:  library.NewStore(db),
		torrents: torrent.NewStore(db),
		cache:    metadata.NewCache(db),
	}
	a.bus = events.NewBus(a.eventLog, logger.With("component", "bus"))

	if cfg.Metadata.TMDBAPIKey != "" {
		a.meta = metadata.NewTMDBService(
			tmdb.NewClient(cfg.Metadata.TMDBAPIKey),
			a.cache,
			cfg.Metadata.CacheTTL,
			a.library,
			logger,
		)
	}

	a.pipeline = analysis.NewPipeline(a.library, analysis.NewFFprobe(cfg.Analysis.FFprobePath), a.bus, logger)
	a.analysis = workqueue.New[analysis.Job]("analysis", workqueue.Config{
		MaxConcurrent: cfg.Analysis.Concurrency,
		Backlog:       cfg.Analysis.Backlog,
		Delay:         cfg.Analysis.Delay,
	}, a.pipeline, logger)

	a.scanner = scanner.New(a.library, a.meta, a.analysis, a.bus, scanner.Config{
		Concurrency:   cfg.Metadata.Concurrency,
		ChunkDelay:    cfg.Metadata.ChunkDelay,
		ProgressEvery: cfg.Scanner.ProgressEvery,
	}, logger)

	a.organizer = organizer.New(a.library, organizer.Config{
		Action: organizer.Action(cfg.Organizer.Action),
		DryRun: cfg.Organizer.DryRun,
	}, logger)

	if qb := cfg.Torrents.QBittorrent; qb != nil {
		a.client = torrent.NewQBittorrent(qb.URL, qb.Username, qb.Password)
		a.processor = torrent.NewProcessor(torrent.Deps{
			Torrents:  a.torrents,
			Library:   a.library,
			Client:    a.client,
			Metadata:  a.meta,
			Organizer: a.organizer,
			Analysis:  a.analysis,
			Bus:       a.bus,
		}, logger)
	}
	return a, nil
}

func (a *app) requireTorrents() error {
	if a.processor == nil {
		return fmt.Errorf("torrents.qbittorrent is not configured")
	}
	return nil
}

// close releases the bus and the database.
func (a *app) close() {
	_ = a.bus.Close()
	_ = a.db.Close()
}

// runAnalysis starts the analysis queue for a one-shot command and returns
// a function that drains it.
func (a *app) runAnalysis(ctx context.Context) func() {
	h := a.analysis.Start(ctx)
	return func() {
		if dropped := h.Drain(ctx); dropped > 0 {
			a.logger.Warn("analysis jobs dropped", "count", dropped)
		}
		st := a.analysis.Stats()
		a.logger.Info("analysis queue drained",
			"processed", st.Processed,
			"failed", st.Failed,
			"rejected", st.Rejected)
	}
}

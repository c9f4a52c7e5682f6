package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/service"
	"github.com/vmunix/mediarr/internal/torrent"
	"github.com/vmunix/mediarr/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background services until interrupted",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildServices returns the services in start order.
func buildServices(a *app) []service.Service {
	services := []service.Service{
		service.Queue(a.analysis),
		service.Named("housekeeping", newHousekeeper(a.cache, a.eventLog, a.logger)),
	}

	if a.processor != nil {
		processQueue := newProcessQueue(a)
		syncer := torrent.NewSyncer(a.torrents, a.client, a.bus, processQueue, a.cfg.Torrents.SyncInterval, a.logger)
		sweeper := torrent.NewSweeper(a.torrents, a.processor, a.cfg.Torrents.SweepSchedule, a.logger)
		services = append(services,
			service.Queue(processQueue),
			service.Syncer(syncer),
			service.Named("torrent-sweep", sweeper),
		)
	}

	if a.cfg.Watcher.Enabled {
		w := watcher.New(a.library, a.scanner, a.cfg.Watcher.Debounce, a.logger)
		services = append(services, service.Named("watcher", w))
	}
	return services
}

// resetInterrupted requeues torrents whose processing was cut short by a
// previous shutdown or crash.
func resetInterrupted(a *app) error {
	n, err := a.torrents.ResetInterrupted()
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.Info("requeued interrupted torrents", "count", n)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := resetInterrupted(a); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := service.NewManager(a.logger, buildServices(a)...)
	a.logger.Info("mediarr starting",
		"version", version,
		"database", a.cfg.Database.Path,
		"services", manager.Names(),
		"tmdb", a.meta != nil,
		"qbittorrent", a.client != nil,
	)

	if err := service.NewRunner(manager, a.bus, a.logger).Run(ctx); err != nil {
		return err
	}
	a.logger.Info("mediarr stopped")
	return nil
}

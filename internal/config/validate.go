package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validActions = map[string]bool{
	"move": true, "copy": true, "hardlink": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	if c.Metadata.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("metadata.concurrency: must be at least 1, got %d", c.Metadata.Concurrency))
	}
	if c.Metadata.ChunkDelay < 0 {
		errs = append(errs, "metadata.chunk_delay: must not be negative")
	}

	if c.Analysis.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("analysis.concurrency: must be at least 1, got %d", c.Analysis.Concurrency))
	}
	if c.Analysis.Backlog < 1 {
		errs = append(errs, fmt.Sprintf("analysis.backlog: must be at least 1, got %d", c.Analysis.Backlog))
	}
	if c.Analysis.Delay < 0 {
		errs = append(errs, "analysis.delay: must not be negative")
	}

	if c.Scanner.ProgressEvery < 1 {
		errs = append(errs, fmt.Sprintf("scanner.progress_every: must be at least 1, got %d", c.Scanner.ProgressEvery))
	}

	if qb := c.Torrents.QBittorrent; qb != nil {
		if qb.URL == "" {
			errs = append(errs, "torrents.qbittorrent.url: required when qbittorrent is configured")
		} else if u, err := url.Parse(qb.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("torrents.qbittorrent.url: invalid URL %q", qb.URL))
		}
	}
	if c.Torrents.SyncInterval < 0 {
		errs = append(errs, "torrents.sync_interval: must not be negative")
	}
	if _, err := cron.ParseStandard(c.Torrents.SweepSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("torrents.sweep_schedule: %v", err))
	}

	if !validActions[c.Organizer.Action] {
		errs = append(errs, fmt.Sprintf("organizer.action: must be one of move, copy, hardlink; got %q", c.Organizer.Action))
	}

	return errs
}

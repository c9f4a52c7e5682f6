package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "./data/mediarr.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Metadata.Concurrency)
	assert.Equal(t, time.Second, cfg.Metadata.ChunkDelay)
	assert.Equal(t, 24*time.Hour, cfg.Metadata.CacheTTL)
	assert.Equal(t, "ffprobe", cfg.Analysis.FFprobePath)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, 1000, cfg.Analysis.Backlog)
	assert.Zero(t, cfg.Analysis.Delay)
	assert.Equal(t, 10, cfg.Scanner.ProgressEvery)
	assert.Equal(t, 10*time.Second, cfg.Torrents.SyncInterval)
	assert.Equal(t, "@every 15m", cfg.Torrents.SweepSchedule)
	assert.Equal(t, int64(1), cfg.Torrents.UserID)
	assert.Nil(t, cfg.Torrents.QBittorrent)
	assert.Equal(t, "move", cfg.Organizer.Action)
	assert.Equal(t, 2*time.Second, cfg.Watcher.Debounce)
}

func TestLoad_AllSections(t *testing.T) {
	t.Setenv("MEDIARR_TEST_TMDB", "tmdb-key")
	cfg, err := Load(writeConfig(t, `
[server]
log_level = "debug"

[database]
path = "/var/lib/mediarr/db.sqlite"

[metadata]
tmdb_api_key = "${MEDIARR_TEST_TMDB}"
concurrency = 5
chunk_delay = "250ms"
cache_ttl = "1h"

[analysis]
ffprobe_path = "/usr/bin/ffprobe"
concurrency = 4
backlog = 50
delay = "100ms"

[scanner]
progress_every = 25

[torrents]
sync_interval = "5s"
sweep_schedule = "*/10 * * * *"
user_id = 7

[torrents.qbittorrent]
url = "http://qbit:8080"
username = "admin"
password = "secret"

[organizer]
action = "hardlink"
dry_run = true

[watcher]
enabled = true
debounce = "500ms"
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/mediarr/db.sqlite", cfg.Database.Path)
	assert.Equal(t, "tmdb-key", cfg.Metadata.TMDBAPIKey)
	assert.Equal(t, 5, cfg.Metadata.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Metadata.ChunkDelay)
	assert.Equal(t, time.Hour, cfg.Metadata.CacheTTL)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, 50, cfg.Analysis.Backlog)
	assert.Equal(t, 100*time.Millisecond, cfg.Analysis.Delay)
	assert.Equal(t, 25, cfg.Scanner.ProgressEvery)
	assert.Equal(t, 5*time.Second, cfg.Torrents.SyncInterval)
	assert.Equal(t, int64(7), cfg.Torrents.UserID)
	require.NotNil(t, cfg.Torrents.QBittorrent)
	assert.Equal(t, "http://qbit:8080", cfg.Torrents.QBittorrent.URL)
	assert.Equal(t, "hardlink", cfg.Organizer.Action)
	assert.True(t, cfg.Organizer.DryRun)
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.Debounce)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, "./data/mediarr.db", cfg.Database.Path)
}

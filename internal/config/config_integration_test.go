package config

import (
	"path/filepath"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "mediarr", "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	t.Setenv("QBITTORRENT_PASSWORD", "test-password")
	t.Setenv("TMDB_API_KEY", "test-tmdb-key")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Torrents.QBittorrent == nil || cfg.Torrents.QBittorrent.Password != "test-password" {
		t.Errorf("expected qbittorrent password substituted, got %+v", cfg.Torrents.QBittorrent)
	}
	if cfg.Metadata.TMDBAPIKey != "test-tmdb-key" {
		t.Errorf("expected tmdb key substituted, got %q", cfg.Metadata.TMDBAPIKey)
	}
	if cfg.Scanner.ProgressEvery != 10 {
		t.Errorf("expected progress_every 10, got %d", cfg.Scanner.ProgressEvery)
	}
}

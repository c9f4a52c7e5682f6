// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Metadata  MetadataConfig  `toml:"metadata"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Scanner   ScannerConfig   `toml:"scanner"`
	Torrents  TorrentsConfig  `toml:"torrents"`
	Organizer OrganizerConfig `toml:"organizer"`
	Watcher   WatcherConfig   `toml:"watcher"`
}

type ServerConfig struct {
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type MetadataConfig struct {
	TMDBAPIKey  string        `toml:"tmdb_api_key"`
	Concurrency int           `toml:"concurrency"`
	ChunkDelay  time.Duration `toml:"chunk_delay"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
}

type AnalysisConfig struct {
	FFprobePath string        `toml:"ffprobe_path"`
	Concurrency int           `toml:"concurrency"`
	Backlog     int           `toml:"backlog"`
	Delay       time.Duration `toml:"delay"`
}

type ScannerConfig struct {
	ProgressEvery int `toml:"progress_every"`
}

type TorrentsConfig struct {
	QBittorrent   *QBittorrentConfig `toml:"qbittorrent"`
	SyncInterval  time.Duration      `toml:"sync_interval"`
	SweepSchedule string             `toml:"sweep_schedule"`
	UserID        int64              `toml:"user_id"`
}

type QBittorrentConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type OrganizerConfig struct {
	Action string `toml:"action"`
	DryRun bool   `toml:"dry_run"`
}

type WatcherConfig struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are returned
// together as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads the configuration but skips Validate.
// Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}
	return cfg, nil
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/mediarr.db"
	}
	if c.Metadata.Concurrency == 0 {
		c.Metadata.Concurrency = 3
	}
	if c.Metadata.ChunkDelay == 0 {
		c.Metadata.ChunkDelay = time.Second
	}
	if c.Metadata.CacheTTL == 0 {
		c.Metadata.CacheTTL = 24 * time.Hour
	}
	if c.Analysis.FFprobePath == "" {
		c.Analysis.FFprobePath = "ffprobe"
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = 2
	}
	if c.Analysis.Backlog == 0 {
		c.Analysis.Backlog = 1000
	}
	if c.Scanner.ProgressEvery == 0 {
		c.Scanner.ProgressEvery = 10
	}
	if c.Torrents.SyncInterval == 0 {
		c.Torrents.SyncInterval = 10 * time.Second
	}
	if c.Torrents.SweepSchedule == "" {
		c.Torrents.SweepSchedule = "@every 15m"
	}
	if c.Torrents.UserID == 0 {
		c.Torrents.UserID = 1
	}
	if c.Organizer.Action == "" {
		c.Organizer.Action = "move"
	}
	if c.Watcher.Debounce == 0 {
		c.Watcher.Debounce = 2 * time.Second
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment references with their values.
// Unresolved references are left in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}

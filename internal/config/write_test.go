package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "mediarr", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	assert.Contains(t, string(content), "[server]")
	assert.Contains(t, string(content), "[torrents.qbittorrent]")
	assert.Contains(t, string(content), "${QBITTORRENT_PASSWORD}")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "deep", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	_, err = os.Stat(path)
	assert.False(t, os.IsNotExist(err), "file was not created")
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/srv/mediarr.db"
	cfg.Organizer.Action = "copy"
	cfg.Watcher.Debounce = 3 * time.Second

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mediarr.db", loaded.Database.Path)
	assert.Equal(t, "copy", loaded.Organizer.Action)
	assert.Equal(t, 3*time.Second, loaded.Watcher.Debounce)
}

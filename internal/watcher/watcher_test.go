package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/database"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScanner struct {
	mu    sync.Mutex
	calls []int64
	ch    chan int64
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{ch: make(chan int64, 16)}
}

func (f *fakeScanner) ScanLibrary(_ context.Context, id int64) (*events.ScanProgress, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	f.ch <- id
	return &events.ScanProgress{LibraryID: id, IsComplete: true}, nil
}

func (f *fakeScanner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setup(t *testing.T, autoScan bool) (*library.Store, *library.Library) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := library.NewStore(db)

	lib := &library.Library{Name: "TV", Path: t.TempDir(), Type: library.TypeTV, AutoScan: autoScan}
	require.NoError(t, store.AddLibrary(lib))
	return store, lib
}

func startWatcher(t *testing.T, store *library.Store, scanner Scanner) *Watcher {
	t.Helper()
	w := New(store, scanner, 100*time.Millisecond, testLogger())
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop(context.Background()) })
	return w
}

func waitScan(t *testing.T, s *fakeScanner) int64 {
	t.Helper()
	select {
	case id := <-s.ch:
		return id
	case <-time.After(3 * time.Second):
		t.Fatal("no scan triggered")
		return 0
	}
}

func TestWatcher_NewFileTriggersDebouncedScan(t *testing.T) {
	store, lib := setup(t, true)
	scanner := newFakeScanner()
	startWatcher(t, store, scanner)

	for _, name := range []string{"a.S01E01.mkv", "a.S01E02.mkv", "a.S01E03.mkv"} {
		require.NoError(t, os.WriteFile(filepath.Join(lib.Path, name), []byte("x"), 0o644))
	}

	assert.Equal(t, lib.ID, waitScan(t, scanner))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, scanner.count())
}

func TestWatcher_IgnoresNonMediaFiles(t *testing.T) {
	store, lib := setup(t, true)
	scanner := newFakeScanner()
	startWatcher(t, store, scanner)

	require.NoError(t, os.WriteFile(filepath.Join(lib.Path, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib.Path, "movie.mkv.part"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib.Path, ".hidden.mkv"), []byte("x"), 0o644))

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, scanner.count())
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	store, lib := setup(t, true)
	scanner := newFakeScanner()
	startWatcher(t, store, scanner)

	dir := filepath.Join(lib.Path, "Show", "Season 01")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	waitScan(t, scanner)

	n := 0
	require.Eventually(t, func() bool {
		n++
		name := filepath.Join(dir, fmt.Sprintf("Show.S01E%02d.mkv", n))
		_ = os.WriteFile(name, []byte("x"), 0o644)
		select {
		case <-scanner.ch:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcher_SkipsLibrariesWithoutAutoScan(t *testing.T) {
	store, lib := setup(t, false)
	scanner := newFakeScanner()
	w := startWatcher(t, store, scanner)

	require.NoError(t, os.WriteFile(filepath.Join(lib.Path, "a.S01E01.mkv"), []byte("x"), 0o644))
	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, scanner.count())

	lib.AutoScan = true
	require.NoError(t, store.UpdateLibrary(lib))
	require.NoError(t, w.Refresh())

	require.NoError(t, os.Remove(filepath.Join(lib.Path, "a.S01E01.mkv")))
	assert.Equal(t, lib.ID, waitScan(t, scanner))
}

func TestWatcher_StartStopHealth(t *testing.T) {
	store, _ := setup(t, true)
	w := New(store, newFakeScanner(), 0, testLogger())
	assert.Error(t, w.Health(context.Background()))

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Health(context.Background()))

	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
	assert.Error(t, w.Health(context.Background()))
}

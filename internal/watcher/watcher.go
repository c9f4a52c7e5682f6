// Package watcher rescans auto-scan libraries when files appear or vanish
// under their roots.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
)

// DefaultDebounce is how long a library must be quiet before it is rescanned.
const DefaultDebounce = 2 * time.Second

// Scanner runs a library scan.
type Scanner interface {
	ScanLibrary(ctx context.Context, libraryID int64) (*events.ScanProgress, error)
}

// Watcher monitors auto-scan library roots.
type Watcher struct {
	store    *library.Store
	scanner  Scanner
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	fw       *fsnotify.Watcher
	roots    map[int64]string // library ID -> root
	watched  map[string]int64 // directory -> library ID
	timers   map[int64]*time.Timer
	scanning map[int64]bool
	dirty    map[int64]bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a watcher. A zero debounce uses DefaultDebounce.
func New(store *library.Store, scanner Scanner, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    store,
		scanner:  scanner,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
	}
}

// Start watches every auto-scan library and begins handling events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	w.fw = fw
	w.roots = make(map[int64]string)
	w.watched = make(map[string]int64)
	w.timers = make(map[int64]*time.Timer)
	w.scanning = make(map[int64]bool)
	w.dirty = make(map[int64]bool)
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if err := w.refreshLocked(); err != nil {
		w.cancel()
		_ = fw.Close()
		w.fw = nil
		return err
	}

	w.wg.Add(1)
	go w.loop(fw)
	w.logger.Info("watcher started", "libraries", len(w.roots), "directories", len(w.watched))
	return nil
}

// Stop stops watching, cancels running scans and waits for them to return.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	fw := w.fw
	if fw == nil {
		w.mu.Unlock()
		return nil
	}
	w.fw = nil
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
	w.cancel()
	w.mu.Unlock()

	err := fw.Close()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Health reports whether the watcher is running.
func (w *Watcher) Health(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil {
		return errors.New("watcher not running")
	}
	return nil
}

// Refresh reloads the set of auto-scan libraries.
func (w *Watcher) Refresh() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil {
		return nil
	}
	return w.refreshLocked()
}

func (w *Watcher) refreshLocked() error {
	autoScan := true
	libs, err := w.store.ListLibraries(library.LibraryFilter{AutoScan: &autoScan})
	if err != nil {
		return fmt.Errorf("list auto-scan libraries: %w", err)
	}

	desired := make(map[int64]string, len(libs))
	for _, lib := range libs {
		desired[lib.ID] = filepath.Clean(lib.Path)
	}

	for dir, id := range w.watched {
		if root, ok := desired[id]; !ok || root != w.roots[id] {
			_ = w.fw.Remove(dir)
			delete(w.watched, dir)
		}
	}
	for id, root := range desired {
		if w.roots[id] == root && w.watched[root] == id {
			continue
		}
		w.roots[id] = root
		w.addTree(root, id)
	}
	for id := range w.roots {
		if _, ok := desired[id]; !ok {
			delete(w.roots, id)
		}
	}
	return nil
}

// addTree watches root and every directory below it. Unreadable
// directories are skipped.
func (w *Watcher) addTree(root string, libraryID int64) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping directory", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		w.watched[path] = libraryID
		return nil
	})
}

func (w *Watcher) loop(fw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	created := event.Has(fsnotify.Create)
	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !created && !removed {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil {
		return
	}

	if created {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if id, ok := w.libraryFor(event.Name); ok {
				w.addTree(event.Name, id)
				w.scheduleLocked(id)
			}
			return
		}
	}
	if removed {
		if id, ok := w.watched[event.Name]; ok {
			delete(w.watched, event.Name)
			w.scheduleLocked(id)
			return
		}
	}

	if library.IsIgnoredFile(event.Name) {
		return
	}
	if !library.IsVideoFile(event.Name) && !library.IsAudioFile(event.Name) {
		return
	}
	if id, ok := w.libraryFor(event.Name); ok {
		w.scheduleLocked(id)
	}
}

// libraryFor walks up from path to the nearest watched directory.
func (w *Watcher) libraryFor(path string) (int64, bool) {
	dir := filepath.Dir(path)
	for {
		if id, ok := w.watched[dir]; ok {
			return id, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return 0, false
		}
		dir = parent
	}
}

// scheduleLocked (re)arms the library's debounce timer.
func (w *Watcher) scheduleLocked(libraryID int64) {
	if t, ok := w.timers[libraryID]; ok {
		t.Stop()
	}
	w.timers[libraryID] = time.AfterFunc(w.debounce, func() { w.fire(libraryID) })
}

// fire starts a scan unless one is already running, in which case the
// library is rescanned once the current scan finishes.
func (w *Watcher) fire(libraryID int64) {
	w.mu.Lock()
	delete(w.timers, libraryID)
	if w.fw == nil {
		w.mu.Unlock()
		return
	}
	if w.scanning[libraryID] {
		w.dirty[libraryID] = true
		w.mu.Unlock()
		return
	}
	w.scanning[libraryID] = true
	ctx := w.ctx
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		for {
			w.scan(ctx, libraryID)

			w.mu.Lock()
			again := w.dirty[libraryID] && ctx.Err() == nil
			delete(w.dirty, libraryID)
			if !again {
				delete(w.scanning, libraryID)
			}
			w.mu.Unlock()
			if !again {
				return
			}
		}
	}()
}

func (w *Watcher) scan(ctx context.Context, libraryID int64) {
	log := w.logger.With("library_id", libraryID)
	log.Info("change detected, rescanning library")
	result, err := w.scanner.ScanLibrary(ctx, libraryID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("rescan failed", "error", err)
		}
		return
	}
	log.Info("rescan finished",
		"new_files", result.NewFiles,
		"removed_files", result.RemovedFiles,
		"errors", result.Errors)
}

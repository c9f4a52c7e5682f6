// Package scanner discovers media files in a library, links them to the
// catalog and queues them for analysis.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vmunix/mediarr/internal/analysis"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/matcher"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/pkg/release"
)

// ErrLibraryNotFound is returned when the scanned library does not exist.
var ErrLibraryNotFound = errors.New("library not found")

// Config tunes metadata pressure and progress reporting.
type Config struct {
	// Concurrency is the number of show groups resolved at once.
	Concurrency int
	// ChunkDelay is the pause between chunks of show groups.
	ChunkDelay time.Duration
	// ProgressEvery publishes a progress snapshot every N scanned files.
	ProgressEvery int
}

// DefaultConfig returns the scanner defaults.
func DefaultConfig() Config {
	return Config{Concurrency: 3, ChunkDelay: time.Second, ProgressEvery: 10}
}

// Scanner walks libraries and reconciles them with the database.
type Scanner struct {
	store    *library.Store
	meta     metadata.Service
	analysis analysis.Submitter
	bus      *events.Bus
	cfg      Config
	logger   *slog.Logger
}

// New creates a scanner. meta, submitter and bus may be nil.
func New(store *library.Store, meta metadata.Service, submitter analysis.Submitter, bus *events.Bus, cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = def.ProgressEvery
	}
	if cfg.ChunkDelay < 0 {
		cfg.ChunkDelay = 0
	}
	return &Scanner{
		store:    store,
		meta:     meta,
		analysis: submitter,
		bus:      bus,
		cfg:      cfg,
		logger:   logger.With("component", "scanner"),
	}
}

// scan is the state of one ScanLibrary call.
type scan struct {
	*Scanner
	lib  *library.Library
	prog *progress
	log  *slog.Logger
}

// ScanLibrary reconciles one library with its folder. Per-file and
// per-group failures are counted and logged; only a missing library or an
// unreadable root fail the scan. The returned snapshot is the final one.
func (s *Scanner) ScanLibrary(ctx context.Context, libraryID int64) (*events.ScanProgress, error) {
	lib, err := s.store.GetLibrary(libraryID)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("scan library %d: %w", libraryID, ErrLibraryNotFound)
	}
	if err != nil {
		return nil, err
	}

	sc := &scan{
		Scanner: s,
		lib:     lib,
		prog:    &progress{libraryID: lib.ID, libraryName: lib.Name},
		log:     s.logger.With("library_id", lib.ID, "library", lib.Name),
	}
	sc.log.Info("scan started", "path", lib.Path, "type", lib.Type)
	start := time.Now()

	files, err := discover(lib.Path, lib.Type)
	if err != nil {
		return nil, fmt.Errorf("scan library %d: %w", lib.ID, err)
	}
	sc.prog.total.Store(int64(len(files)))

	sc.removeMissing()

	switch lib.Type {
	case library.TypeTV:
		err = sc.scanTV(ctx, files)
	case library.TypeMovies:
		sc.scanMovies(ctx, files)
	default:
		for _, f := range files {
			sc.processUnlinked(f)
		}
	}

	if markErr := s.store.MarkLibraryScanned(lib.ID, time.Now()); markErr != nil {
		sc.log.Warn("failed to record scan time", "error", markErr)
	}

	final := sc.prog.snapshot(true)
	sc.publish(ctx, final)
	sc.log.Info("scan complete",
		"files", final.TotalFiles,
		"new", final.NewFiles,
		"removed", final.RemovedFiles,
		"shows_added", final.ShowsAdded,
		"episodes_linked", final.EpisodesLinked,
		"errors", final.Errors,
		"duration", time.Since(start))
	return final, err
}

// removeMissing deletes rows whose file no longer exists on disk.
func (sc *scan) removeMissing() {
	existing, _, err := sc.store.ListMediaFiles(library.MediaFileFilter{LibraryID: &sc.lib.ID})
	if err != nil {
		sc.log.Error("failed to list media files", "error", err)
		sc.prog.errors.Add(1)
		return
	}
	for _, f := range existing {
		if _, err := os.Stat(f.Path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := sc.store.DeleteMediaFile(f.ID); err != nil && !errors.Is(err, library.ErrNotFound) {
			sc.log.Warn("failed to remove missing file", "path", f.Path, "error", err)
			sc.prog.errors.Add(1)
			continue
		}
		sc.log.Debug("removed missing file", "path", f.Path)
		sc.prog.removed.Add(1)
	}
}

func (sc *scan) scanTV(ctx context.Context, files []*DiscoveredFile) error {
	groups, unlinked := groupByShow(files)
	for _, f := range unlinked {
		sc.processUnlinked(f)
	}

	sem := semaphore.NewWeighted(int64(sc.cfg.Concurrency))
	for start := 0; start < len(groups); start += sc.cfg.Concurrency {
		if start > 0 && sc.cfg.ChunkDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sc.cfg.ChunkDelay):
			}
		}
		end := min(start+sc.cfg.Concurrency, len(groups))

		var wg sync.WaitGroup
		for _, g := range groups[start:end] {
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				sc.processGroup(ctx, g)
			}()
		}
		wg.Wait()
	}
	return ctx.Err()
}

// processGroup resolves a show once and links every file of the group to it.
func (sc *scan) processGroup(ctx context.Context, g *showGroup) {
	show, err := sc.resolveShow(ctx, g)
	if err != nil {
		sc.log.Warn("show lookup failed", "show", g.name, "error", err)
		sc.prog.errors.Add(1)
	}
	if show == nil {
		for _, f := range g.files {
			sc.processUnlinked(f)
		}
		return
	}
	for _, f := range g.files {
		sc.processEpisode(show, f)
	}
}

// resolveShow finds the group's show in the library, or adds it from the
// metadata provider when the library allows it. A nil show means the
// group stays unlinked.
func (sc *scan) resolveShow(ctx context.Context, g *showGroup) (*library.TvShow, error) {
	shows, err := sc.store.ListShows(sc.lib.ID)
	if err != nil {
		return nil, err
	}
	if show := matcher.FindShow(shows, g.name); show != nil {
		return show, nil
	}
	if !sc.lib.AutoAddDiscovered || sc.meta == nil {
		return nil, nil
	}

	matches, err := sc.meta.SearchShows(ctx, metadata.ShowQuery{Name: g.name, Year: g.year})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 && g.year != 0 {
		matches, err = sc.meta.SearchShows(ctx, metadata.ShowQuery{Name: g.name})
		if err != nil {
			return nil, err
		}
	}
	if len(matches) == 0 {
		sc.log.Debug("no provider match", "show", g.name, "year", g.year)
		return nil, nil
	}

	hit := matches[0]
	existing, err := sc.store.GetShowByProvider(sc.lib.ID, metadata.ProviderTMDB, hit.ProviderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	show, err := sc.meta.AddTVShowFromProvider(ctx, metadata.AddShowOptions{
		LibraryID:  sc.lib.ID,
		ProviderID: hit.ProviderID,
		Name:       hit.Name,
		Year:       hit.Year,
	})
	if err != nil {
		return nil, err
	}
	sc.prog.showsAdded.Add(1)
	sc.log.Info("added show", "show", show.Name, "provider_id", hit.ProviderID)
	return show, nil
}

func (sc *scan) processEpisode(show *library.TvShow, f *DiscoveredFile) {
	defer sc.fileDone(f)

	ep, _, err := sc.store.FindOrCreateEpisode(show.ID, f.Info.Season, f.Info.Episode)
	if err != nil {
		sc.fail(f, "failed to resolve episode", err)
		return
	}
	if sc.link(f, library.EpisodeLink(ep.ID)) {
		sc.prog.episodesLinked.Add(1)
		if err := sc.store.UpdateEpisodeStatus(ep.ID, library.EpisodeDownloaded); err != nil {
			sc.log.Warn("failed to mark episode downloaded", "episode_id", ep.ID, "error", err)
		}
	}
}

func (sc *scan) scanMovies(ctx context.Context, files []*DiscoveredFile) {
	movies, err := sc.store.ListMovies(sc.lib.ID)
	if err != nil {
		sc.log.Error("failed to list movies", "error", err)
		sc.prog.errors.Add(1)
	}
	for _, f := range files {
		if ctx.Err() != nil {
			return
		}
		var movie *library.Movie
		if !f.Info.IsEpisode() {
			movie = matcher.FindMovie(movies, f.Info.Title, f.Info.Year)
		}
		if movie == nil {
			sc.processUnlinked(f)
			continue
		}
		if sc.link(f, library.MovieLink(movie.ID)) {
			if err := sc.store.UpdateMovieStatus(movie.ID, library.ItemDownloaded); err != nil {
				sc.log.Warn("failed to mark movie downloaded", "movie_id", movie.ID, "error", err)
			}
		}
		sc.fileDone(f)
	}
}

// link creates the file with the given link, or repairs the link of an
// existing unlinked row. It reports whether a link was established.
func (sc *scan) link(f *DiscoveredFile, l library.Link) bool {
	existing, err := sc.store.GetMediaFileByPath(f.Path)
	switch {
	case errors.Is(err, library.ErrNotFound):
		mf := sc.newMediaFile(f, l)
		if err := sc.store.CreateMediaFile(mf); err != nil {
			sc.fail(f, "failed to create media file", err)
			return false
		}
		sc.prog.newFiles.Add(1)
		sc.submit(mf)
		return true
	case err != nil:
		sc.fail(f, "failed to load media file", err)
		return false
	}

	if existing.Link.IsZero() {
		if err := sc.store.SetAutomaticLink(existing.ID, l); err != nil {
			if !errors.Is(err, library.ErrManualMatch) {
				sc.fail(f, "failed to repair link", err)
			}
			return false
		}
		sc.log.Debug("repaired link", "path", f.Path)
		if existing.AnalyzedAt == nil {
			sc.submit(existing)
		}
		return true
	}
	if existing.AnalyzedAt == nil {
		sc.submit(existing)
	}
	return false
}

// processUnlinked records a file without a catalog link.
func (sc *scan) processUnlinked(f *DiscoveredFile) {
	defer sc.fileDone(f)

	existing, err := sc.store.GetMediaFileByPath(f.Path)
	if err == nil {
		if existing.AnalyzedAt == nil {
			sc.submit(existing)
		}
		return
	}
	if !errors.Is(err, library.ErrNotFound) {
		sc.fail(f, "failed to load media file", err)
		return
	}

	mf := sc.newMediaFile(f, library.Link{})
	if err := sc.store.CreateMediaFile(mf); err != nil {
		sc.fail(f, "failed to create media file", err)
		return
	}
	sc.prog.newFiles.Add(1)
	sc.submit(mf)
}

func (sc *scan) newMediaFile(f *DiscoveredFile, l library.Link) *library.MediaFile {
	mf := &library.MediaFile{
		LibraryID:    sc.lib.ID,
		Path:         f.Path,
		RelativePath: f.RelativePath,
		OriginalName: f.Name,
		SizeBytes:    f.Size,
		ReleaseGroup: f.Info.Group,
		Link:         l,
	}
	if f.Info.Source != release.SourceUnknown {
		mf.Source = f.Info.Source.String()
	}
	return mf
}

func (sc *scan) submit(mf *library.MediaFile) {
	if sc.analysis == nil {
		return
	}
	if err := sc.analysis.Submit(analysis.Job{MediaFileID: mf.ID, Path: mf.Path}); err != nil {
		sc.log.Warn("analysis not queued", "path", mf.Path, "error", err)
	}
}

func (sc *scan) fail(f *DiscoveredFile, msg string, err error) {
	sc.log.Warn(msg, "path", f.Path, "error", err)
	sc.prog.errors.Add(1)
}

// fileDone counts a processed file and publishes a snapshot every
// ProgressEvery files.
func (sc *scan) fileDone(f *DiscoveredFile) {
	sc.prog.setCurrent(f.Path)
	n := sc.prog.scanned.Add(1)
	if n%int64(sc.cfg.ProgressEvery) == 0 {
		snap := sc.prog.snapshot(false)
		sc.log.Debug("scan progress", "scanned", snap.ScannedFiles, "total", snap.TotalFiles)
		sc.publish(context.Background(), snap)
	}
}

func (sc *scan) publish(ctx context.Context, e *events.ScanProgress) {
	if sc.bus == nil {
		return
	}
	if err := sc.bus.Publish(ctx, e); err != nil {
		sc.log.Warn("failed to publish scan progress", "error", err)
	}
}

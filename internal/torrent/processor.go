package torrent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/vmunix/mediarr/internal/analysis"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/organizer"
)

// Deps are the collaborators of a Processor. Metadata, Organizer, Analysis
// and Bus may be nil.
type Deps struct {
	Torrents  *Store
	Library   *library.Store
	Client    Client
	Metadata  metadata.Service
	Organizer organizer.Service
	Analysis  analysis.Submitter
	Bus       *events.Bus
}

// Processor post-processes completed torrents: it matches their files to the
// catalog, records them as media files, queues analysis and organizes TV
// episodes.
type Processor struct {
	torrents *Store
	library  *library.Store
	client   Client
	meta     metadata.Service
	org      organizer.Service
	analysis analysis.Submitter
	bus      *events.Bus
	logger   *slog.Logger
}

// NewProcessor creates a torrent processor.
func NewProcessor(deps Deps, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		torrents: deps.Torrents,
		library:  deps.Library,
		client:   deps.Client,
		meta:     deps.Metadata,
		org:      deps.Organizer,
		analysis: deps.Analysis,
		bus:      deps.Bus,
		logger:   logger.With("component", "torrent-processor"),
	}
}

// run carries the state of one Process call.
type run struct {
	t         *Torrent
	res       *Result
	tvMatches int
	organized int
}

// Process runs post-processing for one torrent. Only a missing torrent or a
// refused status transition is returned as an error; everything else ends
// up in the torrent's status and the result's messages.
func (p *Processor) Process(ctx context.Context, torrentID int64) (*Result, error) {
	t, err := p.torrents.Get(torrentID)
	if err != nil {
		return nil, err
	}
	if err := p.torrents.Transition(t.ID, t.PostProcessStatus, StatusProcessing); err != nil {
		return nil, err
	}
	log := p.logger.With("torrent_id", t.ID, "torrent", t.Name)
	log.Info("processing torrent")

	r := &run{t: t, res: &Result{Success: true}}

	files, err := p.client.Files(ctx, t.InfoHash)
	if err != nil {
		r.res.Success = false
		r.res.addf("list files: " + err.Error())
		return p.finish(ctx, r, StatusError, err.Error(), log)
	}

	media := mediaFiles(files)
	if len(media) == 0 {
		r.res.addf("no media files in torrent")
		return p.finish(ctx, r, StatusUnmatched, "", log)
	}

	if err := p.route(ctx, r, media); err != nil {
		r.res.Success = false
		r.res.addf(err.Error())
		return p.finish(ctx, r, StatusError, err.Error(), log)
	}

	r.res.Organized = r.tvMatches > 0 && r.organized == r.tvMatches
	status := StatusUnmatched
	switch {
	case r.res.Matched && r.res.Organized:
		status = StatusCompleted
	case r.res.Matched:
		status = StatusMatched
	}
	return p.finish(ctx, r, status, "", log)
}

// route picks the library and items the files belong to and applies the
// result.
func (p *Processor) route(ctx context.Context, r *run, media []File) error {
	t := r.t
	switch {
	case t.Link.EpisodeID != nil || t.Link.MovieID != nil || t.Link.TrackID != nil:
		return p.routeLinkedItem(ctx, r, media)
	case t.Link.AudiobookID != nil:
		return p.routeAudiobook(ctx, r, media)
	case t.LibraryID != nil:
		lib, err := p.library.GetLibrary(*t.LibraryID)
		if err != nil {
			return err
		}
		pl, err := p.planLibrary(lib, t, media)
		if err != nil {
			return err
		}
		p.autoAddMovies(ctx, pl, t, r.res)
		return p.apply(ctx, r, pl)
	default:
		return p.routeUserLibraries(ctx, r, media)
	}
}

// routeLinkedItem links the largest file of the item's kind and records the
// rest unlinked.
func (p *Processor) routeLinkedItem(ctx context.Context, r *run, media []File) error {
	t := r.t
	var (
		libID int64
		m     match
		video = true
	)
	switch {
	case t.Link.EpisodeID != nil:
		ep, err := p.library.GetEpisode(*t.Link.EpisodeID)
		if err != nil {
			return err
		}
		show, err := p.library.GetShow(ep.ShowID)
		if err != nil {
			return err
		}
		libID = show.LibraryID
		m = match{link: library.EpisodeLink(ep.ID), show: show, episode: ep}
	case t.Link.MovieID != nil:
		mv, err := p.library.GetMovie(*t.Link.MovieID)
		if err != nil {
			return err
		}
		libID = mv.LibraryID
		m = match{link: library.MovieLink(mv.ID)}
	default:
		tr, err := p.library.GetTrack(*t.Link.TrackID)
		if err != nil {
			return err
		}
		libID = tr.LibraryID
		m = match{link: library.TrackLink(tr.ID)}
		video = false
	}

	lib, err := p.library.GetLibrary(libID)
	if err != nil {
		return err
	}

	var kind []File
	for _, f := range media {
		if (video && library.IsVideoFile(f.Path)) || (!video && library.IsAudioFile(f.Path)) {
			kind = append(kind, f)
		}
	}
	best, ok := largest(kind)
	pl := &plan{lib: lib}
	for _, f := range media {
		if ok && f.Path == best.Path {
			m.file = f
			pl.matches = append(pl.matches, m)
			continue
		}
		pl.misses = append(pl.misses, f)
	}
	return p.apply(ctx, r, pl)
}

// routeAudiobook turns every audio file into a chapter, in path order.
func (p *Processor) routeAudiobook(ctx context.Context, r *run, media []File) error {
	book, err := p.library.GetAudiobook(*r.t.Link.AudiobookID)
	if err != nil {
		return err
	}
	lib, err := p.library.GetLibrary(book.LibraryID)
	if err != nil {
		return err
	}
	pl := &plan{lib: lib}
	n := 0
	for _, f := range media {
		if !library.IsAudioFile(f.Path) {
			pl.misses = append(pl.misses, f)
			continue
		}
		n++
		pl.matches = append(pl.matches, match{file: f, link: library.AudiobookLink(book.ID), chapter: n})
	}
	return p.apply(ctx, r, pl)
}

// routeUserLibraries tries each of the user's libraries in type order and
// applies the first that matches anything. Movie auto-add only runs once
// no library matched on its own.
func (p *Processor) routeUserLibraries(ctx context.Context, r *run, media []File) error {
	t := r.t
	libs, err := p.library.ListLibraries(library.LibraryFilter{UserID: &t.UserID})
	if err != nil {
		return err
	}
	sort.SliceStable(libs, func(i, j int) bool {
		return libraryOrder[libs[i].Type] < libraryOrder[libs[j].Type]
	})

	for _, lib := range libs {
		pl, err := p.planLibrary(lib, t, media)
		if err != nil {
			return err
		}
		if pl.matched() {
			return p.apply(ctx, r, pl)
		}
	}

	for _, lib := range libs {
		if lib.Type != library.TypeMovies || !lib.AutoAddDiscovered {
			continue
		}
		pl, err := p.planLibrary(lib, t, media)
		if err != nil {
			return err
		}
		p.autoAddMovies(ctx, pl, t, r.res)
		if pl.matched() {
			return p.apply(ctx, r, pl)
		}
	}

	// Nothing matched: keep the files, unlinked, in the first library of their kind.
	for _, f := range media {
		lib := firstAccepting(libs, f.Path)
		if lib == nil {
			r.res.FilesFailed++
			r.res.addf("no library accepts " + filepath.Base(f.Path))
			continue
		}
		if err := p.applyMiss(ctx, r, lib, f); err != nil {
			return err
		}
	}
	return nil
}

func firstAccepting(libs []*library.Library, path string) *library.Library {
	for _, lib := range libs {
		if lib.Type.Accepts(path) {
			return lib
		}
	}
	return nil
}

// apply records a plan: matched files are linked, the rest kept unlinked.
func (p *Processor) apply(ctx context.Context, r *run, pl *plan) error {
	linked := false
	for _, m := range pl.matches {
		mf, err := p.ensureFile(pl.lib, r, m.file, m.link)
		if errors.Is(err, library.ErrManualMatch) {
			r.res.FilesProcessed++
			r.res.addf(filepath.Base(m.file.Path) + " is manually matched; link kept")
			continue
		}
		if err != nil {
			r.res.FilesFailed++
			r.res.addf(fmt.Sprintf("record %s: %v", filepath.Base(m.file.Path), err))
			continue
		}
		r.res.FilesProcessed++
		r.res.Matched = true

		p.markDownloaded(m, mf)
		if !linked {
			if err := p.torrents.SetLink(r.t.ID, pl.lib.ID, m.link); err != nil {
				p.logger.Warn("failed to link torrent", "torrent_id", r.t.ID, "error", err)
			}
			linked = true
		}

		if m.episode != nil {
			r.tvMatches++
			if p.organize(ctx, r, pl.lib, m, mf) {
				r.organized++
			}
		}
	}

	for _, f := range pl.misses {
		if err := p.applyMiss(ctx, r, pl.lib, f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) applyMiss(_ context.Context, r *run, lib *library.Library, f File) error {
	if _, err := p.ensureFile(lib, r, f, library.Link{}); err != nil {
		r.res.FilesFailed++
		r.res.addf(fmt.Sprintf("record %s: %v", filepath.Base(f.Path), err))
		return nil
	}
	r.res.FilesProcessed++
	r.res.addf("no match for " + filepath.Base(f.Path))
	return nil
}

// ensureFile returns the media file at f's path, creating it or repairing
// its link. Newly created files are queued for analysis. A manual match is
// never replaced: ErrManualMatch is returned instead.
func (p *Processor) ensureFile(lib *library.Library, r *run, f File, link library.Link) (*library.MediaFile, error) {
	existing, err := p.library.GetMediaFileByPath(f.Path)
	if err == nil {
		if link.IsZero() || sameLink(existing.Link, link) {
			return existing, nil
		}
		if existing.MatchType == library.MatchManual {
			return nil, library.ErrManualMatch
		}
		if err := p.library.SetAutomaticLink(existing.ID, link); err != nil {
			return nil, err
		}
		existing.Link = link
		existing.MatchType = library.MatchAutomatic
		return existing, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	rel, relErr := filepath.Rel(r.t.SavePath, f.Path)
	if relErr != nil || r.t.SavePath == "" {
		rel = filepath.Base(f.Path)
	}
	mf := &library.MediaFile{
		LibraryID:    lib.ID,
		Path:         f.Path,
		RelativePath: rel,
		OriginalName: filepath.Base(f.Path),
		SizeBytes:    f.Size,
		Link:         link,
	}
	if err := p.library.CreateMediaFile(mf); err != nil {
		return nil, err
	}
	p.submit(r, mf)
	return mf, nil
}

func (p *Processor) submit(r *run, mf *library.MediaFile) {
	if p.analysis == nil {
		return
	}
	if err := p.analysis.Submit(analysis.Job{MediaFileID: mf.ID, Path: mf.Path}); err != nil {
		r.res.addf(fmt.Sprintf("analysis not queued for %s: %v", filepath.Base(mf.Path), err))
	}
}

func (p *Processor) markDownloaded(m match, mf *library.MediaFile) {
	var err error
	switch {
	case m.link.EpisodeID != nil:
		err = p.library.UpdateEpisodeStatus(*m.link.EpisodeID, library.EpisodeDownloaded)
	case m.link.MovieID != nil:
		err = p.library.UpdateMovieStatus(*m.link.MovieID, library.ItemDownloaded)
	case m.link.TrackID != nil:
		err = p.library.UpdateTrackStatus(*m.link.TrackID, library.ItemDownloaded)
	case m.link.AudiobookID != nil:
		err = p.library.UpdateAudiobookStatus(*m.link.AudiobookID, library.ItemDownloaded)
		if err == nil && m.chapter > 0 {
			err = p.library.SetChapter(&library.AudiobookChapter{
				AudiobookID: *m.link.AudiobookID,
				Number:      m.chapter,
				Title:       fmt.Sprintf("Chapter %d", m.chapter),
				MediaFileID: &mf.ID,
			})
		}
	}
	if err != nil {
		p.logger.Warn("failed to update item status", "media_file_id", mf.ID, "error", err)
	}
}

// organize runs the organizer for an episode file when the show's effective
// organize_files setting is on. It reports whether the file is organized.
func (p *Processor) organize(ctx context.Context, r *run, lib *library.Library, m match, mf *library.MediaFile) bool {
	if p.org == nil {
		return false
	}
	settings, err := p.org.FullOrganizeSettings(ctx, m.show)
	if err != nil {
		r.res.addf("organize settings: " + err.Error())
		return false
	}
	if !settings.Enabled {
		return false
	}
	out, err := p.org.OrganizeFile(ctx, organizer.Request{
		File:        mf,
		Show:        m.show,
		Episode:     m.episode,
		LibraryPath: lib.Path,
		Settings:    settings,
	})
	if err != nil {
		r.res.addf(fmt.Sprintf("organize %s: %v", filepath.Base(mf.Path), err))
		return false
	}
	return out.Status == library.OrganizeOrganized
}

func (p *Processor) finish(ctx context.Context, r *run, status Status, errMsg string, log *slog.Logger) (*Result, error) {
	if err := p.torrents.Finish(r.t.ID, status, errMsg); err != nil {
		log.Error("failed to record post-process status", "status", status, "error", err)
	}

	if p.bus != nil {
		err := p.bus.Publish(ctx, &events.TorrentProcessed{
			BaseEvent:      events.NewBaseEvent(events.EventTorrentProcessed, events.EntityTorrent, r.t.ID),
			TorrentID:      r.t.ID,
			Name:           r.t.Name,
			Status:         string(status),
			Matched:        r.res.Matched,
			Organized:      r.res.Organized,
			FilesProcessed: r.res.FilesProcessed,
			FilesFailed:    r.res.FilesFailed,
			Messages:       r.res.Messages,
		})
		if err != nil {
			log.Warn("failed to publish torrent processed event", "error", err)
		}
	}

	log.Info("torrent processed",
		"status", status,
		"matched", r.res.Matched,
		"organized", r.res.Organized,
		"files_processed", r.res.FilesProcessed,
		"files_failed", r.res.FilesFailed)
	return r.res, nil
}

func sameLink(a, b library.Link) bool {
	eq := func(x, y *int64) bool {
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return *x == *y
	}
	return eq(a.EpisodeID, b.EpisodeID) && eq(a.MovieID, b.MovieID) &&
		eq(a.TrackID, b.TrackID) && eq(a.AudiobookID, b.AudiobookID)
}

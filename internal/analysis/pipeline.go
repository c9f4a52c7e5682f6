package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/quality"
)

// Pipeline analyzes media files. It implements workqueue.Processor[Job].
type Pipeline struct {
	store  *library.Store
	prober Prober
	bus    *events.Bus
	logger *slog.Logger
}

// NewPipeline creates an analysis pipeline. bus may be nil.
func NewPipeline(store *library.Store, prober Prober, bus *events.Bus, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:  store,
		prober: prober,
		bus:    bus,
		logger: logger.With("component", "analysis"),
	}
}

// Process probes one file and stores the result. A file that vanished from
// the database or from disk since the job was queued is skipped silently.
func (p *Pipeline) Process(ctx context.Context, job Job) error {
	f, err := p.store.GetMediaFile(job.MediaFileID)
	if errors.Is(err, library.ErrNotFound) {
		p.logger.Debug("media file gone, skipping", "media_file_id", job.MediaFileID)
		return nil
	}
	if err != nil {
		return err
	}

	// The row is authoritative: the file may have been organized since the job was queued.
	path := f.Path
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		p.logger.Debug("file missing on disk, skipping", "media_file_id", f.ID, "path", path)
		return nil
	}

	result, err := p.prober.Analyze(ctx, path)
	if err != nil {
		return fmt.Errorf("analyze media file %d: %w", f.ID, err)
	}

	if err := p.store.SaveAnalysis(f.ID, toRecord(result)); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil
		}
		return err
	}

	status, err := p.VerifyAndUpdateQuality(ctx, f.ID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil
		}
		return err
	}

	if HasTags(path) {
		tags, err := ReadTags(path)
		if err != nil {
			p.logger.Warn("tag extraction failed", "media_file_id", f.ID, "path", path, "error", err)
		} else if err := p.store.SaveTags(f.ID, tags); err != nil && !errors.Is(err, library.ErrNotFound) {
			p.logger.Warn("saving tags failed", "media_file_id", f.ID, "error", err)
		}
	}

	p.logger.Debug("media file analyzed", "media_file_id", f.ID, "path", path, "quality", status)

	if p.bus != nil {
		err := p.bus.Publish(ctx, &events.MediaFileUpdated{
			BaseEvent:     events.NewBaseEvent(events.EventMediaFileUpdated, events.EntityMediaFile, f.ID),
			MediaFileID:   f.ID,
			LibraryID:     f.LibraryID,
			Path:          path,
			QualityStatus: string(status),
		})
		if err != nil {
			p.logger.Warn("failed to publish media file event", "media_file_id", f.ID, "error", err)
		}
	}
	return nil
}

// VerifyAndUpdateQuality grades an analyzed file against its effective
// quality settings and stores the verdict. It never removes anything.
func (p *Pipeline) VerifyAndUpdateQuality(ctx context.Context, fileID int64) (library.QualityStatus, error) {
	f, err := p.store.GetMediaFile(fileID)
	if err != nil {
		return "", err
	}
	lib, err := p.store.GetLibrary(f.LibraryID)
	if err != nil {
		return "", err
	}

	settings := quality.Effective(p.itemOverride(f), lib.Quality)
	status := quality.Evaluate(settings, quality.Probe{
		Resolution:   f.Resolution,
		VideoCodec:   f.VideoCodec,
		AudioCodec:   f.AudioCodec,
		HDRType:      f.HDRType,
		Source:       f.Source,
		ReleaseGroup: f.ReleaseGroup,
		AudioOnly:    !lib.Type.IsVideo(),
	})

	if err := p.store.UpdateQualityStatus(f.ID, status); err != nil {
		return "", err
	}
	return status, nil
}

// itemOverride returns the quality override of the show or movie the file
// belongs to, if any.
func (p *Pipeline) itemOverride(f *library.MediaFile) *library.QualitySettings {
	switch {
	case f.Link.EpisodeID != nil:
		ep, err := p.store.GetEpisode(*f.Link.EpisodeID)
		if err != nil {
			return nil
		}
		show, err := p.store.GetShow(ep.ShowID)
		if err != nil {
			return nil
		}
		return show.QualityOverride
	case f.Link.MovieID != nil:
		m, err := p.store.GetMovie(*f.Link.MovieID)
		if err != nil {
			return nil
		}
		return m.QualityOverride
	}
	return nil
}

func toRecord(a *MediaAnalysis) *library.Analysis {
	rec := &library.Analysis{
		Container: a.Container,
		Duration:  a.Duration,
		Bitrate:   a.Bitrate,
	}
	if v := a.PrimaryVideo(); v != nil {
		rec.VideoCodec = v.Codec
		rec.Width = v.Width
		rec.Height = v.Height
		rec.Resolution = quality.ClassifyResolution(v.Width, v.Height)
		rec.HDRType = v.HDRType
	}
	if au := a.PrimaryAudio(); au != nil {
		rec.AudioCodec = au.Codec
	}

	for _, v := range a.VideoStreams {
		rec.Streams = append(rec.Streams, library.Stream{
			Kind: library.StreamVideo, Index: v.Index, Codec: v.Codec,
			Width: v.Width, Height: v.Height, HDRType: v.HDRType, IsDefault: v.IsDefault,
		})
	}
	for _, au := range a.AudioStreams {
		rec.Streams = append(rec.Streams, library.Stream{
			Kind: library.StreamAudio, Index: au.Index, Codec: au.Codec,
			Channels: au.Channels, Language: au.Language, IsDefault: au.IsDefault,
		})
	}
	for _, s := range a.SubtitleStreams {
		rec.Streams = append(rec.Streams, library.Stream{
			Kind: library.StreamSubtitle, Index: s.Index, Codec: s.Codec,
			Language: s.Language, IsDefault: s.IsDefault,
		})
	}
	for _, c := range a.Chapters {
		rec.Chapters = append(rec.Chapters, library.Chapter{Index: c.Index, Title: c.Title, Start: c.Start, End: c.End})
	}
	return rec
}

package torrent

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmunix/mediarr/internal/analysis"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/matcher"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/pkg/release"
)

// libraryOrder is the order libraries are tried when a torrent carries no link.
var libraryOrder = map[library.Type]int{
	library.TypeTV:         0,
	library.TypeMovies:     1,
	library.TypeMusic:      2,
	library.TypeAudiobooks: 3,
}

// match pairs a torrent file with the catalog item it belongs to.
type match struct {
	file    File
	link    library.Link
	show    *library.TvShow
	episode *library.Episode
	chapter int // audiobook chapter number, 1-based
}

// plan is the dry-run outcome of matching files against one library.
type plan struct {
	lib     *library.Library
	matches []match
	misses  []File
}

func (pl *plan) matched() bool { return len(pl.matches) > 0 }

// mediaFiles keeps the files a library could hold, sorted by path.
func mediaFiles(files []File) []File {
	var out []File
	for _, f := range files {
		if library.IsIgnoredFile(f.Path) {
			continue
		}
		if library.IsVideoFile(f.Path) || library.IsAudioFile(f.Path) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// accepted splits files into those the library type holds and the rest.
func accepted(typ library.Type, files []File) (in, out []File) {
	for _, f := range files {
		if typ.Accepts(f.Path) {
			in = append(in, f)
		} else {
			out = append(out, f)
		}
	}
	return in, out
}

// largest returns the biggest file, or false if there are none.
func largest(files []File) (File, bool) {
	if len(files) == 0 {
		return File{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if f.Size > best.Size {
			best = f
		}
	}
	return best, true
}

// parseFile parses a torrent file name, falling back to the torrent name for
// whatever the file name lacks when the torrent holds a single file.
func parseFile(f File, torrentName string, single bool) *release.Info {
	info := release.Parse(filepath.Base(f.Path))
	if !single {
		if info.Title == "" {
			info.Title = release.Parse(torrentName).Title
		}
		return info
	}
	fallback := release.Parse(torrentName)
	if info.Title == "" {
		info.Title = fallback.Title
	}
	if info.Year == 0 {
		info.Year = fallback.Year
	}
	if !info.IsEpisode() && fallback.IsEpisode() {
		info.Season, info.Episode, info.Episodes = fallback.Season, fallback.Episode, fallback.Episodes
	}
	return info
}

// planLibrary matches files against one library without side effects.
func (p *Processor) planLibrary(lib *library.Library, t *Torrent, files []File) (*plan, error) {
	in, out := accepted(lib.Type, files)
	pl := &plan{lib: lib, misses: out}
	single := len(in) == 1

	switch lib.Type {
	case library.TypeTV:
		shows, err := p.library.ListShows(lib.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range in {
			info := parseFile(f, t.Name, single)
			show := matcher.FindShow(shows, info.Title)
			if show == nil || !info.IsEpisode() {
				pl.misses = append(pl.misses, f)
				continue
			}
			ep, err := p.library.FindEpisode(show.ID, info.Season, info.Episode)
			if errors.Is(err, library.ErrNotFound) {
				pl.misses = append(pl.misses, f)
				continue
			}
			if err != nil {
				return nil, err
			}
			pl.matches = append(pl.matches, match{file: f, link: library.EpisodeLink(ep.ID), show: show, episode: ep})
		}

	case library.TypeMovies:
		movies, err := p.library.ListMovies(lib.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range in {
			info := parseFile(f, t.Name, single)
			var m *library.Movie
			if !info.IsEpisode() {
				m = matcher.FindMovie(movies, info.Title, info.Year)
			}
			if m == nil {
				pl.misses = append(pl.misses, f)
				continue
			}
			pl.matches = append(pl.matches, match{file: f, link: library.MovieLink(m.ID)})
		}

	case library.TypeMusic:
		tracks, err := p.library.ListTracks(lib.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range in {
			artist, title := trackHint(f)
			tr := matcher.FindTrack(tracks, artist, title)
			if tr == nil {
				pl.misses = append(pl.misses, f)
				continue
			}
			pl.matches = append(pl.matches, match{file: f, link: library.TrackLink(tr.ID)})
		}

	case library.TypeAudiobooks:
		books, err := p.library.ListAudiobooks(lib.ID)
		if err != nil {
			return nil, err
		}
		book := matcher.FindAudiobook(books, release.Parse(t.Name).Title)
		if book == nil {
			book = matcher.FindAudiobook(books, t.Name)
		}
		if book == nil {
			pl.misses = append(pl.misses, in...)
			break
		}
		for i, f := range in {
			pl.matches = append(pl.matches, match{file: f, link: library.AudiobookLink(book.ID), chapter: i + 1})
		}
	}
	return pl, nil
}

// trackHint derives artist and title from embedded tags or an
// "Artist - Title" file name.
func trackHint(f File) (artist, title string) {
	if analysis.HasTags(f.Path) {
		if tags, err := analysis.ReadTags(f.Path); err == nil && tags.Title != "" {
			return tags.Artist, tags.Title
		}
	}
	name := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	name = strings.TrimLeft(name, "0123456789. ")
	name = strings.TrimPrefix(name, "- ")
	return matcher.SplitArtistTitle(name)
}

// autoAddMovies resolves unmatched movie files through the metadata
// provider. The first search result is taken as canonical and accepted
// only when its year agrees within one year.
func (p *Processor) autoAddMovies(ctx context.Context, pl *plan, t *Torrent, res *Result) {
	if p.meta == nil || !pl.lib.AutoAddDiscovered || pl.lib.Type != library.TypeMovies {
		return
	}
	single := len(pl.misses) == 1
	var remaining []File
	for _, f := range pl.misses {
		if !library.IsVideoFile(f.Path) {
			remaining = append(remaining, f)
			continue
		}
		info := parseFile(f, t.Name, single)
		if info.IsEpisode() || info.Title == "" {
			remaining = append(remaining, f)
			continue
		}
		m, err := p.addMovie(ctx, pl.lib, info)
		if err != nil {
			p.logger.Warn("movie auto-add failed", "torrent_id", t.ID, "title", info.Title, "error", err)
			res.addf("auto-add failed for " + info.Title + ": " + err.Error())
		}
		if m == nil {
			remaining = append(remaining, f)
			continue
		}
		pl.matches = append(pl.matches, match{file: f, link: library.MovieLink(m.ID)})
	}
	pl.misses = remaining
}

func (p *Processor) addMovie(ctx context.Context, lib *library.Library, info *release.Info) (*library.Movie, error) {
	results, err := p.meta.SearchMovies(ctx, info.Title, info.Year)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	hit := results[0]
	if !matcher.YearAgrees(info.Year, hit.Year) {
		p.logger.Debug("first provider result rejected", "title", info.Title, "year", info.Year, "result_year", hit.Year)
		return nil, nil
	}
	if existing, err := p.library.GetMovieByProvider(lib.ID, hit.ProviderID); err == nil {
		return existing, nil
	}
	return p.meta.AddMovieFromProvider(ctx, metadata.AddMovieOptions{
		LibraryID:  lib.ID,
		ProviderID: hit.ProviderID,
		Title:      hit.Title,
		Year:       hit.Year,
	})
}

// Package matcher holds the catalog lookup heuristics shared by the scanner
// and the torrent processor. Every function is pure: callers load the
// candidate rows and decide what to do with a hit.
package matcher

import (
	"strings"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/pkg/release"
)

// MinSimilarity is the Jaro-Winkler score a track or audiobook title must
// reach to count as a match.
const MinSimilarity = 0.90

// FindShow returns the show whose name matches. Passes run in order:
// exact case-insensitive, punctuation-normalized, then ignoring a leading "The".
func FindShow(shows []*library.TvShow, name string) *library.TvShow {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, sh := range shows {
		if strings.EqualFold(sh.Name, name) {
			return sh
		}
	}

	norm := release.NormalizeName(name)
	if norm == "" {
		return nil
	}
	for _, sh := range shows {
		if release.NormalizeName(sh.Name) == norm {
			return sh
		}
	}

	stripped := release.StripThe(norm)
	for _, sh := range shows {
		if release.StripThe(release.NormalizeName(sh.Name)) == stripped {
			return sh
		}
	}
	return nil
}

// FindMovie returns the movie whose normalized title equals title. With a
// year it prefers the exact year, then a year off by one, then any year.
func FindMovie(movies []*library.Movie, title string, year int) *library.Movie {
	norm := release.StripThe(release.NormalizeName(title))
	if norm == "" {
		return nil
	}

	var candidates []*library.Movie
	for _, m := range movies {
		if release.StripThe(release.NormalizeName(m.Title)) == norm {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if year == 0 {
		return candidates[0]
	}

	for dist := 0; dist <= 1; dist++ {
		for _, m := range candidates {
			if m.Year != 0 && abs(m.Year-year) == dist {
				return m
			}
		}
	}
	return candidates[0]
}

// YearAgrees reports whether a provider year is acceptable for a parsed year.
// An unknown year on either side agrees.
func YearAgrees(parsed, candidate int) bool {
	if parsed == 0 || candidate == 0 {
		return true
	}
	return abs(parsed-candidate) <= 1
}

// FindTrack returns the best-scoring track at or above MinSimilarity. When
// artist is known the track's artist must also clear the threshold.
func FindTrack(tracks []*library.Track, artist, title string) *library.Track {
	var best *library.Track
	bestScore := 0.0
	for _, tr := range tracks {
		score := release.Similarity(title, tr.Title)
		if score < MinSimilarity {
			continue
		}
		if artist != "" && tr.Artist != "" && release.Similarity(artist, tr.Artist) < MinSimilarity {
			continue
		}
		if score > bestScore {
			best, bestScore = tr, score
		}
	}
	return best
}

// FindAudiobook returns the best-scoring audiobook at or above MinSimilarity.
func FindAudiobook(books []*library.Audiobook, title string) *library.Audiobook {
	var best *library.Audiobook
	bestScore := 0.0
	for _, b := range books {
		score := release.Similarity(title, b.Title)
		if score >= MinSimilarity && score > bestScore {
			best, bestScore = b, score
		}
	}
	return best
}

// ShowNameFromPath falls back to the directory structure when a file name
// carries no title: "Show/Season 01/S01E02.mkv" yields "Show".
func ShowNameFromPath(dirs []string) string {
	for i := len(dirs) - 1; i >= 0; i-- {
		d := strings.TrimSpace(dirs[i])
		if d == "" || d == "." || d == "/" || isSeasonDir(d) {
			continue
		}
		return release.Parse(d).Title
	}
	return ""
}

func isSeasonDir(name string) bool {
	lower := strings.ToLower(name)
	if lower == "specials" {
		return true
	}
	rest, ok := strings.CutPrefix(lower, "season")
	if !ok {
		return false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SplitArtistTitle splits "Artist - Title" file names.
func SplitArtistTitle(name string) (artist, title string) {
	if a, t, ok := strings.Cut(name, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", strings.TrimSpace(name)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

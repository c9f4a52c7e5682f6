package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/pkg/release"
)

func TestFindShow(t *testing.T) {
	shows := []*library.TvShow{
		{ID: 1, Name: "The Office"},
		{ID: 2, Name: "Marvel's Agents of S.H.I.E.L.D."},
		{ID: 3, Name: "Breaking Bad"},
	}

	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"exact", "Breaking Bad", 3},
		{"case insensitive", "breaking bad", 3},
		{"punctuation", "Marvels Agents of SHIELD", 2},
		{"without article", "Office", 1},
		{"no match", "Better Call Saul", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindShow(shows, tt.in)
			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFindShow_DottedAcronymFromFilename(t *testing.T) {
	shows := []*library.TvShow{
		{ID: 1, Name: "Marvel's Agents of S.H.I.E.L.D."},
		{ID: 2, Name: "S.W.A.T."},
		{ID: 3, Name: "The O.C."},
	}

	tests := []struct {
		file string
		want int64
	}{
		{"S.W.A.T. - S01E01 - Pilot.mkv", 2},
		{"S.W.A.T.S01E01.1080p.WEB-DL.mkv", 2},
		{"Marvels.Agents.of.S.H.I.E.L.D.S01E01.720p.HDTV.mkv", 1},
		{"Marvel's Agents of S.H.I.E.L.D. - S02E03 - Making Friends.mkv", 1},
		{"The.O.C.S01E01.mkv", 3},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := FindShow(shows, release.Parse(tt.file).Title)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFindShow_PrefersExactOverNormalized(t *testing.T) {
	shows := []*library.TvShow{
		{ID: 1, Name: "The Office"},
		{ID: 2, Name: "Office"},
	}
	got := FindShow(shows, "Office")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestFindMovie(t *testing.T) {
	movies := []*library.Movie{
		{ID: 1, Title: "Dune", Year: 1984},
		{ID: 2, Title: "Dune", Year: 2021},
		{ID: 3, Title: "Heat", Year: 1995},
	}

	tests := []struct {
		name  string
		title string
		year  int
		want  int64
	}{
		{"exact year", "Dune", 2021, 2},
		{"year off by one", "Dune", 1985, 1},
		{"title only", "Heat", 2010, 3},
		{"no year", "Heat", 0, 3},
		{"unknown", "Unknown Movie", 2099, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMovie(movies, tt.title, tt.year)
			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestYearAgrees(t *testing.T) {
	assert.True(t, YearAgrees(2020, 2021))
	assert.True(t, YearAgrees(2020, 2019))
	assert.True(t, YearAgrees(0, 1999))
	assert.False(t, YearAgrees(2020, 2022))
}

func TestFindTrack(t *testing.T) {
	tracks := []*library.Track{
		{ID: 1, Title: "Paranoid Android", Artist: "Radiohead"},
		{ID: 2, Title: "Karma Police", Artist: "Radiohead"},
	}

	got := FindTrack(tracks, "Radiohead", "Karma Police")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)

	got = FindTrack(tracks, "", "paranoid android")
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	assert.Nil(t, FindTrack(tracks, "Muse", "Karma Police"))
	assert.Nil(t, FindTrack(tracks, "", "Hysteria"))
}

func TestFindAudiobook(t *testing.T) {
	books := []*library.Audiobook{
		{ID: 1, Title: "Project Hail Mary"},
		{ID: 2, Title: "The Martian"},
	}
	got := FindAudiobook(books, "Project Hail Mary")
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	assert.Nil(t, FindAudiobook(books, "Dune Messiah"))
}

func TestShowNameFromPath(t *testing.T) {
	assert.Equal(t, "Breaking Bad", ShowNameFromPath([]string{"Breaking Bad", "Season 01"}))
	assert.Equal(t, "Breaking Bad", ShowNameFromPath([]string{"Breaking Bad (2008)", "Season 1"}))
	assert.Equal(t, "Show", ShowNameFromPath([]string{"Show", "Specials"}))
	assert.Equal(t, "", ShowNameFromPath([]string{"Season 2"}))
	assert.Equal(t, "", ShowNameFromPath(nil))
}

func TestSplitArtistTitle(t *testing.T) {
	a, title := SplitArtistTitle("Radiohead - Karma Police")
	assert.Equal(t, "Radiohead", a)
	assert.Equal(t, "Karma Police", title)

	a, title = SplitArtistTitle("Karma Police")
	assert.Empty(t, a)
	assert.Equal(t, "Karma Police", title)
}

package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Libraries(t *testing.T) {
	s := setupTestStore(t)

	lib := &Library{
		Name:              "Shows",
		Path:              "/media/tv",
		Type:              TypeTV,
		AutoScan:          true,
		AutoAddDiscovered: true,
		Quality:           QualitySettings{AllowedResolutions: []string{"1080p"}},
	}
	require.NoError(t, s.AddLibrary(lib))
	assert.NotZero(t, lib.ID)
	assert.Equal(t, int64(1), lib.UserID)
	assert.Equal(t, RenameNone, lib.RenameStyle)

	got, err := s.GetLibrary(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shows", got.Name)
	assert.Equal(t, TypeTV, got.Type)
	assert.True(t, got.AutoScan)
	assert.True(t, got.AutoAddDiscovered)
	assert.Equal(t, []string{"1080p"}, got.Quality.AllowedResolutions)
	assert.Nil(t, got.LastScannedAt)

	err = s.AddLibrary(&Library{Name: "dup", Path: "/media/tv", Type: TypeTV})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.MarkLibraryScanned(lib.ID, time.Now()))
	got, err = s.GetLibrary(lib.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastScannedAt)

	movies := addTestLibrary(t, s, TypeMovies)
	tv := TypeTV
	libs, err := s.ListLibraries(LibraryFilter{Type: &tv})
	require.NoError(t, err)
	require.Len(t, libs, 1)
	assert.Equal(t, lib.ID, libs[0].ID)

	all, err := s.ListLibraries(LibraryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, movies.ID, all[1].ID)

	_, err = s.GetLibrary(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Shows(t *testing.T) {
	s := setupTestStore(t)
	lib := addTestLibrary(t, s, TypeTV)

	show := &TvShow{
		LibraryID:             lib.ID,
		Name:                  "Breaking Bad",
		Year:                  2008,
		ProviderID:            ptr("1396"),
		OrganizeFilesOverride: ptr(true),
		QualityOverride:       &QualitySettings{AllowedResolutions: []string{}},
	}
	require.NoError(t, s.AddShow(show))
	assert.Equal(t, "tmdb", show.Provider)

	got, err := s.GetShowByProvider(lib.ID, "tmdb", "1396")
	require.NoError(t, err)
	assert.Equal(t, show.ID, got.ID)
	assert.Equal(t, 2008, got.Year)
	require.NotNil(t, got.OrganizeFilesOverride)
	assert.True(t, *got.OrganizeFilesOverride)
	assert.Nil(t, got.RenameStyleOverride)
	require.NotNil(t, got.QualityOverride)
	assert.NotNil(t, got.QualityOverride.AllowedResolutions, "empty list survives round trip")
	assert.Nil(t, got.QualityOverride.AllowedSources)

	err = s.AddShow(&TvShow{LibraryID: lib.ID, Name: "Dup", ProviderID: ptr("1396")})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.GetShowByProvider(lib.ID, "tmdb", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	shows, err := s.ListShows(lib.ID)
	require.NoError(t, err)
	assert.Len(t, shows, 1)
}

func TestStore_FindOrCreateEpisode(t *testing.T) {
	s := setupTestStore(t)
	lib := addTestLibrary(t, s, TypeTV)
	show, existing := addTestEpisode(t, s, lib.ID, "Show", 1, 2)

	ep, created, err := s.FindOrCreateEpisode(show.ID, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, ep.ID)

	ep, created, err = s.FindOrCreateEpisode(show.ID, 1, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, EpisodeMissing, ep.Status)

	eps, total, err := s.ListEpisodes(EpisodeFilter{ShowID: &show.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, eps, 2)
}

func TestStore_MoviesTracksAudiobooks(t *testing.T) {
	s := setupTestStore(t)
	movies := addTestLibrary(t, s, TypeMovies)
	music := addTestLibrary(t, s, TypeMusic)
	books := addTestLibrary(t, s, TypeAudiobooks)

	m := &Movie{LibraryID: movies.ID, Title: "Heat", Year: 1995, ProviderID: ptr("949")}
	require.NoError(t, s.AddMovie(m))
	got, err := s.GetMovieByProvider(movies.ID, "949")
	require.NoError(t, err)
	assert.Equal(t, ItemWanted, got.Status)
	require.NoError(t, s.UpdateMovieStatus(m.ID, ItemDownloaded))
	got, err = s.GetMovie(m.ID)
	require.NoError(t, err)
	assert.Equal(t, ItemDownloaded, got.Status)

	tr := &Track{LibraryID: music.ID, Title: "Song", Artist: "Band", TrackNumber: 3}
	require.NoError(t, s.AddTrack(tr))
	tracks, err := s.ListTracks(music.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 3, tracks[0].TrackNumber)

	b := &Audiobook{LibraryID: books.ID, Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, s.AddAudiobook(b))
	require.NoError(t, s.SetChapter(&AudiobookChapter{AudiobookID: b.ID, Number: 1, Title: "One"}))
	require.NoError(t, s.SetChapter(&AudiobookChapter{AudiobookID: b.ID, Number: 1, Title: "Uno"}))
	chapters, err := s.ListChapters(b.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Uno", chapters[0].Title)

	assert.ErrorIs(t, s.UpdateTrackStatus(999, ItemDownloaded), ErrNotFound)
}

func TestStore_UpdateMovieQuality(t *testing.T) {
	s := setupTestStore(t)
	movies := addTestLibrary(t, s, TypeMovies)
	m := &Movie{LibraryID: movies.ID, Title: "Heat", Year: 1995}
	require.NoError(t, s.AddMovie(m))

	q := &QualitySettings{AllowedResolutions: []string{"2160p"}, AllowedSources: []string{}}
	require.NoError(t, s.UpdateMovieQuality(m.ID, q))
	got, err := s.GetMovie(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.QualityOverride)
	assert.Equal(t, []string{"2160p"}, got.QualityOverride.AllowedResolutions)
	assert.NotNil(t, got.QualityOverride.AllowedSources)
	assert.Nil(t, got.QualityOverride.AllowedVideoCodecs)

	require.NoError(t, s.UpdateMovieQuality(m.ID, nil))
	got, err = s.GetMovie(m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.QualityOverride)

	assert.ErrorIs(t, s.UpdateMovieQuality(999, q), ErrNotFound)
}

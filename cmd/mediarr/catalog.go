package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/vmunix/mediarr/internal/library"
)

var errWrongLibraryType = errors.New("wrong library type")

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// catalogLibrary loads a library and checks it holds the given content type.
func catalogLibrary(store *library.Store, id int64, want library.Type) (*library.Library, error) {
	lib, err := store.GetLibrary(id)
	if err != nil {
		return nil, err
	}
	if lib.Type != want {
		return nil, fmt.Errorf("library %d is %s, not %s: %w", lib.ID, lib.Type, want, errWrongLibraryType)
	}
	return lib, nil
}

// addTrack adds a wanted track to a music library.
func addTrack(store *library.Store, libraryID int64, tr *library.Track) error {
	if tr.Title == "" {
		return errors.New("track title is required")
	}
	if _, err := catalogLibrary(store, libraryID, library.TypeMusic); err != nil {
		return err
	}
	tr.LibraryID = libraryID
	return store.AddTrack(tr)
}

// addAudiobook adds a wanted audiobook to an audiobook library.
func addAudiobook(store *library.Store, libraryID int64, b *library.Audiobook) error {
	if b.Title == "" {
		return errors.New("audiobook title is required")
	}
	if _, err := catalogLibrary(store, libraryID, library.TypeAudiobooks); err != nil {
		return err
	}
	b.LibraryID = libraryID
	return store.AddAudiobook(b)
}

// addMovie adds a wanted movie to a movie library.
func addMovie(store *library.Store, libraryID int64, m *library.Movie) error {
	if m.Title == "" {
		return errors.New("movie title is required")
	}
	if _, err := catalogLibrary(store, libraryID, library.TypeMovies); err != nil {
		return err
	}
	m.LibraryID = libraryID
	return store.AddMovie(m)
}

// setMovieQuality applies quality flag values to a movie's override.
func setMovieQuality(store *library.Store, id int64, values map[string]string) (*library.Movie, error) {
	m, err := store.GetMovie(id)
	if err != nil {
		return nil, err
	}
	q, err := applyQualityOverride(m.QualityOverride, values)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateMovieQuality(m.ID, q); err != nil {
		return nil, err
	}
	m.QualityOverride = q
	return m, nil
}

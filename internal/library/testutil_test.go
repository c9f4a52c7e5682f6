package library

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/mediarr/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupTestDB(t))
}

func addTestLibrary(t *testing.T, s *Store, typ Type) *Library {
	t.Helper()
	lib := &Library{Name: string(typ), Path: "/media/" + string(typ), Type: typ}
	require.NoError(t, s.AddLibrary(lib))
	return lib
}

func addTestEpisode(t *testing.T, s *Store, libraryID int64, name string, season, episode int) (*TvShow, *Episode) {
	t.Helper()
	show := &TvShow{LibraryID: libraryID, Name: name, ProviderID: ptr(name)}
	require.NoError(t, s.AddShow(show))
	ep := &Episode{ShowID: show.ID, Season: season, Episode: episode}
	require.NoError(t, s.AddEpisode(ep))
	return show, ep
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

package torrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/database"
	"github.com/vmunix/mediarr/internal/library"
)

func setupStore(t *testing.T) (*Store, *library.Store) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), library.NewStore(db)
}

func TestStore_AddIsIdempotentByHash(t *testing.T) {
	store, _ := setupStore(t)

	first := &Torrent{InfoHash: "ABCDEF", Name: "Some.Release"}
	require.NoError(t, store.Add(first))
	assert.Equal(t, "abcdef", first.InfoHash)
	assert.Equal(t, int64(1), first.UserID)
	assert.Equal(t, StatusNone, first.PostProcessStatus)

	again := &Torrent{InfoHash: "abcdef", Name: "Other name"}
	require.NoError(t, store.Add(again))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Some.Release", again.Name)

	all, err := store.List(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_GetNotFound(t *testing.T) {
	store, _ := setupStore(t)
	_, err := store.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByHash("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListFilters(t *testing.T) {
	store, _ := setupStore(t)
	require.NoError(t, store.Add(&Torrent{InfoHash: "a", Name: "a", Progress: 1}))
	require.NoError(t, store.Add(&Torrent{InfoHash: "b", Name: "b", Progress: 0.5}))
	require.NoError(t, store.Add(&Torrent{InfoHash: "c", Name: "c", Progress: 1, PostProcessStatus: StatusUnmatched}))
	require.NoError(t, store.Add(&Torrent{InfoHash: "d", Name: "d", Progress: 1, PostProcessStatus: StatusCompleted}))

	complete, err := store.List(Filter{Complete: true})
	require.NoError(t, err)
	assert.Len(t, complete, 3)

	sweep, err := store.List(Filter{Statuses: []Status{StatusNone, StatusUnmatched}, Complete: true})
	require.NoError(t, err)
	require.Len(t, sweep, 2)
	assert.Equal(t, "a", sweep[0].Name)
	assert.Equal(t, "c", sweep[1].Name)

	other := int64(2)
	none, err := store.List(Filter{UserID: &other})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_UpdateProgressAndLink(t *testing.T) {
	store, lib := setupStore(t)
	l := &library.Library{Name: "Movies", Path: t.TempDir(), Type: library.TypeMovies}
	require.NoError(t, lib.AddLibrary(l))
	m := &library.Movie{LibraryID: l.ID, Title: "Heat", Year: 1995}
	require.NoError(t, lib.AddMovie(m))

	tr := &Torrent{InfoHash: "h", Name: "Heat"}
	require.NoError(t, store.Add(tr))

	require.NoError(t, store.UpdateProgress(tr.ID, "uploading", 1, 700, "/downloads"))
	require.NoError(t, store.SetLink(tr.ID, l.ID, library.MovieLink(m.ID)))

	got, err := store.Get(tr.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComplete())
	assert.Equal(t, "/downloads", got.SavePath)
	assert.Equal(t, int64(700), got.SizeBytes)
	require.NotNil(t, got.LibraryID)
	assert.Equal(t, l.ID, *got.LibraryID)
	require.NotNil(t, got.Link.MovieID)
	assert.Equal(t, m.ID, *got.Link.MovieID)

	assert.ErrorIs(t, store.UpdateProgress(999, "x", 0, 0, ""), ErrNotFound)
}

func TestStore_TransitionIsCompareAndSwap(t *testing.T) {
	store, _ := setupStore(t)
	tr := &Torrent{InfoHash: "h", Name: "x"}
	require.NoError(t, store.Add(tr))

	require.NoError(t, store.Transition(tr.ID, StatusNone, StatusProcessing))

	// A second caller working from the stale status loses.
	err := store.Transition(tr.ID, StatusNone, StatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, store.Finish(tr.ID, StatusError, "boom"))
	got, err := store.Get(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.PostProcessStatus)
	assert.Equal(t, "boom", got.PostProcessError)
	assert.NotNil(t, got.ProcessedAt)

	require.NoError(t, store.Transition(tr.ID, StatusError, StatusProcessing))
	require.NoError(t, store.Finish(tr.ID, StatusCompleted, ""))
	got, err = store.Get(tr.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PostProcessError)

	assert.ErrorIs(t, store.Transition(tr.ID, StatusCompleted, StatusProcessing), ErrInvalidTransition)
	assert.ErrorIs(t, store.Finish(tr.ID, StatusPending, ""), ErrInvalidTransition)
}

func TestStore_ResetInterrupted(t *testing.T) {
	store, _ := setupStore(t)
	stuck := &Torrent{InfoHash: "stuck", Name: "Stuck.S01E01"}
	done := &Torrent{InfoHash: "done", Name: "Done.S01E01"}
	require.NoError(t, store.Add(stuck))
	require.NoError(t, store.Add(done))
	require.NoError(t, store.Transition(stuck.ID, StatusNone, StatusProcessing))
	require.NoError(t, store.Transition(done.ID, StatusNone, StatusProcessing))
	require.NoError(t, store.Finish(done.ID, StatusUnmatched, ""))

	n, err := store.ResetInterrupted()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Get(stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.PostProcessStatus)
	assert.True(t, got.PostProcessStatus.NeedsSweep())
	require.NoError(t, store.Transition(stuck.ID, StatusPending, StatusProcessing))

	got, err = store.Get(done.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, got.PostProcessStatus)
}

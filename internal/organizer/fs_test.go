package organizer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/database"
	"github.com/vmunix/mediarr/internal/library"
)

type fixture struct {
	store *library.Store
	lib   *library.Library
	show  *library.TvShow
	ep    *library.Episode
	file  *library.MediaFile
}

func setup(t *testing.T, content string) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := library.NewStore(db)

	lib := &library.Library{Name: "TV", Path: t.TempDir(), Type: library.TypeTV, OrganizeFiles: true, RenameStyle: library.RenameClean}
	require.NoError(t, store.AddLibrary(lib))
	show := &library.TvShow{LibraryID: lib.ID, Name: "Breaking Bad"}
	require.NoError(t, store.AddShow(show))
	ep := &library.Episode{ShowID: show.ID, Season: 1, Episode: 2, Title: "Gray Matter"}
	require.NoError(t, store.AddEpisode(ep))

	src := filepath.Join(t.TempDir(), "Breaking.Bad.S01E02.mkv")
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	file := &library.MediaFile{LibraryID: lib.ID, Path: src, Link: library.EpisodeLink(ep.ID)}
	require.NoError(t, store.CreateMediaFile(file))

	return &fixture{store: store, lib: lib, show: show, ep: ep, file: file}
}

func (fx *fixture) request(s Settings) Request {
	return Request{File: fx.file, Show: fx.show, Episode: fx.ep, LibraryPath: fx.lib.Path, Settings: s}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFS_FullOrganizeSettings(t *testing.T) {
	fx := setup(t, "x")
	o := New(fx.store, Config{Action: ActionCopy}, testLogger())

	s, err := o.FullOrganizeSettings(context.Background(), fx.show)
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.Equal(t, library.RenameClean, s.RenameStyle)
	assert.Equal(t, ActionCopy, s.Action)

	off := false
	style := library.RenamePreserveInfo
	fx.show.OrganizeFilesOverride = &off
	fx.show.RenameStyleOverride = &style
	s, err = o.FullOrganizeSettings(context.Background(), fx.show)
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.Equal(t, library.RenamePreserveInfo, s.RenameStyle)
}

func TestFS_OrganizeFile_Move(t *testing.T) {
	fx := setup(t, "episode")
	o := New(fx.store, Config{}, testLogger())
	src := fx.file.Path

	res, err := o.OrganizeFile(context.Background(), fx.request(Settings{RenameStyle: library.RenameClean}))
	require.NoError(t, err)
	assert.Equal(t, library.OrganizeOrganized, res.Status)

	want := filepath.Join(fx.lib.Path, "Breaking Bad", "Season 01", "Breaking Bad - S01E02 - Gray Matter.mkv")
	assert.Equal(t, want, res.DestinationPath)
	assert.FileExists(t, want)
	assert.NoFileExists(t, src)

	got, err := fx.store.GetMediaFile(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got.Path)
	assert.Equal(t, src, got.OriginalPath)
	assert.Equal(t, library.OrganizeOrganized, got.OrganizeStatus)
}

func TestFS_OrganizeFile_CopyAndHardlinkKeepSource(t *testing.T) {
	for _, action := range []Action{ActionCopy, ActionHardlink} {
		t.Run(string(action), func(t *testing.T) {
			fx := setup(t, "episode")
			o := New(fx.store, Config{}, testLogger())

			res, err := o.OrganizeFile(context.Background(), fx.request(Settings{RenameStyle: library.RenameClean, Action: action}))
			require.NoError(t, err)
			assert.FileExists(t, res.DestinationPath)
			assert.FileExists(t, res.SourcePath)
		})
	}
}

func TestFS_OrganizeFile_DryRun(t *testing.T) {
	fx := setup(t, "episode")
	o := New(fx.store, Config{}, testLogger())

	res, err := o.OrganizeFile(context.Background(), fx.request(Settings{RenameStyle: library.RenameClean, DryRun: true}))
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.NoFileExists(t, res.DestinationPath)
	assert.FileExists(t, fx.file.Path)

	got, err := fx.store.GetMediaFile(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, library.OrganizePending, got.OrganizeStatus)
}

func TestFS_OrganizeFile_Conflict(t *testing.T) {
	fx := setup(t, "episode")
	o := New(fx.store, Config{}, testLogger())

	dest := filepath.Join(fx.lib.Path, "Breaking Bad", "Season 01", "Breaking Bad - S01E02 - Gray Matter.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("a different file"), 0o644))

	res, err := o.OrganizeFile(context.Background(), fx.request(Settings{RenameStyle: library.RenameClean}))
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.Equal(t, library.OrganizeConflicted, res.Status)
	assert.FileExists(t, fx.file.Path)

	got, err := fx.store.GetMediaFile(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, library.OrganizeConflicted, got.OrganizeStatus)
	assert.NotEmpty(t, got.OrganizeError)
}

func TestFS_OrganizeFile_SameSizeIsAlreadyOrganized(t *testing.T) {
	fx := setup(t, "episode")
	o := New(fx.store, Config{}, testLogger())

	dest := filepath.Join(fx.lib.Path, "Breaking Bad", "Season 01", "Breaking Bad - S01E02 - Gray Matter.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("episode"), 0o644))

	res, err := o.OrganizeFile(context.Background(), fx.request(Settings{RenameStyle: library.RenameClean}))
	require.NoError(t, err)
	assert.True(t, res.AlreadyOrganized)
	assert.Equal(t, library.OrganizeOrganized, res.Status)
}

func TestFS_CleanupEmptyFolders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "keep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep", "file.mkv"), []byte("x"), 0o644))

	o := New(nil, Config{}, testLogger())
	n, err := o.CleanupEmptyFolders(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoDirExists(t, filepath.Join(root, "a"))
	assert.DirExists(t, filepath.Join(root, "keep"))
	assert.DirExists(t, root)
}

func TestCopyFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "dst.mkv")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("existing"), 0o644))

	_, err := CopyFile(src, dst)
	assert.ErrorIs(t, err, ErrDestinationExists)
}

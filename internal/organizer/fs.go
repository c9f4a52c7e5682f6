package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/vmunix/mediarr/internal/library"
)

// Config holds the organizer defaults that are not per library.
type Config struct {
	Action Action
	DryRun bool
}

// FS organizes files on the local filesystem.
type FS struct {
	store  *library.Store
	cfg    Config
	logger *slog.Logger
}

var _ Service = (*FS)(nil)

// New creates a filesystem organizer.
func New(store *library.Store, cfg Config, logger *slog.Logger) *FS {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Action.Valid() {
		cfg.Action = ActionMove
	}
	return &FS{store: store, cfg: cfg, logger: logger.With("component", "organizer")}
}

// FullOrganizeSettings merges the show's overrides over its library's policy.
func (o *FS) FullOrganizeSettings(_ context.Context, show *library.TvShow) (Settings, error) {
	lib, err := o.store.GetLibrary(show.LibraryID)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		Enabled:     lib.OrganizeFiles,
		RenameStyle: lib.RenameStyle,
		Action:      o.cfg.Action,
		DryRun:      o.cfg.DryRun,
	}
	if show.OrganizeFilesOverride != nil {
		s.Enabled = *show.OrganizeFilesOverride
	}
	if show.RenameStyleOverride != nil {
		s.RenameStyle = *show.RenameStyleOverride
	}
	if lib.NamingPattern != nil {
		s.NamingPattern = *lib.NamingPattern
	}
	return s, nil
}

// OrganizeFile places one episode file under the library root. A
// destination already holding a file of the same size counts as organized;
// a different size is a conflict and nothing is touched.
func (o *FS) OrganizeFile(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := req.File
	rel := EpisodePath(req.Settings.RenameStyle, req.Settings.NamingPattern, req.Show, req.Episode, f)
	dest := filepath.Join(req.LibraryPath, filepath.FromSlash(rel))

	res := &Result{
		SourcePath:      f.Path,
		DestinationPath: dest,
		RelativePath:    rel,
		DryRun:          req.Settings.DryRun,
	}
	log := o.logger.With("media_file_id", f.ID, "source", f.Path, "destination", dest)

	if err := ValidatePath(dest, req.LibraryPath); err != nil {
		return o.failed(res, f, library.OrganizeError, fmt.Errorf("organize %s: %w", rel, err))
	}

	if filepath.Clean(f.Path) == filepath.Clean(dest) {
		res.Status = library.OrganizeOrganized
		res.AlreadyOrganized = true
		return res, nil
	}

	if info, err := os.Stat(dest); err == nil {
		src, serr := os.Stat(f.Path)
		if serr == nil && src.Size() == info.Size() {
			res.Status = library.OrganizeOrganized
			res.AlreadyOrganized = true
			res.Message = "destination already holds this file"
			log.Debug("already organized")
			return res, nil
		}
		return o.failed(res, f, library.OrganizeConflicted, fmt.Errorf("organize %s: %w", rel, ErrDestinationExists))
	}

	if req.Settings.DryRun {
		res.Status = library.OrganizePending
		res.Message = fmt.Sprintf("would %s to %s", o.action(req), rel)
		return res, nil
	}

	if err := transfer(o.action(req), f.Path, dest); err != nil {
		return o.failed(res, f, library.OrganizeError, err)
	}

	if err := o.store.MarkOrganized(f.ID, dest, rel, f.Path); err != nil {
		return nil, fmt.Errorf("record organized file %d: %w", f.ID, err)
	}
	res.Status = library.OrganizeOrganized
	log.Info("organized file", "action", o.action(req))
	return res, nil
}

func (o *FS) action(req Request) Action {
	if req.Settings.Action.Valid() {
		return req.Settings.Action
	}
	return o.cfg.Action
}

// failed records the failure on the file unless this is a dry run.
func (o *FS) failed(res *Result, f *library.MediaFile, status library.OrganizeStatus, err error) (*Result, error) {
	res.Status = status
	res.Message = err.Error()
	if !res.DryRun {
		if merr := o.store.MarkOrganizeFailed(f.ID, status, err.Error()); merr != nil {
			o.logger.Warn("failed to record organize failure", "media_file_id", f.ID, "error", merr)
		}
	}
	return res, err
}

// CleanupEmptyFolders removes empty directories below root, deepest first.
// root itself is kept.
func (o *FS) CleanupEmptyFolders(ctx context.Context, root string) (int, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	removed := 0
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			removed++
		}
	}
	if removed > 0 {
		o.logger.Info("removed empty folders", "root", root, "count", removed)
	}
	return removed, nil
}

func transfer(action Action, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrTransferFailed, err)
	}
	switch action {
	case ActionCopy:
		_, err := CopyFile(src, dst)
		return err
	case ActionHardlink:
		if err := os.Link(src, dst); err != nil {
			return fmt.Errorf("%w: hardlink: %v", ErrTransferFailed, err)
		}
		return nil
	default:
		err := os.Rename(src, dst)
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("%w: rename: %v", ErrTransferFailed, err)
		}
		if _, err := CopyFile(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("%w: remove source after copy: %v", ErrTransferFailed, err)
		}
		return nil
	}
}

// CopyFile copies src to dst, creating parent directories.
// Returns ErrDestinationExists if dst already exists.
func CopyFile(src, dst string) (int64, error) {
	if _, err := os.Stat(dst); err == nil {
		return 0, ErrDestinationExists
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("%w: create directory: %v", ErrTransferFailed, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %v", ErrTransferFailed, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: create destination: %v", ErrTransferFailed, err)
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, in)
	if err != nil {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("%w: copy content: %v", ErrTransferFailed, err)
	}
	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %v", ErrTransferFailed, err)
	}
	return size, nil
}

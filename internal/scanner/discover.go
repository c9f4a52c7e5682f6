package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/matcher"
	"github.com/vmunix/mediarr/pkg/release"
)

// DiscoveredFile is a media file found on disk during a scan.
type DiscoveredFile struct {
	Path         string
	RelativePath string
	Name         string
	Size         int64
	Info         *release.Info
	// ShowName is the parsed title, or the nearest non-season directory
	// when the file name has none.
	ShowName string
}

// discover walks root and returns every file the library type accepts.
// Unreadable directories are skipped.
func discover(root string, typ library.Type) ([]*DiscoveredFile, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("stat library root: %w", err)
	}

	var files []*DiscoveredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !typ.Accepts(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = d.Name()
		}
		files = append(files, newDiscoveredFile(path, rel, info.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library: %w", err)
	}
	return files, nil
}

func newDiscoveredFile(path, rel string, size int64) *DiscoveredFile {
	name := filepath.Base(path)
	parsed := release.Parse(name)
	show := parsed.Title
	if show == "" {
		dir := filepath.Dir(filepath.ToSlash(rel))
		if dir != "." {
			show = matcher.ShowNameFromPath(strings.Split(dir, "/"))
		}
	}
	return &DiscoveredFile{
		Path:         path,
		RelativePath: rel,
		Name:         name,
		Size:         size,
		Info:         parsed,
		ShowName:     show,
	}
}

// showGroup collects the episodes of one show found in a scan.
type showGroup struct {
	name  string
	year  int
	files []*DiscoveredFile
}

// groupByShow splits TV files into per-show groups and a batch of files
// that carry no season/episode marker or show name.
func groupByShow(files []*DiscoveredFile) (groups []*showGroup, unlinked []*DiscoveredFile) {
	index := make(map[string]*showGroup)
	for _, f := range files {
		if !f.Info.IsEpisode() || f.ShowName == "" {
			unlinked = append(unlinked, f)
			continue
		}
		key := strings.ToLower(f.ShowName)
		g, ok := index[key]
		if !ok {
			g = &showGroup{name: f.ShowName}
			index[key] = g
			groups = append(groups, g)
		}
		if g.year == 0 && f.Info.Year != 0 {
			g.year = f.Info.Year
		}
		g.files = append(g.files, f)
	}
	return groups, unlinked
}

package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/vmunix/mediarr/internal/library"
)

// taggedExtensions are containers dhowden/tag can read.
var taggedExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".m4b": true, ".ogg": true, ".opus": true,
	".aac": true, ".alac": true, ".dsf": true,
}

// HasTags reports whether the file's container carries readable tags.
func HasTags(path string) bool {
	return taggedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ReadTags reads the embedded metadata of an audio file.
func ReadTags(path string) (*library.EmbeddedTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	track, _ := m.Track()
	disc, _ := m.Disc()
	return &library.EmbeddedTags{
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		Album:       strings.TrimSpace(m.Album()),
		AlbumArtist: strings.TrimSpace(m.AlbumArtist()),
		Genre:       strings.TrimSpace(m.Genre()),
		Year:        m.Year(),
		Track:       track,
		Disc:        disc,
	}, nil
}

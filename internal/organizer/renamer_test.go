package organizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/mediarr/internal/library"
)

func TestEpisodePath(t *testing.T) {
	show := &library.TvShow{Name: "Breaking Bad", Year: 2008}
	ep := &library.Episode{Season: 1, Episode: 2, Title: "Cat's in the Bag..."}
	file := &library.MediaFile{
		Path:       "/downloads/Breaking.Bad.S01E02.720p.HDTV.x264-GRP.MKV",
		Resolution: "720p",
		Source:     "hdtv",
	}

	tests := []struct {
		name    string
		style   library.RenameStyle
		pattern string
		ep      *library.Episode
		want    string
	}{
		{
			name:  "clean",
			style: library.RenameClean,
			ep:    ep,
			want:  "Breaking Bad/Season 01/Breaking Bad - S01E02 - Cat's in the Bag.mkv",
		},
		{
			name:  "preserve info",
			style: library.RenamePreserveInfo,
			ep:    ep,
			want:  "Breaking Bad/Season 01/Breaking Bad - S01E02 - Cat's in the Bag [720p HDTV].mkv",
		},
		{
			name:  "none keeps file name",
			style: library.RenameNone,
			ep:    ep,
			want:  "Breaking Bad/Season 01/Breaking.Bad.S01E02.720p.HDTV.x264-GRP.MKV",
		},
		{
			name:  "clean without episode title",
			style: library.RenameClean,
			ep:    &library.Episode{Season: 3, Episode: 10},
			want:  "Breaking Bad/Season 03/Breaking Bad - S03E10.mkv",
		},
		{
			name:    "naming pattern wins",
			style:   library.RenameClean,
			pattern: "{show} ({year})/S{season}/{episode:03}.{ext}",
			ep:      ep,
			want:    "Breaking Bad (2008)/S1/002.mkv",
		},
		{
			name:    "pattern cannot climb out",
			pattern: "../{show}/{episode}.{ext}",
			ep:      ep,
			want:    "Breaking Bad/2.mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EpisodePath(tt.style, tt.pattern, show, tt.ep, file))
		})
	}
}

func TestApplyTemplate_UnknownPlaceholderKept(t *testing.T) {
	got := applyTemplate("{show} {unknown}", map[string]any{"show": "X"})
	assert.Equal(t, "X {unknown}", got)
}

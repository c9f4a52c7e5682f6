package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Episodes(t *testing.T) {
	tests := []struct {
		input    string
		title    string
		season   int
		episodes []int
		epTitle  string
	}{
		{"Show.Name.S01E02.mkv", "Show Name", 1, []int{2}, ""},
		{"Show Name - S01E02 - Pilot.mkv", "Show Name", 1, []int{2}, "Pilot"},
		{"show_name_s02e10_720p_hdtv.mp4", "show name", 2, []int{10}, ""},
		{"Show.Name.S03E01E02.1080p.WEB-DL.x264-GRP.mkv", "Show Name", 3, []int{1, 2}, ""},
		{"Show Name - S01E05-E07 - Triple.mkv", "Show Name", 1, []int{5, 6, 7}, "Triple"},
		{"Show Name 1x04.avi", "Show Name", 1, []int{4}, ""},
		{"S01E02.mkv", "", 1, []int{2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			info := Parse(tt.input)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.season, info.Season)
			assert.Equal(t, tt.episodes, info.Episodes)
			assert.Equal(t, tt.episodes[0], info.Episode)
			assert.Equal(t, tt.epTitle, info.EpisodeTitle)
			assert.True(t, info.IsEpisode())
		})
	}
}

func TestParse_ShowYear(t *testing.T) {
	info := Parse("Show Name (2019) - S01E01 - Start.mkv")
	assert.Equal(t, "Show Name", info.Title)
	assert.Equal(t, 2019, info.Year)
	assert.Equal(t, 1, info.Season)
}

func TestParse_Movies(t *testing.T) {
	tests := []struct {
		input string
		title string
		year  int
	}{
		{"Unknown Movie (2099).mkv", "Unknown Movie", 2099},
		{"Movie.Name.2019.1080p.BluRay.x264-GRP.mkv", "Movie Name", 2019},
		{"2001.A.Space.Odyssey.1968.720p.mkv", "2001 A Space Odyssey", 1968},
		{"Some Film.mp4", "Some Film", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			info := Parse(tt.input)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.year, info.Year)
			assert.False(t, info.IsEpisode())
		})
	}
}

func TestParse_Quality(t *testing.T) {
	info := Parse("Movie.Name.2019.2160p.UHD.BluRay.REMUX.HDR10.HEVC-GRP.mkv")
	assert.Equal(t, Resolution2160p, info.Resolution)
	assert.Equal(t, SourceBluRay, info.Source)
	assert.Equal(t, CodecX265, info.Codec)
	assert.Equal(t, HDR10, info.HDR)
	assert.Equal(t, "GRP", info.Group)
	assert.True(t, info.IsRemux)

	info = Parse("Show.S01E01.720p.WEBRip.H.264-abc.mkv")
	assert.Equal(t, Resolution720p, info.Resolution)
	assert.Equal(t, SourceWEBRip, info.Source)
	assert.Equal(t, CodecX264, info.Codec)
	assert.Equal(t, "abc", info.Group)
}

func TestParse_NoGroupWithoutQualityMarkers(t *testing.T) {
	info := Parse("Spider-Man.mkv")
	assert.Equal(t, "Spider-Man", info.Title)
	assert.Empty(t, info.Group)
}

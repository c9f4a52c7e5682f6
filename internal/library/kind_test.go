package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_Accepts(t *testing.T) {
	tests := []struct {
		typ  Type
		path string
		want bool
	}{
		{TypeTV, "/tv/Show/S01E01.mkv", true},
		{TypeTV, "/tv/Show/S01E01.MKV", true},
		{TypeMovies, "/movies/Heat.1995.mp4", true},
		{TypeMovies, "/movies/Heat.1995.flac", false},
		{TypeMusic, "/music/song.flac", true},
		{TypeAudiobooks, "/books/book.m4b", true},
		{TypeAudiobooks, "/books/cover.jpg", false},
		{TypeTV, "/tv/Show/sample.mkv", false},
		{TypeTV, "/tv/Show/Show.S01E01.1080p-sample.mkv", false},
		{TypeTV, "/tv/Show/Show.S01E01.Sample.mkv", false},
		{TypeTV, "/tv/The Sampler/The.Sampler.S01E02.1080p.WEB-DL.mkv", true},
		{TypeMusic, "/music/Various - Summer Sampler.mp3", true},
		{TypeMovies, "/movies/Resampled.2021.mkv", true},
		{TypeTV, "/tv/Show/.hidden.mkv", false},
		{TypeTV, "/tv/Show/S01E01.mkv.part", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.Accepts(tt.path), "%s accepts %q", tt.typ, tt.path)
	}
}

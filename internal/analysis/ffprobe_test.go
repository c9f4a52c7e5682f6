package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "hevc", "width": 3840, "height": 2160,
     "color_transfer": "smpte2084", "color_primaries": "bt2020", "disposition": {"default": 1}},
    {"index": 1, "codec_type": "audio", "codec_name": "eac3", "channels": 6,
     "disposition": {"default": 1}, "tags": {"language": "eng"}},
    {"index": 2, "codec_type": "audio", "codec_name": "aac", "channels": 2,
     "disposition": {"default": 0}, "tags": {"language": "jpn"}},
    {"index": 3, "codec_type": "subtitle", "codec_name": "subrip", "tags": {"language": "eng"}},
    {"index": 4, "codec_type": "video", "codec_name": "mjpeg", "width": 600, "height": 600,
     "disposition": {"attached_pic": 1}}
  ],
  "chapters": [
    {"id": 0, "start_time": "0.000000", "end_time": "300.500000", "tags": {"title": "Intro"}},
    {"id": 1, "start_time": "300.500000", "end_time": "7200.000000", "tags": {"title": "Main"}}
  ],
  "format": {"format_name": "matroska,webm", "duration": "7200.000000", "bit_rate": "25000000"}
}`

func TestParseProbeOutput(t *testing.T) {
	a, err := parseProbeOutput([]byte(sampleProbe))
	require.NoError(t, err)

	assert.Equal(t, "matroska", a.Container)
	assert.InDelta(t, 7200.0, a.Duration, 0.001)
	assert.Equal(t, int64(25000000), a.Bitrate)

	require.Len(t, a.VideoStreams, 1, "cover art is not a video stream")
	assert.Equal(t, "HDR10", a.VideoStreams[0].HDRType)
	assert.Len(t, a.AudioStreams, 2)
	assert.Len(t, a.SubtitleStreams, 1)
	require.Len(t, a.Chapters, 2)
	assert.Equal(t, "Main", a.Chapters[1].Title)
	assert.InDelta(t, 300.5, a.Chapters[1].Start, 0.001)

	assert.Equal(t, "eac3", a.PrimaryAudio().Codec)
	assert.Equal(t, 3840, a.PrimaryVideo().Width)
}

func TestParseProbeOutput_Invalid(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"))
	assert.Error(t, err)
}

func TestHDRType(t *testing.T) {
	tests := []struct {
		name   string
		stream probeStream
		want   string
	}{
		{"dolby vision", probeStream{SideDataList: []sideData{{SideDataType: "DOVI configuration record"}}}, "DV"},
		{"hdr10", probeStream{ColorTransfer: "smpte2084", ColorPrimaries: "bt2020"}, "HDR10"},
		{"pq without bt2020", probeStream{ColorTransfer: "smpte2084", ColorPrimaries: "bt709"}, "PQ"},
		{"hlg", probeStream{ColorTransfer: "arib-std-b67"}, "HLG"},
		{"sdr", probeStream{ColorTransfer: "bt709"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hdrType(tt.stream))
		})
	}
}

func TestToRecord(t *testing.T) {
	a, err := parseProbeOutput([]byte(sampleProbe))
	require.NoError(t, err)

	rec := toRecord(a)
	assert.Equal(t, "2160p", rec.Resolution)
	assert.Equal(t, "hevc", rec.VideoCodec)
	assert.Equal(t, "eac3", rec.AudioCodec)
	assert.Len(t, rec.Streams, 4)
	assert.Len(t, rec.Chapters, 2)
}

func TestHasTags(t *testing.T) {
	assert.True(t, HasTags("/music/a.FLAC"))
	assert.True(t, HasTags("/books/b.m4b"))
	assert.False(t, HasTags("/tv/c.mkv"))
}

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	path string
}

// NewFFprobe creates a prober. An empty path means "ffprobe" on $PATH.
func NewFFprobe(path string) *FFprobe {
	if path == "" {
		path = "ffprobe"
	}
	return &FFprobe{path: path}
}

type probeOutput struct {
	Format   probeFormat    `json:"format"`
	Streams  []probeStream  `json:"streams"`
	Chapters []probeChapter `json:"chapters"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Bitrate    string `json:"bit_rate"`
}

type probeStream struct {
	Index          int               `json:"index"`
	CodecType      string            `json:"codec_type"`
	CodecName      string            `json:"codec_name"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Channels       int               `json:"channels"`
	ColorTransfer  string            `json:"color_transfer"`
	ColorPrimaries string            `json:"color_primaries"`
	SideDataList   []sideData        `json:"side_data_list"`
	Disposition    map[string]int    `json:"disposition"`
	Tags           map[string]string `json:"tags"`
}

// sideData carries the Dolby Vision configuration record when present.
type sideData struct {
	SideDataType string `json:"side_data_type"`
}

type probeChapter struct {
	ID        int64             `json:"id"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

// Analyze probes path and returns its streams and chapters.
func (f *FFprobe) Analyze(ctx context.Context, path string) (*MediaAnalysis, error) {
	cmd := exec.CommandContext(ctx, f.path,
		"-v", "quiet", "-print_format", "json",
		"-show_format", "-show_streams", "-show_chapters",
		path)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (*MediaAnalysis, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	a := &MediaAnalysis{
		Container: firstFormatName(out.Format.FormatName),
		Duration:  parseFloat(out.Format.Duration),
	}
	a.Bitrate, _ = strconv.ParseInt(out.Format.Bitrate, 10, 64)

	for _, s := range out.Streams {
		isDefault := s.Disposition["default"] == 1
		lang := s.Tags["language"]
		switch s.CodecType {
		case "video":
			// Cover art is reported as a video stream.
			if s.Disposition["attached_pic"] == 1 {
				continue
			}
			a.VideoStreams = append(a.VideoStreams, VideoStream{
				Index:     s.Index,
				Codec:     s.CodecName,
				Width:     s.Width,
				Height:    s.Height,
				HDRType:   hdrType(s),
				IsDefault: isDefault,
			})
		case "audio":
			a.AudioStreams = append(a.AudioStreams, AudioStream{
				Index:     s.Index,
				Codec:     s.CodecName,
				Channels:  s.Channels,
				Language:  lang,
				IsDefault: isDefault,
			})
		case "subtitle":
			a.SubtitleStreams = append(a.SubtitleStreams, SubtitleStream{
				Index:     s.Index,
				Codec:     s.CodecName,
				Language:  lang,
				IsDefault: isDefault,
			})
		}
	}

	for i, c := range out.Chapters {
		a.Chapters = append(a.Chapters, Chapter{
			Index: i,
			Title: c.Tags["title"],
			Start: parseFloat(c.StartTime),
			End:   parseFloat(c.EndTime),
		})
	}
	return a, nil
}

// hdrType returns "DV", "HDR10", "PQ", "HLG" or "" for SDR.
func hdrType(s probeStream) string {
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "DOVI configuration record" || sd.SideDataType == "Dolby Vision RPU Data" {
			return "DV"
		}
	}
	switch strings.ToLower(s.ColorTransfer) {
	case "smpte2084":
		if strings.Contains(strings.ToLower(s.ColorPrimaries), "bt2020") {
			return "HDR10"
		}
		return "PQ"
	case "arib-std-b67":
		return "HLG"
	}
	return ""
}

// firstFormatName picks "matroska" out of "matroska,webm".
func firstFormatName(name string) string {
	if i := strings.IndexByte(name, ','); i >= 0 {
		return name[:i]
	}
	return name
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

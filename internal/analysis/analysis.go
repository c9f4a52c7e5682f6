// Package analysis probes media files, persists their technical details and
// grades them against the library's quality targets.
package analysis

import (
	"context"
)

//go:generate mockgen -source=analysis.go -destination=mocks/prober.go -package=mocks

// Job asks the pipeline to analyze one media file.
type Job struct {
	MediaFileID int64
	Path        string
}

// Submitter accepts analysis jobs without blocking. It is satisfied by
// *workqueue.Queue[Job].
type Submitter interface {
	Submit(job Job) error
}

// Prober extracts stream information from a file.
type Prober interface {
	Analyze(ctx context.Context, path string) (*MediaAnalysis, error)
}

// MediaAnalysis is what a probe reports about a file.
type MediaAnalysis struct {
	Container       string
	Duration        float64 // seconds
	Bitrate         int64
	VideoStreams    []VideoStream
	AudioStreams    []AudioStream
	SubtitleStreams []SubtitleStream
	Chapters        []Chapter
}

// VideoStream describes one video stream.
type VideoStream struct {
	Index     int
	Codec     string
	Width     int
	Height    int
	HDRType   string // "" for SDR
	IsDefault bool
}

// AudioStream describes one audio stream.
type AudioStream struct {
	Index     int
	Codec     string
	Channels  int
	Language  string
	IsDefault bool
}

// SubtitleStream describes one subtitle stream.
type SubtitleStream struct {
	Index     int
	Codec     string
	Language  string
	IsDefault bool
}

// Chapter is a chapter marker.
type Chapter struct {
	Index int
	Title string
	Start float64
	End   float64
}

// PrimaryVideo returns the default video stream, or the first one.
func (a *MediaAnalysis) PrimaryVideo() *VideoStream {
	for i := range a.VideoStreams {
		if a.VideoStreams[i].IsDefault {
			return &a.VideoStreams[i]
		}
	}
	if len(a.VideoStreams) > 0 {
		return &a.VideoStreams[0]
	}
	return nil
}

// PrimaryAudio returns the default audio stream, or the first one.
func (a *MediaAnalysis) PrimaryAudio() *AudioStream {
	for i := range a.AudioStreams {
		if a.AudioStreams[i].IsDefault {
			return &a.AudioStreams[i]
		}
	}
	if len(a.AudioStreams) > 0 {
		return &a.AudioStreams[0]
	}
	return nil
}

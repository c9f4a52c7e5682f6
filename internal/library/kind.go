package library

import (
	"path/filepath"
	"regexp"
	"strings"
)

// sampleRe matches "sample" as a separate token of a file name, so
// "Show.S01E01-sample" is a sample and "The.Sampler.S01E02" is not.
var sampleRe = regexp.MustCompile(`(?i)(^|[\s._-])sample($|[\s._-])`)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true, ".mov": true, ".wmv": true,
	".ts": true, ".webm": true, ".mpg": true, ".mpeg": true, ".m2ts": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".m4b": true, ".ogg": true, ".opus": true,
	".wav": true, ".aac": true, ".wma": true,
}

// IsVideoFile reports whether path has a known video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsIgnoredFile reports files that are never imported: hidden files,
// samples and partial downloads.
func IsIgnoredFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasPrefix(name, ".") ||
		sampleRe.MatchString(stem) ||
		strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".!qb")
}

// Accepts reports whether a file belongs in a library of this type.
func (t Type) Accepts(path string) bool {
	if IsIgnoredFile(path) {
		return false
	}
	if t.IsVideo() {
		return IsVideoFile(path)
	}
	return IsAudioFile(path)
}

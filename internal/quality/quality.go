// Package quality classifies analyzed files against a library's quality targets.
package quality

import (
	"slices"
	"strings"

	"github.com/vmunix/mediarr/internal/library"
)

// Probe is the technical data a verdict is based on.
type Probe struct {
	Resolution   string // "2160p", "1080p", ... or "" when unknown
	VideoCodec   string
	AudioCodec   string
	HDRType      string // "" for SDR
	Source       string // parsed from the file name, "" when unknown
	ReleaseGroup string
	AudioOnly    bool // music and audiobook libraries
}

// Effective merges an item override onto the library settings field by
// field. A nil override list falls back to the library's.
func Effective(override *library.QualitySettings, lib library.QualitySettings) library.QualitySettings {
	if override == nil {
		return lib
	}
	pick := func(o, l []string) []string {
		if o != nil {
			return o
		}
		return l
	}
	return library.QualitySettings{
		AllowedResolutions:    pick(override.AllowedResolutions, lib.AllowedResolutions),
		AllowedVideoCodecs:    pick(override.AllowedVideoCodecs, lib.AllowedVideoCodecs),
		AllowedAudioCodecs:    pick(override.AllowedAudioCodecs, lib.AllowedAudioCodecs),
		AllowedHDRTypes:       pick(override.AllowedHDRTypes, lib.AllowedHDRTypes),
		AllowedSources:        pick(override.AllowedSources, lib.AllowedSources),
		ReleaseGroupWhitelist: pick(override.ReleaseGroupWhitelist, lib.ReleaseGroupWhitelist),
		ReleaseGroupBlacklist: pick(override.ReleaseGroupBlacklist, lib.ReleaseGroupBlacklist),
	}
}

// AcceptsAny reports whether no allow-list or group list is set.
func AcceptsAny(s library.QualitySettings) bool {
	return len(s.AllowedResolutions) == 0 &&
		len(s.AllowedVideoCodecs) == 0 &&
		len(s.AllowedAudioCodecs) == 0 &&
		len(s.AllowedHDRTypes) == 0 &&
		len(s.AllowedSources) == 0 &&
		len(s.ReleaseGroupWhitelist) == 0 &&
		len(s.ReleaseGroupBlacklist) == 0
}

// verdict is ordered so the worst one wins when combining.
type verdict int

const (
	verdictOK verdict = iota
	verdictExceeds
	verdictUnknown
	verdictSuboptimal
)

func (v verdict) status() library.QualityStatus {
	switch v {
	case verdictExceeds:
		return library.QualityExceeds
	case verdictUnknown:
		return library.QualityUnknown
	case verdictSuboptimal:
		return library.QualitySuboptimal
	default:
		return library.QualityOptimal
	}
}

// Evaluate classifies a file. Widening any list never makes the result worse.
func Evaluate(s library.QualitySettings, p Probe) library.QualityStatus {
	if AcceptsAny(s) {
		return library.QualityOptimal
	}

	if p.AudioOnly {
		return listed(s.AllowedAudioCodecs, p.AudioCodec, NormalizeCodec).status()
	}

	if p.Resolution == "" && p.VideoCodec == "" {
		return library.QualityUnknown
	}

	worst := max(
		resolutionVerdict(s.AllowedResolutions, p.Resolution),
		listed(s.AllowedVideoCodecs, p.VideoCodec, NormalizeCodec),
		listed(s.AllowedAudioCodecs, p.AudioCodec, NormalizeCodec),
		listed(s.AllowedHDRTypes, hdrOrSDR(p.HDRType), normalizeHDR),
		sourceVerdict(s.AllowedSources, p.Source),
		groupVerdict(s, p.ReleaseGroup),
	)
	return worst.status()
}

// resolutionVerdict accepts listed resolutions. Anything better than the
// lowest listed one exceeds the target; anything below it falls short.
func resolutionVerdict(allowed []string, resolution string) verdict {
	if len(allowed) == 0 {
		return verdictOK
	}
	rank := ResolutionRank(resolution)
	if rank == 0 {
		return verdictUnknown
	}
	lowest := 0
	for _, a := range allowed {
		r := ResolutionRank(a)
		if r == rank {
			return verdictOK
		}
		if r > 0 && (lowest == 0 || r < lowest) {
			lowest = r
		}
	}
	if lowest > 0 && rank > lowest {
		return verdictExceeds
	}
	return verdictSuboptimal
}

func listed(allowed []string, value string, norm func(string) string) verdict {
	if len(allowed) == 0 {
		return verdictOK
	}
	if value == "" {
		return verdictUnknown
	}
	v := norm(value)
	if slices.ContainsFunc(allowed, func(a string) bool { return norm(a) == v }) {
		return verdictOK
	}
	return verdictSuboptimal
}

func sourceVerdict(allowed []string, source string) verdict {
	if source == "" || strings.EqualFold(source, "unknown") {
		return verdictOK
	}
	return listed(allowed, source, normalizeSource)
}

func groupVerdict(s library.QualitySettings, group string) verdict {
	g := strings.ToLower(group)
	if group != "" && slices.ContainsFunc(s.ReleaseGroupBlacklist, func(b string) bool { return strings.ToLower(b) == g }) {
		return verdictSuboptimal
	}
	if len(s.ReleaseGroupWhitelist) == 0 {
		return verdictOK
	}
	if group == "" {
		return verdictUnknown
	}
	if slices.ContainsFunc(s.ReleaseGroupWhitelist, func(w string) bool { return strings.ToLower(w) == g }) {
		return verdictOK
	}
	return verdictSuboptimal
}

func hdrOrSDR(hdr string) string {
	if hdr == "" {
		return "SDR"
	}
	return hdr
}

func normalizeHDR(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dv", "dovi", "dolby vision", "dolbyvision":
		return "dv"
	case "hdr10+", "hdr10plus":
		return "hdr10+"
	case "sdr", "none", "":
		return "sdr"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func normalizeSource(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
	switch s {
	case "bluray", "bdrip", "brrip", "remux":
		return "bluray"
	case "web", "webdl":
		return "webdl"
	}
	return s
}

// NormalizeCodec folds encoder and format names to one spelling.
func NormalizeCodec(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "h264", "h.264", "x264", "avc", "avc1":
		return "h264"
	case "hevc", "h265", "h.265", "x265", "hvc1", "hev1":
		return "hevc"
	case "av1", "av01":
		return "av1"
	case "xvid", "divx", "mpeg4":
		return "mpeg4"
	case "ac3", "ac-3", "dd":
		return "ac3"
	case "eac3", "e-ac-3", "ddp", "dd+":
		return "eac3"
	case "dts", "dca":
		return "dts"
	default:
		return strings.ToLower(strings.TrimSpace(c))
	}
}

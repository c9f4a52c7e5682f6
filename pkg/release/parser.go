package release

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// S01E02, S01E02E03, S01E02-E03, s1e2
	seasonEpisodeRe = regexp.MustCompile(`(?i)\bS(\d{1,2})[ ._-]?E(\d{1,3})((?:[ -]?E\d{1,3})*)`)
	extraEpisodeRe  = regexp.MustCompile(`(?i)E(\d{1,3})`)
	// 1x02
	crossEpisodeRe = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	yearRe         = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	resolutionRe   = regexp.MustCompile(`(?i)\b(2160p|4k|uhd|1080p|1080i|720p|576p|480p)\b`)
	groupRe        = regexp.MustCompile(`[^\s-]-([A-Za-z0-9]+)$`)
	// markers that end the title portion of a release name
	qualityMarkerRe = regexp.MustCompile(`(?i)\b(2160p|1080p|1080i|720p|576p|480p|4k|uhd|bluray|blu-ray|bdrip|brrip|web-?dl|webrip|hdtv|dvdrip|remux|x264|x265|h\.?264|h\.?265|hevc|proper|repack)\b`)
)

// mediaExtensions are stripped from names before parsing.
var mediaExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true, ".mov": true, ".wmv": true,
	".ts": true, ".webm": true, ".mpg": true, ".mpeg": true, ".m2ts": true,
	".mp3": true, ".flac": true, ".m4a": true, ".m4b": true, ".ogg": true, ".opus": true,
	".wav": true, ".aac": true, ".wma": true,
}

// Parse extracts information from a release or file name.
func Parse(name string) *Info {
	info := &Info{}

	if ext := strings.ToLower(filepath.Ext(name)); mediaExtensions[ext] {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	// Normalize separators but keep " - " boundaries intact
	normalized := strings.ReplaceAll(name, "_", " ")
	normalized = dotSeparators(normalized)

	titleEnd := len(normalized)

	if loc := seasonEpisodeRe.FindStringSubmatchIndex(normalized); loc != nil {
		info.Season, _ = strconv.Atoi(normalized[loc[2]:loc[3]])
		first, _ := strconv.Atoi(normalized[loc[4]:loc[5]])
		info.Episode = first
		info.Episodes = []int{first}
		if loc[6] >= 0 {
			for _, m := range extraEpisodeRe.FindAllStringSubmatch(normalized[loc[6]:loc[7]], -1) {
				if n, err := strconv.Atoi(m[1]); err == nil {
					info.Episodes = append(info.Episodes, n)
				}
			}
		}
		info.Episodes = expandRange(info.Episodes)
		titleEnd = loc[0]
		info.EpisodeTitle = episodeTitle(normalized[loc[1]:])
	} else if loc := crossEpisodeRe.FindStringSubmatchIndex(normalized); loc != nil && !resolutionLike(normalized[loc[0]:loc[1]]) {
		info.Season, _ = strconv.Atoi(normalized[loc[2]:loc[3]])
		info.Episode, _ = strconv.Atoi(normalized[loc[4]:loc[5]])
		info.Episodes = []int{info.Episode}
		titleEnd = loc[0]
		info.EpisodeTitle = episodeTitle(normalized[loc[1]:])
	}

	if loc := qualityMarkerRe.FindStringIndex(normalized); loc != nil && loc[0] < titleEnd {
		titleEnd = loc[0]
	}

	// The release year is the last year inside the title portion that is
	// not the very first token ("2001 A Space Odyssey 1968").
	if loc := yearRe.FindAllStringIndex(normalized[:titleEnd], -1); len(loc) > 0 {
		for i := len(loc) - 1; i >= 0; i-- {
			start := loc[i][0]
			if strings.TrimSpace(strings.Trim(normalized[:start], " ([-")) == "" {
				continue
			}
			info.Year, _ = strconv.Atoi(normalized[start:loc[i][1]])
			titleEnd = start
			break
		}
	}

	if qualityMarkerRe.MatchString(normalized) {
		if m := groupRe.FindStringSubmatch(name); m != nil {
			info.Group = m[1]
		}
	}

	info.Title = cleanTitlePart(normalized[:titleEnd])
	info.Resolution = parseResolution(normalized)
	info.Source = parseSource(normalized)
	info.Codec = parseCodec(normalized)
	info.HDR = parseHDR(normalized)

	lower := strings.ToLower(normalized)
	info.Proper = containsWord(lower, "proper")
	info.Repack = containsWord(lower, "repack") || containsWord(lower, "rerip")
	info.IsRemux = containsWord(lower, "remux")

	info.CleanTitle = CleanTitle(info.Title)
	return info
}

// dotSeparators turns dot-separated names into space-separated ones while
// keeping dots inside tokens like "H.264" or "5.1".
func dotSeparators(s string) string {
	if strings.Count(s, ".") < 2 && strings.Contains(s, " ") {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r == '.' {
			prevDigit := i > 0 && isDigit(runes[i-1])
			nextDigit := i+1 < len(runes) && isDigit(runes[i+1])
			prevH := i > 0 && (runes[i-1] == 'H' || runes[i-1] == 'h')
			if (prevDigit && nextDigit) || (prevH && nextDigit) {
				b.WriteRune(r)
				continue
			}
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func resolutionLike(s string) bool {
	// "1920x1080" style dimensions are not episode markers
	return len(s) > 6
}

func expandRange(eps []int) []int {
	if len(eps) != 2 || eps[1] <= eps[0]+1 {
		return eps
	}
	out := make([]int, 0, eps[1]-eps[0]+1)
	for n := eps[0]; n <= eps[1]; n++ {
		out = append(out, n)
	}
	return out
}

func episodeTitle(rest string) string {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "-") {
		return ""
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
	if loc := qualityMarkerRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	if loc := strings.LastIndex(rest, " - "); loc > 0 {
		rest = rest[:loc]
	}
	return strings.Trim(strings.TrimSpace(rest), "[(-")
}

func cleanTitlePart(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " -([.")
	s = strings.TrimLeft(s, " -)]")
	return strings.Join(strings.Fields(s), " ")
}

func parseResolution(name string) Resolution {
	m := resolutionRe.FindString(name)
	switch strings.ToLower(m) {
	case "2160p", "4k", "uhd":
		return Resolution2160p
	case "1080p", "1080i":
		return Resolution1080p
	case "720p":
		return Resolution720p
	case "576p", "480p":
		return Resolution480p
	}
	return ResolutionUnknown
}

func parseSource(name string) Source {
	name = strings.ToLower(name)
	switch {
	case containsAny(name, "bluray", "blu-ray", "bdrip", "brrip", "remux"):
		return SourceBluRay
	case containsAny(name, "web-dl", "webdl", "web dl"):
		return SourceWEBDL
	case containsAny(name, "webrip", "web-rip"):
		return SourceWEBRip
	case containsWord(name, "hdtv"):
		return SourceHDTV
	case containsAny(name, "dvdrip", "dvd"):
		return SourceDVD
	case containsWord(name, "cam") || containsWord(name, "hdcam"):
		return SourceCAM
	case containsWord(name, "ts") || containsWord(name, "telesync"):
		return SourceTelesync
	default:
		return SourceUnknown
	}
}

func parseCodec(name string) Codec {
	name = strings.ToLower(name)
	switch {
	case containsAny(name, "x265", "h265", "h.265", "hevc"):
		return CodecX265
	case containsAny(name, "x264", "h264", "h.264", "avc"):
		return CodecX264
	case containsWord(name, "av1"):
		return CodecAV1
	case containsAny(name, "xvid", "divx"):
		return CodecXviD
	default:
		return CodecUnknown
	}
}

func parseHDR(name string) HDRFormat {
	lower := strings.ToLower(name)
	switch {
	case containsWord(lower, "dv") || containsAny(lower, "dovi", "dolby vision"):
		return DolbyVision
	case containsAny(lower, "hdr10+", "hdr10plus"):
		return HDR10Plus
	case containsWord(lower, "hdr10"):
		return HDR10
	case containsWord(lower, "hlg"):
		return HLG
	case containsWord(lower, "hdr"):
		return HDRGeneric
	default:
		return HDRNone
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '[' || r == ']' || r == '(' || r == ')'
	}) {
		if f == word {
			return true
		}
	}
	return false
}

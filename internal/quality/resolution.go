package quality

import "strings"

// ResolutionRank returns a numeric rank for resolution comparison.
// Higher is better: 2160p=5, 1080p=4, 720p=3, 480p=2, SD=1, unknown=0.
func ResolutionRank(resolution string) int {
	switch strings.ToLower(resolution) {
	case "2160p", "4k", "uhd":
		return 5
	case "1080p", "1080i", "fhd":
		return 4
	case "720p", "hd":
		return 3
	case "480p", "576p":
		return 2
	case "sd":
		return 1
	default:
		return 0
	}
}

// ClassifyResolution buckets frame dimensions into a resolution label. Width
// is considered as well so letterboxed or cropped encodes land in the right
// bucket.
func ClassifyResolution(width, height int) string {
	switch {
	case width == 0 && height == 0:
		return ""
	case height >= 2160 || width >= 3840:
		return "2160p"
	case height >= 900 || width >= 1800:
		return "1080p"
	case height >= 600 || width >= 1200:
		return "720p"
	case height >= 400:
		return "480p"
	default:
		return "SD"
	}
}

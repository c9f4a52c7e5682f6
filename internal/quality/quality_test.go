package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmunix/mediarr/internal/library"
)

func TestEvaluate_480pScenario(t *testing.T) {
	file := Probe{Resolution: "480p", VideoCodec: "h264", AudioCodec: "aac"}

	anyQuality := library.QualitySettings{AllowedResolutions: []string{}}
	assert.Equal(t, library.QualityOptimal, Evaluate(anyQuality, file))

	restricted := library.QualitySettings{AllowedResolutions: []string{"1080p", "4K"}}
	assert.Equal(t, library.QualitySuboptimal, Evaluate(restricted, file))
}

func TestEvaluate(t *testing.T) {
	base := Probe{Resolution: "1080p", VideoCodec: "hevc", AudioCodec: "eac3", Source: "webdl", ReleaseGroup: "NTb"}

	tests := []struct {
		name     string
		settings library.QualitySettings
		probe    Probe
		want     library.QualityStatus
	}{
		{"no lists", library.QualitySettings{}, base, library.QualityOptimal},
		{"resolution listed", library.QualitySettings{AllowedResolutions: []string{"1080p"}}, base, library.QualityOptimal},
		{"resolution above target", library.QualitySettings{AllowedResolutions: []string{"720p"}}, base, library.QualityExceeds},
		{"resolution below target", library.QualitySettings{AllowedResolutions: []string{"2160p"}}, base, library.QualitySuboptimal},
		{"resolution unknown", library.QualitySettings{AllowedResolutions: []string{"1080p"}}, Probe{VideoCodec: "hevc"}, library.QualityUnknown},
		{"codec alias", library.QualitySettings{AllowedVideoCodecs: []string{"x265"}}, base, library.QualityOptimal},
		{"codec not allowed", library.QualitySettings{AllowedVideoCodecs: []string{"av1"}}, base, library.QualitySuboptimal},
		{"sdr allowed", library.QualitySettings{AllowedHDRTypes: []string{"SDR"}}, base, library.QualityOptimal},
		{"hdr required", library.QualitySettings{AllowedHDRTypes: []string{"HDR10", "DV"}}, base, library.QualitySuboptimal},
		{"source spelled differently", library.QualitySettings{AllowedSources: []string{"WEB-DL"}}, base, library.QualityOptimal},
		{"unknown source is not judged", library.QualitySettings{AllowedSources: []string{"bluray"}}, Probe{Resolution: "1080p", VideoCodec: "hevc"}, library.QualityOptimal},
		{"blacklisted group", library.QualitySettings{ReleaseGroupBlacklist: []string{"ntb"}}, base, library.QualitySuboptimal},
		{"whitelist miss", library.QualitySettings{ReleaseGroupWhitelist: []string{"FLUX"}}, base, library.QualitySuboptimal},
		{"no video", library.QualitySettings{AllowedResolutions: []string{"1080p"}}, Probe{AudioCodec: "aac"}, library.QualityUnknown},
		{"suboptimal beats exceeds", library.QualitySettings{AllowedResolutions: []string{"720p"}, AllowedVideoCodecs: []string{"h264"}}, base, library.QualitySuboptimal},
		{"audio only", library.QualitySettings{AllowedAudioCodecs: []string{"flac"}}, Probe{AudioCodec: "FLAC", AudioOnly: true}, library.QualityOptimal},
		{"audio only lossy", library.QualitySettings{AllowedAudioCodecs: []string{"flac"}}, Probe{AudioCodec: "mp3", AudioOnly: true}, library.QualitySuboptimal},
		{"audio only ignores video lists", library.QualitySettings{AllowedResolutions: []string{"1080p"}}, Probe{AudioCodec: "mp3", AudioOnly: true}, library.QualityOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.settings, tt.probe))
		})
	}
}

// rank orders statuses from best to worst for the monotonicity check.
func rank(s library.QualityStatus) int {
	switch s {
	case library.QualityOptimal:
		return 0
	case library.QualityExceeds:
		return 1
	case library.QualityUnknown:
		return 2
	default:
		return 3
	}
}

func TestEvaluate_MonotonicUnderWidening(t *testing.T) {
	resolutions := []string{"SD", "480p", "720p", "1080p", "2160p"}
	codecs := []string{"h264", "hevc", "av1"}
	probes := []Probe{}
	for _, r := range append([]string{""}, resolutions...) {
		for _, c := range codecs {
			probes = append(probes, Probe{Resolution: r, VideoCodec: c, AudioCodec: "aac", Source: "bluray", HDRType: "HDR10"})
		}
	}

	// Every subset of resolutions, widened one entry at a time.
	for mask := 1; mask < 1<<len(resolutions); mask++ {
		var narrow []string
		for i, r := range resolutions {
			if mask&(1<<i) != 0 {
				narrow = append(narrow, r)
			}
		}
		for _, extra := range resolutions {
			wide := append(append([]string{}, narrow...), extra)
			for _, p := range probes {
				before := Evaluate(library.QualitySettings{AllowedResolutions: narrow, AllowedVideoCodecs: []string{"h264"}}, p)
				after := Evaluate(library.QualitySettings{AllowedResolutions: wide, AllowedVideoCodecs: []string{"h264"}}, p)
				assert.LessOrEqual(t, rank(after), rank(before), "narrow=%v wide=%v probe=%+v", narrow, wide, p)

				// Emptying a list is the widest setting of all.
				widest := Evaluate(library.QualitySettings{AllowedResolutions: []string{}, AllowedVideoCodecs: []string{"h264"}}, p)
				assert.LessOrEqual(t, rank(widest), rank(before))
			}
		}
	}

	for _, p := range probes {
		before := Evaluate(library.QualitySettings{AllowedVideoCodecs: []string{"h264"}}, p)
		after := Evaluate(library.QualitySettings{AllowedVideoCodecs: []string{"h264", "hevc"}}, p)
		assert.LessOrEqual(t, rank(after), rank(before))
	}
}

func TestEffective(t *testing.T) {
	lib := library.QualitySettings{
		AllowedResolutions: []string{"1080p"},
		AllowedSources:     []string{"bluray"},
	}

	assert.Equal(t, lib, Effective(nil, lib))

	override := &library.QualitySettings{AllowedResolutions: []string{}}
	got := Effective(override, lib)
	assert.Empty(t, got.AllowedResolutions)
	assert.NotNil(t, got.AllowedResolutions, "override list wins even when empty")
	assert.Equal(t, []string{"bluray"}, got.AllowedSources)
}

func TestClassifyResolution(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{3840, 2160, "2160p"},
		{3840, 1600, "2160p"},
		{1920, 1080, "1080p"},
		{1920, 800, "1080p"},
		{1280, 720, "720p"},
		{1280, 536, "720p"},
		{720, 480, "480p"},
		{640, 360, "SD"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyResolution(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestResolutionRank(t *testing.T) {
	assert.Equal(t, 5, ResolutionRank("4K"))
	assert.Equal(t, 5, ResolutionRank("2160p"))
	assert.Greater(t, ResolutionRank("1080p"), ResolutionRank("720p"))
	assert.Greater(t, ResolutionRank("480p"), ResolutionRank("SD"))
	assert.Zero(t, ResolutionRank("garbage"))
}

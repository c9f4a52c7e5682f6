package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

// qualityFlags are the allow-list flags shared by the library, show and
// movie commands.
var qualityFlags = []struct {
	name  string
	usage string
}{
	{"resolutions", "Allowed resolutions, e.g. 2160p,1080p"},
	{"video-codecs", "Allowed video codecs, e.g. hevc,h264"},
	{"audio-codecs", "Allowed audio codecs, e.g. eac3,truehd"},
	{"hdr", "Allowed HDR types, e.g. dv,hdr10,sdr"},
	{"sources", "Allowed sources, e.g. bluray,web-dl"},
	{"groups-allow", "Release group whitelist"},
	{"groups-deny", "Release group blacklist"},
}

func addQualityFlags(cmd *cobra.Command, inherit bool) {
	suffix := ` ("any" accepts everything)`
	if inherit {
		suffix = ` ("any" accepts everything, "inherit" uses the library's)`
	}
	for _, qf := range qualityFlags {
		cmd.Flags().String(qf.name, "", qf.usage+suffix)
	}
}

// qualityValues returns the quality flags given on the command line.
func qualityValues(cmd *cobra.Command) map[string]string {
	values := make(map[string]string)
	for _, qf := range qualityFlags {
		if f := cmd.Flags().Lookup(qf.name); f != nil && f.Changed {
			values[qf.name] = f.Value.String()
		}
	}
	return values
}

func qualityList(q *library.QualitySettings, flag string) *[]string {
	switch flag {
	case "resolutions":
		return &q.AllowedResolutions
	case "video-codecs":
		return &q.AllowedVideoCodecs
	case "audio-codecs":
		return &q.AllowedAudioCodecs
	case "hdr":
		return &q.AllowedHDRTypes
	case "sources":
		return &q.AllowedSources
	case "groups-allow":
		return &q.ReleaseGroupWhitelist
	case "groups-deny":
		return &q.ReleaseGroupBlacklist
	}
	return nil
}

// parseQualityList splits a comma separated flag value. "any" yields an
// empty list and "inherit" a nil one.
func parseQualityList(v string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "any", "":
		return []string{}, nil
	case "inherit":
		return nil, nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid quality list %q", v)
	}
	return out, nil
}

// applyQuality sets the lists named in values on q.
func applyQuality(q *library.QualitySettings, values map[string]string) error {
	for name, v := range values {
		dst := qualityList(q, name)
		if dst == nil {
			return fmt.Errorf("unknown quality flag %q", name)
		}
		list, err := parseQualityList(v)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = list
	}
	return nil
}

// applyQualityOverride edits an item's override. Once every list inherits
// again the override itself is dropped.
func applyQualityOverride(q *library.QualitySettings, values map[string]string) (*library.QualitySettings, error) {
	if len(values) == 0 {
		return q, nil
	}
	if q == nil {
		q = &library.QualitySettings{}
	}
	if err := applyQuality(q, values); err != nil {
		return nil, err
	}
	for _, qf := range qualityFlags {
		if *qualityList(q, qf.name) != nil {
			return q, nil
		}
	}
	return nil, nil
}

// describeQuality renders the lists that restrict anything, for listings.
func describeQuality(q library.QualitySettings) string {
	var parts []string
	for _, qf := range qualityFlags {
		if list := *qualityList(&q, qf.name); len(list) > 0 {
			parts = append(parts, qf.name+"="+strings.Join(list, ","))
		}
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, " ")
}

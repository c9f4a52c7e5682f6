package organizer

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vmunix/mediarr/internal/library"
)

// Built-in episode templates. Paths are slash-separated and relative to the
// library root.
const (
	CleanTemplate        = "{show}/Season {season:02}/{show} - S{season:02}E{episode:02} - {title}.{ext}"
	PreserveInfoTemplate = "{show}/Season {season:02}/{show} - S{season:02}E{episode:02} - {title} [{quality}].{ext}"
	folderTemplate       = "{show}/Season {season:02}"
)

// formatPattern matches {name} or {name:02} style placeholders.
var formatPattern = regexp.MustCompile(`\{(\w+)(?::(\d+))?\}`)

// EpisodePath renders the relative destination of an episode file.
func EpisodePath(style library.RenameStyle, pattern string, show *library.TvShow, ep *library.Episode, f *library.MediaFile) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
	vars := map[string]any{
		"show":    SanitizeFilename(show.Name),
		"year":    show.Year,
		"season":  ep.Season,
		"episode": ep.Episode,
		"title":   SanitizeFilename(ep.Title),
		"quality": SanitizeFilename(qualityLabel(f)),
		"ext":     ext,
	}

	switch {
	case pattern != "":
		return renderPath(pattern, vars)
	case style == library.RenamePreserveInfo:
		return renderPath(PreserveInfoTemplate, vars)
	case style == library.RenameClean:
		return renderPath(CleanTemplate, vars)
	default:
		name := SanitizeFilename(filepath.Base(f.Path))
		return path.Join(renderPath(folderTemplate, vars), name)
	}
}

// renderPath applies a template and tidies each path component.
func renderPath(template string, vars map[string]any) string {
	rendered := applyTemplate(template, vars)
	parts := strings.Split(rendered, "/")
	out := parts[:0]
	for _, p := range parts {
		p = tidy(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

// applyTemplate substitutes variables into a template string.
// Supports {name} for simple substitution and {name:02} for zero-padded integers.
func applyTemplate(template string, vars map[string]any) string {
	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := formatPattern.FindStringSubmatch(match)
		val, ok := vars[parts[1]]
		if !ok {
			return match
		}
		if parts[2] != "" {
			if width, err := strconv.Atoi(parts[2]); err == nil {
				if v, ok := val.(int); ok {
					return fmt.Sprintf("%0*d", width, v)
				}
			}
		}
		return fmt.Sprintf("%v", val)
	})
}

func qualityLabel(f *library.MediaFile) string {
	var parts []string
	if f.Resolution != "" {
		parts = append(parts, f.Resolution)
	}
	if f.Source != "" {
		parts = append(parts, strings.ToUpper(f.Source))
	}
	return strings.Join(parts, " ")
}

// tidy drops the separators left behind by empty placeholders:
// "Show - S01E02 -  [].mkv" becomes "Show - S01E02.mkv".
func tidy(p string) string {
	p = strings.ReplaceAll(p, "[]", "")
	p = multiSpace.ReplaceAllString(p, " ")
	p = strings.ReplaceAll(p, " - [", " [")
	p = strings.ReplaceAll(p, " - .", ".")
	p = strings.ReplaceAll(p, " .", ".")
	return strings.TrimSuffix(strings.TrimSpace(p), " -")
}

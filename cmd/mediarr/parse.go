package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/pkg/release"
)

// parseResult is the JSON-friendly form of release.Info.
type parseResult struct {
	Title        string `json:"title"`
	Year         int    `json:"year,omitempty"`
	Season       int    `json:"season,omitempty"`
	Episodes     []int  `json:"episodes,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	Resolution   string `json:"resolution"`
	Source       string `json:"source"`
	Codec        string `json:"codec"`
	HDR          string `json:"hdr,omitempty"`
	IsRemux      bool   `json:"remux"`
	Group        string `json:"group,omitempty"`
	Proper       bool   `json:"proper,omitempty"`
	Repack       bool   `json:"repack,omitempty"`
	CleanTitle   string `json:"clean_title"`
}

func toParseResult(info *release.Info) parseResult {
	return parseResult{
		Title:        info.Title,
		Year:         info.Year,
		Season:       info.Season,
		Episodes:     info.Episodes,
		EpisodeTitle: info.EpisodeTitle,
		Resolution:   info.Resolution.String(),
		Source:       info.Source.String(),
		Codec:        info.Codec.String(),
		HDR:          info.HDR.String(),
		IsRemux:      info.IsRemux,
		Group:        info.Group,
		Proper:       info.Proper,
		Repack:       info.Repack,
		CleanTitle:   info.CleanTitle,
	}
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <name>",
	Short: "Parse a release or file name",
	Long: `Parse a release or file name the way the scanner and torrent
processor do.

Examples:
  mediarr parse "Show.Name.S01E02.1080p.WEB-DL.x264-GROUP.mkv"
  mediarr parse --file names.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "Read names from file (one per line)")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")

	var names []string
	switch {
	case inputFile != "":
		n, err := readReleaseFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		names = n
	case len(args) > 0:
		names = []string{args[0]}
	default:
		return fmt.Errorf("usage: mediarr parse <name> or mediarr parse --file <filename>")
	}

	results := make([]parseResult, 0, len(names))
	for _, name := range names {
		results = append(results, toParseResult(release.Parse(name)))
	}

	if jsonOutput {
		if len(results) == 1 {
			printJSON(results[0])
		} else {
			printJSON(results)
		}
		return nil
	}
	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		printParseResult(r)
	}
	return nil
}

// readReleaseFile reads names from a file, one per line. Blank lines and
// lines starting with # are skipped.
func readReleaseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, s.Err()
}

func printParseResult(r parseResult) {
	fmt.Printf("Title:       %s\n", valueOrNone(r.Title))
	if r.Year > 0 {
		fmt.Printf("Year:        %d\n", r.Year)
	}
	if len(r.Episodes) > 0 {
		fmt.Printf("Season:      %d\n", r.Season)
		fmt.Printf("Episodes:    %s\n", joinInts(r.Episodes))
	}
	if r.EpisodeTitle != "" {
		fmt.Printf("Ep. title:   %s\n", r.EpisodeTitle)
	}
	fmt.Printf("Resolution:  %s\n", r.Resolution)
	fmt.Printf("Source:      %s\n", r.Source)
	fmt.Printf("Codec:       %s\n", r.Codec)
	if r.HDR != "" {
		fmt.Printf("HDR:         %s\n", r.HDR)
	}
	if r.IsRemux {
		fmt.Printf("Remux:       yes\n")
	}
	if r.Group != "" {
		fmt.Printf("Group:       %s\n", r.Group)
	}
	if r.Proper {
		fmt.Printf("Proper:      yes\n")
	}
	if r.Repack {
		fmt.Printf("Repack:      yes\n")
	}
	fmt.Printf("CleanTitle:  %s\n", valueOrNone(r.CleanTitle))
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

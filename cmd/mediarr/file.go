package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Inspect media files and fix their catalog links",
}

var fileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media files",
	RunE:  runFileList,
}

var fileLinkCmd = &cobra.Command{
	Use:   "link <file-id>",
	Short: "Link a file to a catalog item manually",
	Long: `Link a file to exactly one catalog item. Manual links are never
replaced by scans or torrent processing.

Examples:
  mediarr file link 42 --episode 17
  mediarr file link 43 --movie 5`,
	Args: cobra.ExactArgs(1),
	RunE: runFileLink,
}

var fileUnlinkCmd = &cobra.Command{
	Use:   "unlink <file-id>",
	Short: "Remove a file's link and its manual pin",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileUnlink,
}

func init() {
	rootCmd.AddCommand(fileCmd)
	fileCmd.AddCommand(fileListCmd, fileLinkCmd, fileUnlinkCmd)

	fileListCmd.Flags().Int64("library", 0, "Only files of this library")
	fileListCmd.Flags().Bool("unlinked", false, "Only files without a catalog link")
	fileListCmd.Flags().IntP("limit", "n", 50, "Maximum number of files")

	fileLinkCmd.Flags().Int64("episode", 0, "Episode ID")
	fileLinkCmd.Flags().Int64("movie", 0, "Movie ID")
	fileLinkCmd.Flags().Int64("track", 0, "Track ID")
	fileLinkCmd.Flags().Int64("audiobook", 0, "Audiobook ID")
}

// linkFromFlags builds a Link from exactly one non-zero item ID.
func linkFromFlags(episode, movie, track, audiobook int64) (library.Link, error) {
	var links []library.Link
	if episode > 0 {
		links = append(links, library.EpisodeLink(episode))
	}
	if movie > 0 {
		links = append(links, library.MovieLink(movie))
	}
	if track > 0 {
		links = append(links, library.TrackLink(track))
	}
	if audiobook > 0 {
		links = append(links, library.AudiobookLink(audiobook))
	}
	if len(links) != 1 {
		return library.Link{}, fmt.Errorf("pass exactly one of --episode, --movie, --track, --audiobook")
	}
	return links[0], nil
}

func describeLink(l library.Link) string {
	switch {
	case l.EpisodeID != nil:
		return fmt.Sprintf("episode/%d", *l.EpisodeID)
	case l.MovieID != nil:
		return fmt.Sprintf("movie/%d", *l.MovieID)
	case l.TrackID != nil:
		return fmt.Sprintf("track/%d", *l.TrackID)
	case l.AudiobookID != nil:
		return fmt.Sprintf("audiobook/%d", *l.AudiobookID)
	default:
		return "-"
	}
}

func parseFileID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid file id %q", s)
	}
	return id, nil
}

func runFileList(cmd *cobra.Command, args []string) error {
	libraryID, _ := cmd.Flags().GetInt64("library")
	unlinked, _ := cmd.Flags().GetBool("unlinked")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	filter := library.MediaFileFilter{Unlinked: unlinked, Limit: limit}
	if libraryID > 0 {
		filter.LibraryID = &libraryID
	}
	files, total, err := a.library.ListMediaFiles(filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]any{"items": files, "total": total})
		return nil
	}
	if len(files) == 0 {
		fmt.Println("No files")
		return nil
	}

	fmt.Printf("Files (%d of %d):\n\n", len(files), total)
	fmt.Printf("  %-5s %-16s %-9s %-10s %-10s %s\n", "ID", "LINK", "MATCH", "QUALITY", "RES", "PATH")
	fmt.Println("  " + strings.Repeat("-", 90))
	for _, f := range files {
		fmt.Printf("  %-5d %-16s %-9s %-10s %-10s %s\n",
			f.ID, describeLink(f.Link), f.MatchType, f.QualityStatus, f.Resolution, truncate(f.RelativePath, 40))
	}
	return nil
}

func runFileLink(cmd *cobra.Command, args []string) error {
	id, err := parseFileID(args[0])
	if err != nil {
		return err
	}
	episode, _ := cmd.Flags().GetInt64("episode")
	movie, _ := cmd.Flags().GetInt64("movie")
	track, _ := cmd.Flags().GetInt64("track")
	audiobook, _ := cmd.Flags().GetInt64("audiobook")
	link, err := linkFromFlags(episode, movie, track, audiobook)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.SetManualLink(id, link); err != nil {
		return err
	}
	fmt.Printf("File %d linked to %s (manual)\n", id, describeLink(link))
	return nil
}

func runFileUnlink(cmd *cobra.Command, args []string) error {
	id, err := parseFileID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.SetManualLink(id, library.Link{}); err != nil {
		return err
	}
	fmt.Printf("File %d unlinked\n", id)
	return nil
}

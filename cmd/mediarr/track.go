package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Manage the wanted tracks of a music library",
}

var trackListCmd = &cobra.Command{
	Use:   "list <library-id>",
	Short: "List the tracks of a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackList,
}

var trackAddCmd = &cobra.Command{
	Use:   "add <library-id> <title>",
	Short: "Add a wanted track",
	Long: `Add a wanted track. Downloads and scanned files named
"Artist - Title" are linked to it.

Example:
  mediarr track add 3 "Paranoid Android" --artist Radiohead --album "OK Computer" --number 2`,
	Args: cobra.ExactArgs(2),
	RunE: runTrackAdd,
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackListCmd, trackAddCmd)

	f := trackAddCmd.Flags()
	f.String("artist", "", "Artist name")
	f.String("album", "", "Album name")
	f.Int("number", 0, "Track number")
}

func runTrackList(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	tracks, err := a.library.ListTracks(libraryID)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(tracks)
		return nil
	}
	if len(tracks) == 0 {
		fmt.Println("No tracks")
		return nil
	}

	fmt.Printf("  %-5s %-24s %-30s %-4s %s\n", "ID", "ARTIST", "TITLE", "#", "STATUS")
	fmt.Println("  " + strings.Repeat("-", 76))
	for _, tr := range tracks {
		fmt.Printf("  %-5d %-24s %-30s %-4d %s\n", tr.ID, truncate(tr.Artist, 24), truncate(tr.Title, 30), tr.TrackNumber, tr.Status)
	}
	return nil
}

func runTrackAdd(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}
	f := cmd.Flags()
	artist, _ := f.GetString("artist")
	album, _ := f.GetString("album")
	number, _ := f.GetInt("number")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	tr := &library.Track{Title: args[1], Artist: artist, Album: album, TrackNumber: number}
	if err := addTrack(a.library, libraryID, tr); err != nil {
		return err
	}
	if jsonOutput {
		printJSON(tr)
		return nil
	}
	fmt.Printf("Added track %d: %s - %s\n", tr.ID, tr.Artist, tr.Title)
	return nil
}

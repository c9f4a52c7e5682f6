package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var audiobookCmd = &cobra.Command{
	Use:   "audiobook",
	Short: "Manage the wanted books of an audiobook library",
}

var audiobookListCmd = &cobra.Command{
	Use:   "list <library-id>",
	Short: "List the audiobooks of a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudiobookList,
}

var audiobookAddCmd = &cobra.Command{
	Use:   "add <library-id> <title>",
	Short: "Add a wanted audiobook",
	Args:  cobra.ExactArgs(2),
	RunE:  runAudiobookAdd,
}

func init() {
	rootCmd.AddCommand(audiobookCmd)
	audiobookCmd.AddCommand(audiobookListCmd, audiobookAddCmd)

	audiobookAddCmd.Flags().String("author", "", "Author name")
}

func runAudiobookList(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	books, err := a.library.ListAudiobooks(libraryID)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(books)
		return nil
	}
	if len(books) == 0 {
		fmt.Println("No audiobooks")
		return nil
	}

	fmt.Printf("  %-5s %-36s %-24s %s\n", "ID", "TITLE", "AUTHOR", "STATUS")
	fmt.Println("  " + strings.Repeat("-", 76))
	for _, b := range books {
		fmt.Printf("  %-5d %-36s %-24s %s\n", b.ID, truncate(b.Title, 36), truncate(b.Author, 24), b.Status)
	}
	return nil
}

func runAudiobookAdd(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}
	author, _ := cmd.Flags().GetString("author")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	b := &library.Audiobook{Title: args[1], Author: author}
	if err := addAudiobook(a.library, libraryID, b); err != nil {
		return err
	}
	if jsonOutput {
		printJSON(b)
		return nil
	}
	fmt.Printf("Added audiobook %d: %s\n", b.ID, b.Title)
	return nil
}

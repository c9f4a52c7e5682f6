package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var movieCmd = &cobra.Command{
	Use:   "movie",
	Short: "Manage the movies of a movie library",
}

var movieListCmd = &cobra.Command{
	Use:   "list <library-id>",
	Short: "List the movies of a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runMovieList,
}

var movieAddCmd = &cobra.Command{
	Use:   "add <library-id> <title>",
	Short: "Add a wanted movie",
	Args:  cobra.ExactArgs(2),
	RunE:  runMovieAdd,
}

var movieSetCmd = &cobra.Command{
	Use:   "set <movie-id>",
	Short: "Override quality targets for one movie",
	Long: `Override the library's quality targets for one movie.
Lists are comma separated. "any" accepts everything for this movie and
"inherit" falls back to the library.

Examples:
  mediarr movie set 4 --resolutions 2160p --sources bluray
  mediarr movie set 4 --resolutions inherit`,
	Args: cobra.ExactArgs(1),
	RunE: runMovieSet,
}

func init() {
	rootCmd.AddCommand(movieCmd)
	movieCmd.AddCommand(movieListCmd, movieAddCmd, movieSetCmd)

	movieAddCmd.Flags().Int("year", 0, "Release year")
	movieAddCmd.Flags().String("tmdb-id", "", "Metadata provider ID")
	addQualityFlags(movieSetCmd, true)
}

func runMovieList(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	movies, err := a.library.ListMovies(libraryID)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(movies)
		return nil
	}
	if len(movies) == 0 {
		fmt.Println("No movies")
		return nil
	}

	fmt.Printf("  %-5s %-36s %-6s %-11s %s\n", "ID", "TITLE", "YEAR", "STATUS", "QUALITY")
	fmt.Println("  " + strings.Repeat("-", 72))
	for _, m := range movies {
		quality := "inherit"
		if m.QualityOverride != nil {
			quality = describeQuality(*m.QualityOverride)
		}
		fmt.Printf("  %-5d %-36s %-6d %-11s %s\n", m.ID, truncate(m.Title, 36), m.Year, m.Status, quality)
	}
	return nil
}

func runMovieAdd(cmd *cobra.Command, args []string) error {
	libraryID, err := parseID("library", args[0])
	if err != nil {
		return err
	}
	year, _ := cmd.Flags().GetInt("year")
	providerID, _ := cmd.Flags().GetString("tmdb-id")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	m := &library.Movie{Title: args[1], Year: year}
	if providerID != "" {
		m.ProviderID = &providerID
	}
	if err := addMovie(a.library, libraryID, m); err != nil {
		return err
	}
	if jsonOutput {
		printJSON(m)
		return nil
	}
	fmt.Printf("Added movie %d: %s (%d)\n", m.ID, m.Title, m.Year)
	return nil
}

func runMovieSet(cmd *cobra.Command, args []string) error {
	id, err := parseID("movie", args[0])
	if err != nil {
		return err
	}
	values := qualityValues(cmd)
	if len(values) == 0 {
		return fmt.Errorf("nothing to change: pass a quality flag")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	m, err := setMovieQuality(a.library, id, values)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(m)
		return nil
	}
	quality := "inherit"
	if m.QualityOverride != nil {
		quality = describeQuality(*m.QualityOverride)
	}
	fmt.Printf("Movie %d (%s): quality %s\n", m.ID, m.Title, quality)
	return nil
}

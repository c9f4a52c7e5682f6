package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage libraries",
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Add a library",
	Args:  cobra.ExactArgs(2),
	RunE:  runLibraryAdd,
}

var librarySetCmd = &cobra.Command{
	Use:   "set <library-id>",
	Short: "Change a library's policy, naming pattern and quality targets",
	Long: `Change a library's settings. Only the flags given are changed.

Quality lists are comma separated. "any" clears a list so every value
is accepted. An empty --pattern goes back to the rename style's layout.

Examples:
  mediarr library set 1 --resolutions 2160p,1080p --video-codecs hevc
  mediarr library set 1 --groups-deny YIFY --sources any
  mediarr library set 1 --organize --rename clean
  mediarr library set 1 --pattern "{show}/S{season:02}/{show} {season}x{episode:02}.{ext}"`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrarySet,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List libraries",
	RunE:  runLibraryList,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryAddCmd, librarySetCmd, libraryListCmd)

	libraryAddCmd.Flags().StringP("type", "t", "tv", "Library type: tv, movies, music, audiobooks")
	libraryAddCmd.Flags().Int64("user", 1, "Owning user ID")
	addLibraryPolicyFlags(libraryAddCmd)
	addLibraryPolicyFlags(librarySetCmd)
}

// addLibraryPolicyFlags registers the settings shared by library add and set.
func addLibraryPolicyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("auto-scan", false, "Rescan when files change on disk")
	f.Bool("organize", false, "Organize files into the library layout")
	f.String("rename", "none", "Rename style: none, clean, preserve_info")
	f.Bool("auto-add", false, "Add discovered shows and movies from the metadata provider")
	f.String("pattern", "", "Episode naming pattern, e.g. {show}/Season {season:02}/{show} - S{season:02}E{episode:02}.{ext}")
	addQualityFlags(cmd, false)
}

func libraryFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"auto-scan", "organize", "auto-add", "rename", "pattern"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return len(qualityValues(cmd)) > 0
}

// applyLibraryFlags copies the flags given on the command line onto lib.
// Flags left unset keep the library's current value.
func applyLibraryFlags(lib *library.Library, cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("auto-scan") {
		lib.AutoScan, _ = f.GetBool("auto-scan")
	}
	if f.Changed("organize") {
		lib.OrganizeFiles, _ = f.GetBool("organize")
	}
	if f.Changed("auto-add") {
		lib.AutoAddDiscovered, _ = f.GetBool("auto-add")
	}
	if f.Changed("rename") {
		v, _ := f.GetString("rename")
		style, err := parseRenameStyle(v)
		if err != nil {
			return err
		}
		lib.RenameStyle = style
	}
	if f.Changed("pattern") {
		v, _ := f.GetString("pattern")
		if v = strings.TrimSpace(v); v == "" {
			lib.NamingPattern = nil
		} else {
			lib.NamingPattern = &v
		}
	}
	return applyQuality(&lib.Quality, qualityValues(cmd))
}

func parseLibraryType(s string) (library.Type, error) {
	switch t := library.Type(strings.ToLower(s)); t {
	case library.TypeTV, library.TypeMovies, library.TypeMusic, library.TypeAudiobooks:
		return t, nil
	}
	return "", fmt.Errorf("unknown library type %q", s)
}

func parseRenameStyle(s string) (library.RenameStyle, error) {
	switch r := library.RenameStyle(strings.ToLower(s)); r {
	case library.RenameNone, library.RenameClean, library.RenamePreserveInfo:
		return r, nil
	}
	return "", fmt.Errorf("unknown rename style %q", s)
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	userID, _ := cmd.Flags().GetInt64("user")

	typ, err := parseLibraryType(typeFlag)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}
	lib := &library.Library{
		UserID:      userID,
		Name:        args[0],
		Path:        path,
		Type:        typ,
		RenameStyle: library.RenameNone,
	}
	if err := applyLibraryFlags(lib, cmd); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.AddLibrary(lib); err != nil {
		return fmt.Errorf("add library: %w", err)
	}

	if jsonOutput {
		printJSON(lib)
		return nil
	}
	fmt.Printf("Added library %d: %s (%s) at %s\n", lib.ID, lib.Name, lib.Type, lib.Path)
	return nil
}

func runLibrarySet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid library id %q", args[0])
	}
	if !libraryFlagsChanged(cmd) {
		return fmt.Errorf("nothing to change: pass at least one setting flag")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	lib, err := a.library.GetLibrary(id)
	if err != nil {
		return err
	}
	if err := applyLibraryFlags(lib, cmd); err != nil {
		return err
	}
	if err := a.library.UpdateLibrary(lib); err != nil {
		return fmt.Errorf("update library: %w", err)
	}

	if jsonOutput {
		printJSON(lib)
		return nil
	}
	pattern := "-"
	if lib.NamingPattern != nil {
		pattern = *lib.NamingPattern
	}
	fmt.Printf("Library %d (%s): organize=%v rename=%s pattern=%s\n", lib.ID, lib.Name, lib.OrganizeFiles, lib.RenameStyle, pattern)
	fmt.Printf("  quality: %s\n", describeQuality(lib.Quality))
	return nil
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	libs, err := a.library.ListLibraries(library.LibraryFilter{})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(libs)
		return nil
	}
	if len(libs) == 0 {
		fmt.Println("No libraries")
		return nil
	}

	fmt.Printf("  %-4s %-20s %-11s %-12s %s\n", "ID", "NAME", "TYPE", "SCANNED", "PATH")
	fmt.Println("  " + strings.Repeat("-", 70))
	for _, l := range libs {
		var scanned int64
		if l.LastScannedAt != nil {
			scanned = l.LastScannedAt.Unix()
		}
		fmt.Printf("  %-4d %-20s %-11s %-12s %s\n", l.ID, truncate(l.Name, 20), l.Type, formatTimeAgo(scanned), l.Path)
	}
	return nil
}

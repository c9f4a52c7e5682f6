package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/library"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect TV shows and their per-show overrides",
}

var showListCmd = &cobra.Command{
	Use:   "list <library-id>",
	Short: "List the shows of a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowList,
}

var showSetCmd = &cobra.Command{
	Use:   "set <show-id>",
	Short: "Override organize and quality settings for one show",
	Long: `Override the library's organize and quality settings for one show.
Pass "inherit" to fall back to the library again. Quality lists are
comma separated and "any" accepts everything for this show.

Examples:
  mediarr show set 12 --organize=false
  mediarr show set 12 --rename preserve_info
  mediarr show set 12 --resolutions 2160p --hdr dv,hdr10
  mediarr show set 12 --organize=inherit --rename inherit --resolutions inherit`,
	Args: cobra.ExactArgs(1),
	RunE: runShowSet,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showListCmd, showSetCmd)

	showSetCmd.Flags().String("organize", "", "Organize files: true, false or inherit")
	showSetCmd.Flags().String("rename", "", "Rename style: none, clean, preserve_info or inherit")
	addQualityFlags(showSetCmd, true)
}

// applyShowOverrides updates the show from the flag values. Empty values
// leave a field untouched.
func applyShowOverrides(sh *library.TvShow, organize, rename string) error {
	switch strings.ToLower(organize) {
	case "":
	case "inherit":
		sh.OrganizeFilesOverride = nil
	default:
		v, err := strconv.ParseBool(organize)
		if err != nil {
			return fmt.Errorf("invalid --organize %q", organize)
		}
		sh.OrganizeFilesOverride = &v
	}

	switch strings.ToLower(rename) {
	case "":
	case "inherit":
		sh.RenameStyleOverride = nil
	default:
		style, err := parseRenameStyle(rename)
		if err != nil {
			return err
		}
		sh.RenameStyleOverride = &style
	}
	return nil
}

func runShowList(cmd *cobra.Command, args []string) error {
	libraryID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid library id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	shows, err := a.library.ListShows(libraryID)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(shows)
		return nil
	}
	if len(shows) == 0 {
		fmt.Println("No shows")
		return nil
	}

	fmt.Printf("  %-5s %-36s %-6s %-9s %s\n", "ID", "NAME", "YEAR", "ORGANIZE", "RENAME")
	fmt.Println("  " + strings.Repeat("-", 72))
	for _, sh := range shows {
		organize, rename := "inherit", "inherit"
		if sh.OrganizeFilesOverride != nil {
			organize = strconv.FormatBool(*sh.OrganizeFilesOverride)
		}
		if sh.RenameStyleOverride != nil {
			rename = string(*sh.RenameStyleOverride)
		}
		fmt.Printf("  %-5d %-36s %-6d %-9s %s\n", sh.ID, truncate(sh.Name, 36), sh.Year, organize, rename)
	}
	return nil
}

func runShowSet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid show id %q", args[0])
	}
	organize, _ := cmd.Flags().GetString("organize")
	rename, _ := cmd.Flags().GetString("rename")
	quality := qualityValues(cmd)
	if organize == "" && rename == "" && len(quality) == 0 {
		return fmt.Errorf("nothing to change: pass --organize, --rename or a quality flag")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sh, err := a.library.GetShow(id)
	if err != nil {
		return err
	}
	if err := applyShowOverrides(sh, organize, rename); err != nil {
		return err
	}
	if sh.QualityOverride, err = applyQualityOverride(sh.QualityOverride, quality); err != nil {
		return err
	}
	if err := a.library.UpdateShowOverrides(sh); err != nil {
		return err
	}

	settings, err := a.organizer.FullOrganizeSettings(cmd.Context(), sh)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(settings)
		return nil
	}
	fmt.Printf("Show %d (%s): organize=%v rename=%s\n", sh.ID, sh.Name, settings.Enabled, settings.RenameStyle)
	if sh.QualityOverride != nil {
		fmt.Printf("  quality override: %s\n", describeQuality(*sh.QualityOverride))
	}
	return nil
}

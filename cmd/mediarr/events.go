package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("entity", "", "Only events of this entity type (torrent, library, ...)")
	eventsCmd.Flags().Int64("id", 0, "Entity ID, used with --entity")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	entity, _ := cmd.Flags().GetString("entity")
	entityID, _ := cmd.Flags().GetInt64("id")
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	if (entity == "") != (entityID == 0) {
		return fmt.Errorf("--entity and --id go together")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var list []events.RawEvent
	if entity != "" {
		list, err = a.eventLog.ForEntity(entity, entityID)
		if len(list) > limit {
			list = list[len(list)-limit:]
		}
	} else {
		list, err = a.eventLog.Recent(limit)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}

	if len(list) == 0 {
		fmt.Println("No events")
		return nil
	}

	fmt.Printf("Recent Events (%d):\n\n", len(list))
	fmt.Printf("  %-12s %-24s %-15s\n", "TIME", "TYPE", "ENTITY")
	fmt.Println("  " + strings.Repeat("-", 55))

	for _, e := range list {
		entity := fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
		fmt.Printf("  %-12s %-24s %-15s\n", formatTimeAgo(e.OccurredAt.Unix()), e.EventType, entity)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/events"
)

var scanCmd = &cobra.Command{
	Use:   "scan <library-id>",
	Short: "Scan a library and queue new files for analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid library id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	drain := a.runAnalysis(ctx)
	defer drain()

	progress := a.bus.Subscribe(events.EventScanProgress, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range progress {
			p, ok := e.(*events.ScanProgress)
			if !ok || p.IsComplete || jsonOutput {
				continue
			}
			fmt.Printf("\r  scanned %d/%d  new %d  linked %d", p.ScannedFiles, p.TotalFiles, p.NewFiles, p.EpisodesLinked)
		}
	}()

	result, err := a.scanner.ScanLibrary(ctx, id)
	a.bus.Unsubscribe(progress)
	<-done
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(result)
		return nil
	}
	fmt.Printf("\rScanned %s: %d files, %d new, %d removed, %d shows added, %d episodes linked, %d errors\n",
		result.LibraryName, result.ScannedFiles, result.NewFiles, result.RemovedFiles,
		result.ShowsAdded, result.EpisodesLinked, result.Errors)
	return nil
}

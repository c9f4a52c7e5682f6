package main

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/torrent"
)

var torrentCmd = &cobra.Command{
	Use:   "torrent",
	Short: "Manage torrents and their post-processing",
}

var torrentAddCmd = &cobra.Command{
	Use:   "add <magnet-or-url>",
	Short: "Send a torrent to the client and track it",
	Args:  cobra.ExactArgs(1),
	RunE:  runTorrentAdd,
}

var torrentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked torrents",
	RunE:  runTorrentList,
}

var torrentProcessCmd = &cobra.Command{
	Use:   "process <torrent-id>",
	Short: "Run post-processing for one torrent",
	Args:  cobra.ExactArgs(1),
	RunE:  runTorrentProcess,
}

var torrentSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Poll the client once and process newly completed torrents",
	RunE:  runTorrentSync,
}

var torrentSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Process every completed torrent that is unprocessed or unmatched",
	RunE:  runTorrentSweep,
}

func init() {
	rootCmd.AddCommand(torrentCmd)
	torrentCmd.AddCommand(torrentAddCmd, torrentListCmd, torrentProcessCmd, torrentSyncCmd, torrentSweepCmd)

	torrentAddCmd.Flags().String("save-path", "", "Download directory")
	torrentAddCmd.Flags().Int64("library", 0, "Library the download belongs to")
	torrentListCmd.Flags().String("status", "", "Only torrents with this post-process status (none for unprocessed)")
}

// magnetHash extracts the info hash from a magnet URI.
func magnetHash(uri string) (hash, name string, ok bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "magnet" {
		return "", "", false
	}
	q := u.Query()
	for _, xt := range q["xt"] {
		if h, found := strings.CutPrefix(xt, "urn:btih:"); found && h != "" {
			return strings.ToLower(h), q.Get("dn"), true
		}
	}
	return "", "", false
}

func runTorrentAdd(cmd *cobra.Command, args []string) error {
	savePath, _ := cmd.Flags().GetString("save-path")
	libraryID, _ := cmd.Flags().GetInt64("library")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireTorrents(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := a.client.Add(ctx, args[0], savePath); err != nil {
		return fmt.Errorf("add torrent: %w", err)
	}

	hash, name, ok := magnetHash(args[0])
	if !ok {
		fmt.Println("Sent to client; it will be tracked on the next sync")
		return nil
	}
	t := &torrent.Torrent{UserID: a.cfg.Torrents.UserID, InfoHash: hash, Name: name, SavePath: savePath}
	if t.Name == "" {
		t.Name = hash
	}
	if libraryID > 0 {
		if _, err := a.library.GetLibrary(libraryID); err != nil {
			return err
		}
		t.LibraryID = &libraryID
	}
	if err := a.torrents.Add(t); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(t)
		return nil
	}
	fmt.Printf("Tracking torrent %d: %s\n", t.ID, t.Name)
	return nil
}

func runTorrentList(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var filter torrent.Filter
	switch status {
	case "":
	case "none":
		filter.Statuses = []torrent.Status{torrent.StatusNone}
	default:
		filter.Statuses = []torrent.Status{torrent.Status(status)}
	}

	list, err := a.torrents.List(filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}
	if len(list) == 0 {
		fmt.Println("No torrents")
		return nil
	}

	fmt.Printf("  %-4s %-40s %-7s %-12s %s\n", "ID", "NAME", "DONE", "STATE", "POST-PROCESS")
	fmt.Println("  " + strings.Repeat("-", 80))
	for _, t := range list {
		pp := string(t.PostProcessStatus)
		if pp == "" {
			pp = "-"
		}
		fmt.Printf("  %-4d %-40s %5.1f%%  %-12s %s\n", t.ID, truncate(t.Name, 40), t.Progress*100, t.State, pp)
	}
	return nil
}

func runTorrentProcess(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid torrent id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireTorrents(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	drain := a.runAnalysis(ctx)
	defer drain()

	t, err := a.torrents.Get(id)
	if err != nil {
		return err
	}
	if t.PostProcessStatus.IsTerminal() {
		return fmt.Errorf("torrent %d is already %s", id, t.PostProcessStatus)
	}

	res, err := a.processor.Process(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	printResult(id, res)
	return nil
}

func printResult(id int64, res *torrent.Result) {
	fmt.Printf("Torrent %d: matched=%v organized=%v processed=%d failed=%d\n",
		id, res.Matched, res.Organized, res.FilesProcessed, res.FilesFailed)
	for _, m := range res.Messages {
		fmt.Printf("  - %s\n", m)
	}
}

// pendingIDs collects the torrents a sync hands over for processing.
type pendingIDs []int64

func (p *pendingIDs) Submit(id int64) error {
	*p = append(*p, id)
	return nil
}

func runTorrentSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireTorrents(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pending pendingIDs
	syncer := torrent.NewSyncer(a.torrents, a.client, a.bus, &pending, a.cfg.Torrents.SyncInterval, a.logger)
	if err := syncer.SyncOnce(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if len(pending) == 0 {
		if !jsonOutput {
			fmt.Println("Synced; nothing new to process")
		}
		return nil
	}

	drain := a.runAnalysis(ctx)
	defer drain()

	results := make(map[int64]*torrent.Result, len(pending))
	for _, id := range pending {
		res, err := a.processor.Process(ctx, id)
		if err != nil {
			a.logger.Warn("process failed", "torrent_id", id, "error", err)
			continue
		}
		results[id] = res
		if !jsonOutput {
			printResult(id, res)
		}
	}
	if jsonOutput {
		printJSON(results)
	}
	return nil
}

func runTorrentSweep(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireTorrents(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	drain := a.runAnalysis(ctx)
	defer drain()

	sweeper := torrent.NewSweeper(a.torrents, a.processor, a.cfg.Torrents.SweepSchedule, a.logger)
	res, err := sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Printf("Swept %d torrents: %d processed, %d matched, %d failed\n",
		res.Considered, res.Processed, res.Matched, res.Failed)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/engine"
	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/stats"
	"github.com/bamsammich/reclaim/internal/ui"
)

var mvDupes bool

var mvCmd = &cobra.Command{
	Use:   "mv DEST [PATH...]",
	Short: "Move the selected files into a directory",
	Long: `Mv moves the selected files into DEST, creating it if needed. Moves
fall back to copy-and-delete when DEST is on a different filesystem.
Select by positional paths, '-' to read paths from stdin, or --dupes
for the duplicate set of the most recent scan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMv,
}

func init() {
	mvCmd.Flags().
		BoolVar(&mvDupes, "dupes", false, "move the duplicate set of the most recent scan")
}

func runMv(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	dest := args[0]

	paths, err := resolveTargets(cfg, args[1:], mvDupes, os.Stdin)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("nothing to move")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 64)
	presenter := ui.NewPresenter(ui.Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Stats:     collector,
		Quiet:     flagQuiet,
		Verbose:   flagVerbose,
	})

	var presenterErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = presenter.Run(events)
	}()

	moved, bytes, err := engine.MoveFiles(ctx, engine.RemoveConfig{
		Events: events,
		Stats:  collector,
	}, dest, paths)
	stop()
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "moved %s files (%s) to %s\n",
			ui.FormatCount(int64(moved)), ui.FormatBytes(bytes), dest)
	}
	return err
}

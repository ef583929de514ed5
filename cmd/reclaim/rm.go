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

var (
	rmDupes  bool
	rmDryRun bool
)

var rmCmd = &cobra.Command{
	Use:   "rm [PATH...]",
	Short: "Delete the selected files",
	Long: `Rm deletes the selected files. Select by positional paths, '-' to read
paths from stdin, or --dupes for the duplicate set of the most recent
scan. Unreadable paths are skipped and reported.`,
	RunE: runRm,
}

func init() {
	rmCmd.Flags().
		BoolVar(&rmDupes, "dupes", false, "delete the duplicate set of the most recent scan")
	rmCmd.Flags().
		BoolVar(&rmDryRun, "dry-run", false, "show what would be deleted without removing")
}

func runRm(_ *cobra.Command, args []string) error {
	cfg := loadConfig()

	paths, err := resolveTargets(cfg, args, rmDupes, os.Stdin)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("nothing to delete")
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

	deleted, freed, err := engine.DeleteFiles(ctx, engine.RemoveConfig{
		Events: events,
		Stats:  collector,
		DryRun: rmDryRun,
	}, paths)
	stop()
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if !flagQuiet {
		verb := "deleted"
		if rmDryRun {
			verb = "would delete"
		}
		fmt.Fprintf(os.Stderr, "%s %s files, %s\n",
			verb, ui.FormatCount(int64(deleted)), ui.FormatBytes(freed))
	}
	return err
}

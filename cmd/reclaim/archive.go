package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/archive"
	"github.com/bamsammich/reclaim/internal/config"
	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/filter"
	"github.com/bamsammich/reclaim/internal/stats"
	"github.com/bamsammich/reclaim/internal/ui"
)

var (
	archiveDupes       bool
	archiveStrategyStr string
	archiveLimitStr    string
	archiveOutDir      string
	archiveDryRun      bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive [PATH...]",
	Short: "Pack files into zip containers and delete the originals",
	Long: `Archive packs the selected files into one or more zip containers and
deletes each source file once its entry is safely written. Every
container carries a manifest.json mapping entry names back to the
original absolute paths.

Select files by positional paths, '-' to read paths from stdin, or
--dupes for the duplicate set of the most recent scan.`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().
		BoolVar(&archiveDupes, "dupes", false, "archive the duplicate set of the most recent scan")
	archiveCmd.Flags().
		StringVar(&archiveStrategyStr, "strategy", "single", "split strategy: single, size, count, or ext")
	archiveCmd.Flags().
		StringVar(&archiveLimitStr, "limit", "", "per-container limit: SIZE for --strategy size, N for --strategy count")
	archiveCmd.Flags().
		StringVar(&archiveOutDir, "out", "", "container output directory (default: ~/Documents/reclaim-archives)")
	archiveCmd.Flags().
		BoolVar(&archiveDryRun, "dry-run", false, "print the bundle plan without writing")
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	strategy, err := archive.ParseStrategy(archiveStrategyStr)
	if err != nil {
		return err
	}

	var sizeLimit int64
	var countLimit int
	switch strategy {
	case archive.MaxSizePerBundle:
		if archiveLimitStr == "" {
			return errors.New("--strategy size requires --limit SIZE")
		}
		sizeLimit, err = filter.ParseSize(archiveLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --limit: %w", err)
		}
	case archive.MaxCountPerBundle:
		if archiveLimitStr == "" {
			return errors.New("--strategy count requires --limit N")
		}
		countLimit, err = strconv.Atoi(archiveLimitStr)
		if err != nil || countLimit <= 0 {
			return fmt.Errorf("invalid --limit %q: want a positive count", archiveLimitStr)
		}
	case archive.Single, archive.GroupByExtension:
		if archiveLimitStr != "" {
			return fmt.Errorf("--limit is not used by --strategy %s", strategy)
		}
	}

	outDir := archiveOutDir
	if outDir == "" {
		if cfg.Defaults.ArchiveDir != nil {
			outDir = *cfg.Defaults.ArchiveDir
		} else {
			outDir = config.DefaultArchiveDir()
		}
	}

	paths, err := resolveTargets(cfg, args, archiveDupes, os.Stdin)
	if err != nil {
		return err
	}

	files := make([]archive.File, 0, len(paths))
	for _, p := range paths {
		info, statErr := os.Lstat(p)
		if statErr != nil {
			slog.Warn("skipping unreadable path", "path", p, "error", statErr)
			continue
		}
		if !info.Mode().IsRegular() {
			slog.Warn("skipping non-regular file", "path", p)
			continue
		}
		files = append(files, archive.File{Path: p, Size: info.Size()})
	}
	if len(files) == 0 {
		return errors.New("nothing to archive")
	}

	base := "archive_" + time.Now().Format("20060102_150405")
	plan, err := archive.NewPlan(archive.PlanRequest{
		Files:      files,
		Strategy:   strategy,
		SizeLimit:  sizeLimit,
		CountLimit: countLimit,
		TargetDir:  outDir,
		BaseName:   base,
	})
	if err != nil {
		return err
	}

	if archiveDryRun {
		printPlan(plan)
		return nil
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

	var writeErr error
	for _, bundle := range plan.Bundles {
		if _, err := archive.WriteBundle(ctx, archive.WriterConfig{
			Events: events,
			Stats:  collector,
		}, bundle); err != nil {
			writeErr = err
			break
		}
	}
	stop()
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if !flagQuiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}

	if writeErr != nil {
		slog.Error("archive failed", "error", writeErr)
		if collector.Snapshot().FilesArchived > 0 {
			return &exitError{code: 1} // partial failure
		}
		return &exitError{code: 2}
	}
	return nil
}

func printPlan(plan *archive.Plan) {
	for _, bundle := range plan.Bundles {
		fmt.Fprintf(os.Stdout, "%s: %d files, %s\n",
			bundle.Target, len(bundle.Members), ui.FormatBytes(bundle.TotalSize()))
		if flagVerbose {
			names := bundle.EntryNames()
			for i, m := range bundle.Members {
				fmt.Fprintf(os.Stdout, "  %s <- %s\n", names[i], m.Path)
			}
		}
	}
}

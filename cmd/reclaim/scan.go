package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/engine"
	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/filter"
	"github.com/bamsammich/reclaim/internal/stats"
	"github.com/bamsammich/reclaim/internal/ui"
)

var (
	scanExts       []string
	scanMinSizeStr string
	scanExcludes   []string
	scanIgnoreFile string
	scanBWLimitStr string
)

var scanCmd = &cobra.Command{
	Use:   "scan ROOT",
	Short: "Scan a directory tree for duplicate files",
	Long: `Scan walks ROOT, hashes every admitted file, and records the results
in the catalog. A file whose content digest was already seen earlier in
the walk is marked as a duplicate of the first occurrence.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().
		StringSliceVar(&scanExts, "ext", nil, "limit to files with these extensions (repeatable)")
	scanCmd.Flags().
		StringVar(&scanMinSizeStr, "min-size", "512K", "skip files smaller than SIZE (e.g. 1M, 100K)")
	scanCmd.Flags().
		StringArrayVar(&scanExcludes, "exclude", nil, "prune directories under PREFIX (repeatable)")
	scanCmd.Flags().
		StringVar(&scanIgnoreFile, "ignore-file", "", "gitignore-style exclusion file")
	scanCmd.Flags().
		StringVar(&scanBWLimitStr, "bwlimit", "", "hash read rate limit (e.g. 100M)")
}

//nolint:gocyclo // CLI entry point orchestrates flag parsing and wiring
func runScan(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Config file defaults apply only to flags not set on the CLI.
	if !cmd.Flags().Changed("min-size") && cfg.Defaults.MinSize != nil {
		scanMinSizeStr = *cfg.Defaults.MinSize
	}
	if !cmd.Flags().Changed("ext") && cfg.Defaults.Extensions != nil {
		scanExts = *cfg.Defaults.Extensions
	}
	if !cmd.Flags().Changed("bwlimit") && cfg.Defaults.BWLimit != nil {
		scanBWLimitStr = *cfg.Defaults.BWLimit
	}

	minSize, err := filter.ParseSize(scanMinSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --min-size: %w", err)
	}
	var bwLimit int64
	if scanBWLimitStr != "" {
		bwLimit, err = filter.ParseSize(scanBWLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	f := filter.New()
	f.SetMinSize(minSize)
	if len(scanExts) > 0 {
		f.SetExtensions(scanExts)
	}
	for _, root := range cfg.ExcludedRoots() {
		f.AddExcludedRoot(root)
	}
	for _, root := range scanExcludes {
		f.AddExcludedRoot(root)
	}
	if scanIgnoreFile != "" {
		if err := f.LoadIgnoreFile(scanIgnoreFile); err != nil {
			return fmt.Errorf("load ignore file: %w", err)
		}
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	scanner := engine.NewScanner(engine.ScannerConfig{
		Stats:   collector,
		BWLimit: bwLimit,
	})
	job := engine.NewJob(root, f)

	events, err := scanner.Scan(ctx, job)
	if err != nil {
		return err
	}
	if err := cat.BeginScan(job.ID, root); err != nil {
		return fmt.Errorf("begin scan: %w", err)
	}

	slog.Debug("starting scan",
		"root", root,
		"scan", job.ID,
		"min_size", minSize,
		"extensions", scanExts,
		"bwlimit", bwLimit,
	)

	// Tee the event stream: discovered records go to the catalog before the
	// presenter sees them.
	teed := make(chan event.Event, 64)
	var scanErr error
	go func() {
		for ev := range events {
			switch ev.Type {
			case event.FileDiscovered:
				if err := cat.AddRecord(job.ID, engine.RecordFrom(ev)); err != nil {
					slog.Warn("catalog write failed", "path", ev.Path, "error", err)
				}
			case event.ScanCompleted:
				scanErr = ev.Error
			}
			teed <- ev
		}
		close(teed)
	}()

	presenter := ui.NewPresenter(ui.Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Stats:     collector,
		Root:      root,
		Quiet:     flagQuiet,
		Verbose:   flagVerbose,
	})
	if err := presenter.Run(teed); err != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", err)
	}

	if scanErr != nil {
		// Keep partial records but leave the scan unfinished so dupes and
		// --dupes selection never see an incomplete walk.
		if err := cat.Flush(); err != nil {
			slog.Warn("catalog flush failed", "error", err)
		}
		slog.Error("scan failed", "error", scanErr)
		return &exitError{code: 1}
	}
	if err := cat.FinishScan(job.ID); err != nil {
		return fmt.Errorf("finish scan: %w", err)
	}

	if !flagQuiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}
	return nil
}

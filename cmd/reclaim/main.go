package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/catalog"
	"github.com/bamsammich/reclaim/internal/config"
)

var version = "dev"

var (
	flagQuiet   bool
	flagVerbose bool
	flagCatalog string
)

var rootCmd = &cobra.Command{
	Use:     "reclaim",
	Short:   "Find duplicate files and reclaim disk space with split zip archives",
	Version: version,
	Long: `reclaim scans directory trees for duplicate files by content digest,
records the results in a local catalog, and packs selected files into
zip containers that can be split by size, count, or extension. Every
container carries a manifest so it can be restored later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logLevel := slog.LevelWarn
		if flagVerbose {
			logLevel = slog.LevelDebug
		} else if !flagQuiet {
			logLevel = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&flagQuiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().
		StringVar(&flagCatalog, "catalog", "", "catalog database path (default: state dir)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(docsCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// loadConfig loads the optional config file, warning instead of failing
// when it is unreadable.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	return cfg
}

// openCatalog resolves the catalog path from the --catalog flag, the config
// file, or the default state directory, in that order.
func openCatalog(cfg config.Config) (*catalog.Catalog, error) {
	path := flagCatalog
	if path == "" && cfg.Defaults.Catalog != nil {
		path = *cfg.Defaults.Catalog
	}
	if path == "" {
		path = catalog.DefaultPath()
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return cat, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

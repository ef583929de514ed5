package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/ui"
)

var dupesJSON bool

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "List duplicate files from the most recent scan",
	Args:  cobra.NoArgs,
	RunE:  runDupes,
}

func init() {
	dupesCmd.Flags().BoolVar(&dupesJSON, "json", false, "emit records as JSON")
}

func runDupes(*cobra.Command, []string) error {
	cfg := loadConfig()

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	scanID, err := cat.LatestScanID()
	if err != nil {
		return err
	}
	if scanID == "" {
		return errors.New("catalog holds no finished scan; run 'reclaim scan' first")
	}

	recs, err := cat.Duplicates(scanID)
	if err != nil {
		return err
	}

	if dupesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	var reclaimable int64
	for _, rec := range recs {
		fmt.Fprintf(os.Stdout, "%s\t%s\tduplicate of %s\n",
			rec.Path, ui.FormatBytes(rec.SizeBytes), rec.DuplicateOf)
		reclaimable += rec.SizeBytes
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "%s duplicates, %s reclaimable\n",
			ui.FormatCount(int64(len(recs))), ui.FormatBytes(reclaimable))
	}
	return nil
}

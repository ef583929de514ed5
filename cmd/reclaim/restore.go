package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/reclaim/internal/archive"
)

var restoreDest string

var restoreCmd = &cobra.Command{
	Use:   "restore CONTAINER",
	Short: "Extract every entry of a zip container",
	Long: `Restore extracts all entries of CONTAINER into the destination
directory, overwriting files that already exist. The container's
manifest.json is extracted alongside the data entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVar(&restoreDest, "dest", ".", "destination directory")
}

func runRestore(_ *cobra.Command, args []string) error {
	n, err := archive.Restore(args[0], restoreDest)
	if err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stdout, "restored %d entries to %s\n", n, restoreDest)
	}
	return nil
}

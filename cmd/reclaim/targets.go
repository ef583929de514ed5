package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bamsammich/reclaim/internal/config"
)

// resolveTargets builds the file list the archive, rm, and mv commands
// operate on: positional paths, "-" for newline-separated paths on stdin,
// or the duplicate set of the most recent finished scan when dupes is set.
func resolveTargets(cfg config.Config, args []string, dupes bool, stdin io.Reader) ([]string, error) {
	if dupes {
		if len(args) > 0 {
			return nil, errors.New("--dupes cannot be combined with explicit paths")
		}
		return duplicatePaths(cfg)
	}
	if len(args) == 1 && args[0] == "-" {
		return readPaths(stdin)
	}
	if len(args) == 0 {
		return nil, errors.New("no paths given; pass paths, '-' for stdin, or --dupes")
	}
	return args, nil
}

func duplicatePaths(cfg config.Config) ([]string, error) {
	cat, err := openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	scanID, err := cat.LatestScanID()
	if err != nil {
		return nil, err
	}
	if scanID == "" {
		return nil, errors.New("catalog holds no finished scan; run 'reclaim scan' first")
	}

	recs, err := cat.Duplicates(scanID)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(recs))
	for _, rec := range recs {
		paths = append(paths, rec.Path)
	}
	return paths, nil
}

func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}
	return paths, nil
}

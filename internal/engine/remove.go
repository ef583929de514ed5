package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/platform"
	"github.com/bamsammich/reclaim/internal/stats"
)

// RemoveConfig controls the delete and move operations.
type RemoveConfig struct {
	Events chan<- event.Event
	Stats  *stats.Collector
	DryRun bool
}

func (c RemoveConfig) emit(ev event.Event) {
	if c.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case c.Events <- ev:
	default:
	}
}

// DeleteFiles removes each path in order. Per-file failures are reported
// via events and do not stop the batch. Returns the count removed and total
// bytes freed. The only error returned is context cancellation.
func DeleteFiles(ctx context.Context, cfg RemoveConfig, paths []string) (int, int64, error) {
	var deleted int
	var freed int64

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return deleted, freed, ctx.Err()
		default:
		}

		info, err := os.Lstat(path)
		if err != nil {
			cfg.emit(event.Event{Type: event.FileSkipped, Path: path, Error: err})
			continue
		}

		if !cfg.DryRun {
			if err := os.Remove(path); err != nil {
				cfg.emit(event.Event{Type: event.FileSkipped, Path: path, Error: err})
				continue
			}
		}

		deleted++
		freed += info.Size()
		if cfg.Stats != nil {
			cfg.Stats.AddBytesFreed(info.Size())
		}
		cfg.emit(event.Event{Type: event.FileDeleted, Path: path, Size: info.Size()})
	}

	return deleted, freed, nil
}

// MoveFiles moves each path into destDir, keeping the base name. Rename is
// tried first; on failure (typically a cross-device move) the file is
// copied, fsynced, and the source removed. Per-file failures are reported
// via events and skipped.
func MoveFiles(ctx context.Context, cfg RemoveConfig, destDir string, paths []string) (int, int64, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("create destination %s: %w", destDir, err)
	}

	var moved int
	var bytes int64

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return moved, bytes, ctx.Err()
		default:
		}

		info, err := os.Lstat(path)
		if err != nil {
			cfg.emit(event.Event{Type: event.FileSkipped, Path: path, Error: err})
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(path))
		if !cfg.DryRun {
			if err := movePath(path, dest); err != nil {
				cfg.emit(event.Event{Type: event.FileSkipped, Path: path, Error: err})
				continue
			}
		}

		moved++
		bytes += info.Size()
		cfg.emit(event.Event{Type: event.FileMoved, Path: path, Dest: dest, Size: info.Size()})
	}

	return moved, bytes, nil
}

func movePath(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Cross-device move: copy (synced by platform.CopyFile) then remove.
	if _, err := platform.CopyFile(src, dst); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return os.Remove(src)
}

package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/stats"
)

// ManifestEntryName is the reserved entry holding the restore manifest.
const ManifestEntryName = "manifest.json"

// Manifest maps archived entry names to original absolute source paths.
// It is serialized pretty-printed as manifest.json inside the bundle and
// is the durable record enabling restore.
type Manifest map[string]string

// ArchiveIOError reports an unrecoverable container-level failure. It is
// fatal to one bundle only; other planned bundles are unaffected.
type ArchiveIOError struct {
	Container string
	Err       error
}

func (e *ArchiveIOError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Container, e.Err)
}

func (e *ArchiveIOError) Unwrap() error { return e.Err }

// WriterConfig controls bundle writing.
type WriterConfig struct {
	Events chan<- event.Event
	Stats  *stats.Collector
}

func (c WriterConfig) emit(ev event.Event) {
	if c.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case c.Events <- ev:
	default:
	}
}

// WriteBundle writes one bundle to its target container. Members are
// copied in bundle order under their collision-resolved entry names using
// deflate compression; each source file is deleted immediately after its
// bytes are written out, so a mid-bundle failure leaves already-archived
// files removed and retrievable while unprocessed files stay untouched.
//
// A per-member copy failure is reported via events and skipped: the file
// stays on disk and gets no manifest entry. The manifest is stored as
// manifest.json unconditionally, even when members failed.
func WriteBundle(ctx context.Context, cfg WriterConfig, bundle Bundle) (Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(bundle.Target), 0o755); err != nil {
		return nil, &ArchiveIOError{Container: bundle.Target, Err: err}
	}
	f, err := os.Create(bundle.Target)
	if err != nil {
		return nil, &ArchiveIOError{Container: bundle.Target, Err: err}
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	cfg.emit(event.Event{Type: event.BundleStarted, Container: bundle.Target})

	manifest := make(Manifest, len(bundle.Members))
	names := bundle.EntryNames()
	var archivedBytes int64
	var ctxErr error

	for i, member := range bundle.Members {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
		default:
		}
		if ctxErr != nil {
			break
		}

		if err := writeMember(zw, names[i], member); err != nil {
			cfg.emit(event.Event{
				Type:      event.EntryFailed,
				Container: bundle.Target,
				Entry:     names[i],
				Path:      member.Path,
				Error:     err,
			})
			if cfg.Stats != nil {
				cfg.Stats.AddFilesFailed(1)
			}
			continue
		}

		// The member's compressed bytes are in the container; record it
		// and delete the source now, not at bundle close.
		manifest[names[i]] = member.Path
		archivedBytes += member.Size
		if cfg.Stats != nil {
			cfg.Stats.AddFilesArchived(1)
			cfg.Stats.AddBytesArchived(member.Size)
		}

		if err := os.Remove(member.Path); err != nil {
			cfg.emit(event.Event{Type: event.FileSkipped, Path: member.Path, Error: err})
		} else if cfg.Stats != nil {
			cfg.Stats.AddBytesFreed(member.Size)
		}

		cfg.emit(event.Event{
			Type:      event.EntryArchived,
			Container: bundle.Target,
			Entry:     names[i],
			Path:      member.Path,
			Size:      member.Size,
		})
	}

	if err := writeManifest(zw, manifest); err != nil {
		zw.Close()
		return manifest, &ArchiveIOError{Container: bundle.Target, Err: err}
	}
	if err := zw.Close(); err != nil {
		return manifest, &ArchiveIOError{Container: bundle.Target, Err: err}
	}
	if err := f.Sync(); err != nil {
		return manifest, &ArchiveIOError{Container: bundle.Target, Err: err}
	}

	cfg.emit(event.Event{
		Type:      event.BundleCompleted,
		Container: bundle.Target,
		Size:      archivedBytes,
	})

	if ctxErr != nil {
		return manifest, ctxErr
	}
	return manifest, nil
}

// writeMember streams one source file into the container, flushing the
// compressor so the member's bytes reach the file before the source is
// deleted.
func writeMember(zw *zip.Writer, name string, member Member) error {
	src, err := os.Open(member.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", member.Path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", member.Path, err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("copy %s: %w", member.Path, err)
	}
	return zw.Flush()
}

func writeManifest(zw *zip.Writer, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	w, err := zw.Create(ManifestEntryName)
	if err != nil {
		return fmt.Errorf("create %s: %w", ManifestEntryName, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", ManifestEntryName, err)
	}
	return nil
}

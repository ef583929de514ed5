package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/filter"
	"github.com/bamsammich/reclaim/internal/stats"
)

// ScannerConfig controls scanner behavior shared across jobs.
type ScannerConfig struct {
	Stats       *stats.Collector
	BWLimit     int64 // max hash-read bytes/sec, 0 = unlimited
	EventBuffer int
}

// Scanner walks a directory root, hashes eligible files, classifies
// duplicates, and emits a typed event stream. At most one ScanJob is active
// per Scanner; starting a new scan cancels and drains the previous one.
type Scanner struct {
	cfg     ScannerConfig
	limiter *rate.Limiter

	mu          sync.Mutex
	current     *ScanJob
	currentDone chan struct{}
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	s := &Scanner{cfg: cfg}
	if cfg.BWLimit > 0 {
		if lim, err := NewBWLimiter(cfg.BWLimit); err == nil {
			s.limiter = lim
		}
	}
	return s
}

// Scan starts the job and returns its event channel. The channel carries
// FileDiscovered, FileSkipped, and Progress events, then exactly one
// ScanCompleted before closing, whether the job ran to completion or was
// cancelled. The caller must drain the channel.
//
// Returns a *ScanStartError without starting if root cannot be enumerated.
func (s *Scanner) Scan(ctx context.Context, job *ScanJob) (<-chan event.Event, error) {
	info, err := os.Stat(job.Root)
	if err != nil {
		return nil, &ScanStartError{Root: job.Root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanStartError{Root: job.Root, Err: os.ErrInvalid}
	}

	// One active job per scanner: stop the previous one first.
	s.mu.Lock()
	prev, prevDone := s.current, s.currentDone
	s.mu.Unlock()
	if prev != nil {
		prev.Control.Cancel()
		<-prevDone
	}

	events := make(chan event.Event, s.cfg.EventBuffer)
	done := make(chan struct{})

	s.mu.Lock()
	s.current, s.currentDone = job, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer close(events)
		s.run(ctx, job, events)
	}()

	return events, nil
}

func (s *Scanner) run(ctx context.Context, job *ScanJob, events chan<- event.Event) {
	s.send(ctx, events, event.Event{Type: event.ScanStarted, Path: job.Root})

	// Enumerate the full file list up front, pruning excluded subtrees at
	// the directory level so system and program directories are never
	// descended into.
	paths := s.enumerate(job)
	total := len(paths)

	index := NewDuplicateIndex()
	var terminalErr error

	for i, path := range paths {
		// Honor pause and cancellation between files only; an in-flight
		// hash always completes.
		if err := job.Control.Wait(ctx); err != nil {
			terminalErr = err
			break
		}

		s.processFile(ctx, job, index, path, events)

		// Undefined ratio when nothing was enumerated: no progress events.
		if total > 0 {
			pct := (i + 1) * 100 / total
			if pct > 100 {
				pct = 100
			}
			s.send(ctx, events, event.Event{Type: event.Progress, Percent: pct})
		}
	}

	s.send(ctx, events, event.Event{Type: event.ScanCompleted, Path: job.Root, Error: terminalErr})
}

// enumerate collects every regular file under the root, depth-first, with
// directory-level filtering. Unreadable directories are skipped; the walk
// continues elsewhere.
func (s *Scanner) enumerate(job *ScanJob) []string {
	var files []string
	var walk func(dir string)
	walk = func(dir string) {
		if job.Control.Cancelled() {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.cfg.Stats.AddFilesFailed(1)
			return
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				if job.Filter.AdmitDir(path) {
					walk(path)
				}
			case entry.Type().IsRegular():
				files = append(files, path)
			}
		}
	}
	walk(filepath.Clean(job.Root))
	return files
}

func (s *Scanner) processFile(
	ctx context.Context,
	job *ScanJob,
	index *DuplicateIndex,
	path string,
	events chan<- event.Event,
) {
	info, err := os.Lstat(path)
	if err != nil {
		// File vanished between enumeration and processing.
		s.cfg.Stats.AddFilesFailed(1)
		s.send(ctx, events, event.Event{
			Type:  event.FileSkipped,
			Path:  path,
			Error: &FileReadError{Path: path, Err: err},
		})
		return
	}

	size := info.Size()
	s.cfg.Stats.AddFilesSeen(1)
	s.cfg.Stats.AddBytesSeen(size)

	if !job.Filter.AdmitFile(path, size) {
		s.cfg.Stats.AddFilesSkipped(1)
		return
	}

	digest, err := DigestFile(ctx, path, s.limiter)
	if err != nil {
		// Non-fatal: report, skip, continue with the next file.
		s.cfg.Stats.AddFilesFailed(1)
		s.send(ctx, events, event.Event{Type: event.FileSkipped, Path: path, Error: err})
		return
	}

	duplicateOf := index.Classify(digest, path)
	if duplicateOf != "" {
		s.cfg.Stats.AddDuplicates(1)
		s.cfg.Stats.AddBytesReclaimable(size)
	}
	s.cfg.Stats.AddFilesDiscovered(1)

	s.send(ctx, events, event.Event{
		Type:        event.FileDiscovered,
		Path:        path,
		Name:        filepath.Base(path),
		Extension:   filter.Extension(path),
		Size:        size,
		ModTime:     info.ModTime(),
		Digest:      digest,
		DuplicateOf: duplicateOf,
	})
}

// send delivers ev with a timestamp. Blocks until the consumer accepts it
// so no FileDiscovered is ever dropped; gives up only if ctx expires.
func (s *Scanner) send(ctx context.Context, events chan<- event.Event, ev event.Event) {
	ev.Timestamp = time.Now()
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

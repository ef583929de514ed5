package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/filter"
)

// FileRecord describes one eligible file discovered by a scan. Produced
// exactly once per file per scan and never mutated after emission.
type FileRecord struct {
	Path        string    // absolute path
	Name        string    // base filename
	Extension   string    // lowercase, with leading dot, or ""
	SizeBytes   int64
	ModifiedAt  time.Time
	Digest      string // hex content digest, "" if unavailable
	DuplicateOf string // path of the first file with an identical digest, or ""
}

// ScanJob drives exactly one walk of a directory root. A finished or
// cancelled job must be replaced, not reused.
type ScanJob struct {
	ID      string
	Root    string
	Filter  *filter.PathFilter
	Control *Control
}

// NewJob creates a ScanJob for root with a fresh Control token. A nil
// filter admits everything.
func NewJob(root string, f *filter.PathFilter) *ScanJob {
	if f == nil {
		f = filter.New()
	}
	return &ScanJob{
		ID:      uuid.NewString(),
		Root:    root,
		Filter:  f,
		Control: NewControl(),
	}
}

// RecordFrom rebuilds the FileRecord carried by a FileDiscovered event.
func RecordFrom(ev event.Event) FileRecord {
	return FileRecord{
		Path:        ev.Path,
		Name:        ev.Name,
		Extension:   ev.Extension,
		SizeBytes:   ev.Size,
		ModifiedAt:  ev.ModTime,
		Digest:      ev.Digest,
		DuplicateOf: ev.DuplicateOf,
	}
}

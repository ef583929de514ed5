// Package stats tracks scan and archive counters using lock-free atomics.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates counters for one scan or archive operation.
// All methods are safe for concurrent use.
type Collector struct {
	filesSeen        atomic.Int64
	filesDiscovered  atomic.Int64
	filesSkipped     atomic.Int64
	filesFailed      atomic.Int64
	duplicates       atomic.Int64
	bytesSeen        atomic.Int64
	bytesReclaimable atomic.Int64
	filesArchived    atomic.Int64
	bytesArchived    atomic.Int64
	bytesFreed       atomic.Int64
	startTime        time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesSeen        int64 // every file the walk visited
	FilesDiscovered  int64 // admitted, hashed, and emitted
	FilesSkipped     int64 // rejected by the filter
	FilesFailed      int64 // unreadable (skipped, scan continued)
	Duplicates       int64
	BytesSeen        int64
	BytesReclaimable int64 // total size of duplicate copies
	FilesArchived    int64
	BytesArchived    int64
	BytesFreed       int64
	Elapsed          time.Duration
}

func (c *Collector) AddFilesSeen(n int64)        { c.filesSeen.Add(n) }
func (c *Collector) AddFilesDiscovered(n int64)  { c.filesDiscovered.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)     { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)      { c.filesFailed.Add(n) }
func (c *Collector) AddDuplicates(n int64)       { c.duplicates.Add(n) }
func (c *Collector) AddBytesSeen(n int64)        { c.bytesSeen.Add(n) }
func (c *Collector) AddBytesReclaimable(n int64) { c.bytesReclaimable.Add(n) }
func (c *Collector) AddFilesArchived(n int64)    { c.filesArchived.Add(n) }
func (c *Collector) AddBytesArchived(n int64)    { c.bytesArchived.Add(n) }
func (c *Collector) AddBytesFreed(n int64)       { c.bytesFreed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesSeen:        c.filesSeen.Load(),
		FilesDiscovered:  c.filesDiscovered.Load(),
		FilesSkipped:     c.filesSkipped.Load(),
		FilesFailed:      c.filesFailed.Load(),
		Duplicates:       c.duplicates.Load(),
		BytesSeen:        c.bytesSeen.Load(),
		BytesReclaimable: c.bytesReclaimable.Load(),
		FilesArchived:    c.filesArchived.Load(),
		BytesArchived:    c.bytesArchived.Load(),
		BytesFreed:       c.bytesFreed.Load(),
		Elapsed:          c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"seen=%d discovered=%d skipped=%d failed=%d duplicates=%d reclaimable=%s",
		s.FilesSeen, s.FilesDiscovered, s.FilesSkipped, s.FilesFailed,
		s.Duplicates, FormatBytes(s.BytesReclaimable),
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

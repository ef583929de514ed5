package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bamsammich/reclaim/internal/stats"
)

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		b.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  duplicates 312  reclaimable 2.1 GiB  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  files %s  duplicates %s  reclaimable %s  time %s",
		icon,
		FormatCount(snap.FilesDiscovered),
		FormatCount(snap.Duplicates),
		FormatBytes(snap.BytesReclaimable),
		FormatDuration(snap.Elapsed),
	)

	if snap.FilesArchived > 0 {
		base += fmt.Sprintf("  archived %s (%s)",
			FormatCount(snap.FilesArchived), FormatBytes(snap.BytesArchived))
	}
	if snap.BytesFreed > 0 {
		base += fmt.Sprintf("  freed %s", FormatBytes(snap.BytesFreed))
	}

	base += fmt.Sprintf("  errors %d", snap.FilesFailed)
	return base
}

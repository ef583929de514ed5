package ui

import (
	"fmt"
	"io"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/stats"
)

// plainPresenter outputs one line per discovered or archived file to
// stdout, and progress percentages to stderr.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	root    string
	verbose bool

	lastPct int
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	p.lastPct = -1
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	path := StripRoot(p.root, ev.Path)
	switch ev.Type {
	case event.FileDiscovered:
		if ev.DuplicateOf != "" {
			fmt.Fprintf(p.w, "%s  %s  duplicate of %s\n",
				path, FormatBytes(ev.Size), StripRoot(p.root, ev.DuplicateOf))
		} else if p.verbose {
			fmt.Fprintf(p.w, "%s  %s\n", path, FormatBytes(ev.Size))
		}
	case event.FileSkipped:
		if ev.Error != nil {
			fmt.Fprintf(p.errW, "skip %s: %v\n", path, ev.Error)
		}
	case event.Progress:
		// Only report changed percentages to keep output line-per-step.
		if ev.Percent != p.lastPct {
			p.lastPct = ev.Percent
			fmt.Fprintf(p.errW, "progress: %d%%\n", ev.Percent)
		}
	case event.FileDeleted:
		fmt.Fprintf(p.w, "deleted %s  %s\n", path, FormatBytes(ev.Size))
	case event.FileMoved:
		fmt.Fprintf(p.w, "moved %s -> %s\n", path, ev.Dest)
	case event.BundleStarted:
		fmt.Fprintf(p.w, "bundle %s\n", ev.Container)
	case event.EntryArchived:
		fmt.Fprintf(p.w, "  + %s  %s\n", ev.Entry, FormatBytes(ev.Size))
	case event.EntryFailed:
		fmt.Fprintf(p.errW, "  ! %s: %v\n", ev.Entry, ev.Error)
	case event.BundleCompleted:
		fmt.Fprintf(p.w, "  = %s archived\n", FormatBytes(ev.Size))
	case event.ScanStarted, event.ScanCompleted:
		// summary line covers these
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

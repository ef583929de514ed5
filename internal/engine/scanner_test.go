package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/filter"
	"github.com/bamsammich/reclaim/internal/stats"
)

func collectEvents(t *testing.T, events <-chan event.Event) []event.Event {
	t.Helper()
	var all []event.Event
	for ev := range events {
		all = append(all, ev)
	}
	return all
}

func eventsOfType(all []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, ev := range all {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestScannerDiscoversFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("beta"), 0o644))

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	all := collectEvents(t, events)
	discovered := eventsOfType(all, event.FileDiscovered)
	require.Len(t, discovered, 2)
	for _, ev := range discovered {
		assert.NotEmpty(t, ev.Digest)
		assert.Empty(t, ev.DuplicateOf)
		assert.Equal(t, ".txt", ev.Extension)
		assert.False(t, ev.ModTime.IsZero())
	}

	completed := eventsOfType(all, event.ScanCompleted)
	require.Len(t, completed, 1)
	require.NoError(t, completed[0].Error)
}

func TestScannerDuplicateClassification(t *testing.T) {
	root := t.TempDir()
	// A and B share content; C differs. B must point at A, A and C at nothing.
	content := bytes.Repeat([]byte("x"), 1000)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.dat"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.dat"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.dat"), bytes.Repeat([]byte("y"), 1000), 0o644))

	collector := stats.NewCollector()
	s := NewScanner(ScannerConfig{Stats: collector})
	events, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	byName := map[string]event.Event{}
	for _, ev := range eventsOfType(collectEvents(t, events), event.FileDiscovered) {
		byName[ev.Name] = ev
	}
	require.Len(t, byName, 3)

	assert.Empty(t, byName["a.dat"].DuplicateOf)
	assert.Empty(t, byName["c.dat"].DuplicateOf)
	assert.Equal(t, filepath.Join(root, "a.dat"), byName["b.dat"].DuplicateOf)

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.Duplicates)
	assert.Equal(t, int64(1000), snap.BytesReclaimable)
}

func TestScannerEmptyFilesAreMutualDuplicates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "e1"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "e2"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "e3"), nil, 0o644))

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	discovered := eventsOfType(collectEvents(t, events), event.FileDiscovered)
	require.Len(t, discovered, 3)

	var originals, dups int
	var first string
	for _, ev := range discovered {
		if ev.DuplicateOf == "" {
			originals++
			first = ev.Path
		} else {
			dups++
		}
	}
	assert.Equal(t, 1, originals)
	assert.Equal(t, 2, dups)
	for _, ev := range discovered {
		if ev.DuplicateOf != "" {
			assert.Equal(t, first, ev.DuplicateOf)
		}
	}
}

func TestScannerProgressMonotonic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o644))
	}

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	progress := eventsOfType(collectEvents(t, events), event.Progress)
	require.NotEmpty(t, progress)

	last := -1
	for _, ev := range progress {
		assert.GreaterOrEqual(t, ev.Percent, last)
		assert.LessOrEqual(t, ev.Percent, 100)
		last = ev.Percent
	}
	assert.Equal(t, 100, progress[len(progress)-1].Percent)
}

func TestScannerEmptyRootNoProgress(t *testing.T) {
	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(t.TempDir(), nil))
	require.NoError(t, err)

	all := collectEvents(t, events)
	assert.Empty(t, eventsOfType(all, event.Progress))
	assert.Len(t, eventsOfType(all, event.ScanCompleted), 1)
}

func TestScannerExtensionFilter(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.pdf"), []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.txt"), []byte("txt"), 0o644))

	f := filter.New()
	f.SetExtensions([]string{".pdf"})

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, f))
	require.NoError(t, err)

	discovered := eventsOfType(collectEvents(t, events), event.FileDiscovered)
	require.Len(t, discovered, 1)
	assert.Equal(t, "keep.pdf", discovered[0].Name)
}

func TestScannerPrunesExcludedSubtree(t *testing.T) {
	root := t.TempDir()
	pruned := filepath.Join(root, "appdata")
	require.NoError(t, os.MkdirAll(pruned, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pruned, "hidden.txt"), []byte("no"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "visible.txt"), []byte("yes"), 0o644))

	f := filter.New()
	f.AddExcludedRoot(pruned)

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, f))
	require.NoError(t, err)

	discovered := eventsOfType(collectEvents(t, events), event.FileDiscovered)
	require.Len(t, discovered, 1)
	assert.Equal(t, "visible.txt", discovered[0].Name)
}

func TestScannerRecordAccounting(t *testing.T) {
	root := t.TempDir()
	content := []byte("same content")
	for _, name := range []string{"1.bin", "2.bin", "3.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), content, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.bin"), []byte("different"), 0o644))

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	discovered := eventsOfType(collectEvents(t, events), event.FileDiscovered)
	require.Len(t, discovered, 4)

	// Originals plus duplicates must account for every record, and every
	// non-empty duplicateOf must name another emitted record's path.
	paths := map[string]bool{}
	for _, ev := range discovered {
		paths[ev.Path] = true
	}
	var originals, dups int
	for _, ev := range discovered {
		if ev.DuplicateOf == "" {
			originals++
		} else {
			dups++
			assert.True(t, paths[ev.DuplicateOf])
		}
	}
	assert.Equal(t, len(discovered), originals+dups)
	assert.Equal(t, 2, originals)
	assert.Equal(t, 2, dups)
}

func TestScannerBadRoot(t *testing.T) {
	s := NewScanner(ScannerConfig{})

	_, err := s.Scan(context.Background(), NewJob(filepath.Join(t.TempDir(), "missing"), nil))
	require.Error(t, err)
	var startErr *ScanStartError
	assert.ErrorAs(t, err, &startErr)

	// A file root is just as fatal.
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = s.Scan(context.Background(), NewJob(file, nil))
	assert.ErrorAs(t, err, &startErr)
}

func TestScannerCancelEmitsSingleCompletion(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, string(rune('a'+i))), []byte{byte(i)}, 0o644))
	}

	job := NewJob(root, nil)
	job.Control.Cancel() // cancelled before the first file

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), job)
	require.NoError(t, err)

	all := collectEvents(t, events)
	assert.Empty(t, eventsOfType(all, event.FileDiscovered))

	completed := eventsOfType(all, event.ScanCompleted)
	require.Len(t, completed, 1)
	assert.ErrorIs(t, completed[0].Error, ErrCancelled)
}

func TestScannerPauseSuspendsBetweenFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), []byte("b"), 0o644))

	job := NewJob(root, nil)
	job.Control.Pause()

	s := NewScanner(ScannerConfig{})
	events, err := s.Scan(context.Background(), job)
	require.NoError(t, err)

	received := make(chan []event.Event, 1)
	go func() {
		var all []event.Event
		for ev := range events {
			all = append(all, ev)
		}
		received <- all
	}()

	// Paused: the scan must not finish.
	select {
	case <-received:
		t.Fatal("scan completed while paused")
	case <-time.After(100 * time.Millisecond):
	}

	job.Control.Resume()
	select {
	case all := <-received:
		assert.Len(t, eventsOfType(all, event.FileDiscovered), 2)
		assert.Len(t, eventsOfType(all, event.ScanCompleted), 1)
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not finish after resume")
	}
}

func TestScannerNewScanStopsPrevious(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("a"), 0o644))

	s := NewScanner(ScannerConfig{})

	first := NewJob(root, nil)
	first.Control.Pause() // keep the first job alive

	firstEvents, err := s.Scan(context.Background(), first)
	require.NoError(t, err)

	firstDone := make(chan []event.Event, 1)
	go func() {
		var all []event.Event
		for ev := range firstEvents {
			all = append(all, ev)
		}
		firstDone <- all
	}()

	secondEvents, err := s.Scan(context.Background(), NewJob(root, nil))
	require.NoError(t, err)

	// The paused first job must have been cancelled and completed.
	select {
	case all := <-firstDone:
		completed := eventsOfType(all, event.ScanCompleted)
		require.Len(t, completed, 1)
		assert.ErrorIs(t, completed[0].Error, ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("first job was not stopped")
	}

	all := collectEvents(t, secondEvents)
	assert.Len(t, eventsOfType(all, event.FileDiscovered), 1)
}

package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/reclaim/internal/event"
	"github.com/bamsammich/reclaim/internal/stats"
)

func runPlain(t *testing.T, cfg Config, evs []event.Event) (stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	cfg.Writer = &out
	cfg.ErrWriter = &errOut
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	p := NewPresenter(cfg)
	events := make(chan event.Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)
	require.NoError(t, p.Run(events))
	return out.String(), errOut.String()
}

func TestPlainPresenterDuplicates(t *testing.T) {
	stdout, _ := runPlain(t, Config{Root: "/data"}, []event.Event{
		{Type: event.FileDiscovered, Path: "/data/a.txt", Size: 10},
		{Type: event.FileDiscovered, Path: "/data/b.txt", Size: 10, DuplicateOf: "/data/a.txt"},
	})
	// Non-duplicates are silent unless verbose.
	assert.NotContains(t, stdout, "a.txt  10 B\n")
	assert.Contains(t, stdout, "b.txt  10 B  duplicate of a.txt\n")
}

func TestPlainPresenterVerbose(t *testing.T) {
	stdout, _ := runPlain(t, Config{Root: "/data", Verbose: true}, []event.Event{
		{Type: event.FileDiscovered, Path: "/data/a.txt", Size: 10},
	})
	assert.Contains(t, stdout, "a.txt  10 B\n")
}

func TestPlainPresenterProgressDedup(t *testing.T) {
	_, stderr := runPlain(t, Config{}, []event.Event{
		{Type: event.Progress, Percent: 50},
		{Type: event.Progress, Percent: 50},
		{Type: event.Progress, Percent: 100},
	})
	assert.Equal(t, "progress: 50%\nprogress: 100%\n", stderr)
}

func TestPlainPresenterSkipErrors(t *testing.T) {
	_, stderr := runPlain(t, Config{}, []event.Event{
		{Type: event.FileSkipped, Path: "/x", Error: errors.New("permission denied")},
		{Type: event.FileSkipped, Path: "/y"}, // filtered, not an error
	})
	assert.Contains(t, stderr, "skip /x: permission denied")
	assert.NotContains(t, stderr, "/y")
}

func TestQuietPresenterSilent(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(Config{Writer: &out, ErrWriter: &out, Quiet: true, Stats: stats.NewCollector()})
	events := make(chan event.Event, 1)
	events <- event.Event{Type: event.FileDiscovered, Path: "/a", DuplicateOf: "/b"}
	close(events)
	require.NoError(t, p.Run(events))
	assert.Empty(t, out.String())
	assert.Empty(t, p.Summary())
}

func TestStripRoot(t *testing.T) {
	assert.Equal(t, "a/b.txt", StripRoot("/data", "/data/a/b.txt"))
	assert.Equal(t, "a/b.txt", StripRoot("/data/", "/data/a/b.txt"))
	assert.Equal(t, "/other/c", StripRoot("/data", "/other/c"))
	assert.Equal(t, "/data/a", StripRoot("", "/data/a"))
}

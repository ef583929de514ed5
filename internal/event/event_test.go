package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "ScanStarted", typ: ScanStarted},
		{want: "FileDiscovered", typ: FileDiscovered},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "Progress", typ: Progress},
		{want: "ScanCompleted", typ: ScanCompleted},
		{want: "FileDeleted", typ: FileDeleted},
		{want: "FileMoved", typ: FileMoved},
		{want: "BundleStarted", typ: BundleStarted},
		{want: "EntryArchived", typ: EntryArchived},
		{want: "EntryFailed", typ: EntryFailed},
		{want: "BundleCompleted", typ: BundleCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Zero(t, e.Size)
	assert.Empty(t, e.Digest)
	assert.Empty(t, e.DuplicateOf)
	require.NoError(t, e.Error)
}

func TestEventFields(t *testing.T) {
	now := time.Now()
	e := Event{
		Type:        FileDiscovered,
		Timestamp:   now,
		Path:        "/data/report.txt",
		Name:        "report.txt",
		Extension:   ".txt",
		Size:        1024,
		Digest:      "abc123",
		DuplicateOf: "/data/orig.txt",
	}
	assert.Equal(t, FileDiscovered, e.Type)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "/data/report.txt", e.Path)
	assert.Equal(t, int64(1024), e.Size)
	assert.Equal(t, ".txt", e.Extension)
	assert.Equal(t, "/data/orig.txt", e.DuplicateOf)
}

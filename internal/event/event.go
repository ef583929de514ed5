package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	FileDiscovered
	FileSkipped
	Progress
	ScanCompleted
	FileDeleted
	FileMoved
	BundleStarted
	EntryArchived
	EntryFailed
	BundleCompleted
)

var typeNames = [...]string{
	ScanStarted:     "ScanStarted",
	FileDiscovered:  "FileDiscovered",
	FileSkipped:     "FileSkipped",
	Progress:        "Progress",
	ScanCompleted:   "ScanCompleted",
	FileDeleted:     "FileDeleted",
	FileMoved:       "FileMoved",
	BundleStarted:   "BundleStarted",
	EntryArchived:   "EntryArchived",
	EntryFailed:     "EntryFailed",
	BundleCompleted: "BundleCompleted",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type        Type
	Timestamp   time.Time
	Path        string // absolute source path
	Name        string // base filename (FileDiscovered)
	Extension   string // lowercase, with leading dot, or ""
	Size        int64
	ModTime     time.Time
	Digest      string // hex content digest (FileDiscovered)
	DuplicateOf string // path of the first file with the same digest, or ""
	Percent     int    // 0-100 (Progress)
	Dest        string // destination path (FileMoved)
	Entry       string // archive entry name (EntryArchived/EntryFailed)
	Container   string // bundle container path (Bundle*/Entry* events)
	Error       error
}

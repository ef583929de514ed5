package engine

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by Control.Wait once Cancel has been called.
var ErrCancelled = errors.New("scan cancelled")

// ScanStartError reports that a scan could not start at all: the root does
// not exist or is not a directory. Per-file failures during a running scan
// are never a ScanStartError; they are carried on events and the scan
// continues.
type ScanStartError struct {
	Root string
	Err  error
}

func (e *ScanStartError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *ScanStartError) Unwrap() error { return e.Err }

// FileReadError reports a per-file failure during metadata read or hashing.
// The file is skipped and the scan continues.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

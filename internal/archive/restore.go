package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// RestoreIOError reports that a container cannot be opened or is not a
// valid archive. Fatal to that restore call.
type RestoreIOError struct {
	Container string
	Err       error
}

func (e *RestoreIOError) Error() string {
	return fmt.Sprintf("restore %s: %v", e.Container, e.Err)
}

func (e *RestoreIOError) Unwrap() error { return e.Err }

// Restore extracts every entry in the container (manifest.json included)
// into destDir, preserving entry names as file names and overwriting any
// pre-existing files. The manifest is informational only: extraction is
// unconditional and works on bundles whose manifest is missing or stale.
// Returns the number of entries restored.
func Restore(containerPath, destDir string) (int, error) {
	zr, err := zip.OpenReader(containerPath)
	if err != nil {
		return 0, &RestoreIOError{Container: containerPath, Err: err}
	}
	defer zr.Close()
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, &RestoreIOError{Container: containerPath, Err: err}
	}

	var restored int
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if err := extractEntry(entry, destDir); err != nil {
			return restored, &RestoreIOError{Container: containerPath, Err: err}
		}
		restored++
	}
	return restored, nil
}

func extractEntry(entry *zip.File, destDir string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	// Entry names written by this tool are flat base names; Base also
	// defuses traversal in containers produced elsewhere.
	dest := filepath.Join(destDir, filepath.Base(entry.Name))
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	return out.Sync()
}

// ReadManifest returns the manifest stored in a container, or nil with no
// error when the container has none.
func ReadManifest(containerPath string) (Manifest, error) {
	zr, err := zip.OpenReader(containerPath)
	if err != nil {
		return nil, &RestoreIOError{Container: containerPath, Err: err}
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if entry.Name != ManifestEntryName {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, &RestoreIOError{Container: containerPath, Err: err}
		}
		defer rc.Close()

		var manifest Manifest
		if err := json.NewDecoder(rc).Decode(&manifest); err != nil {
			return nil, &RestoreIOError{Container: containerPath, Err: err}
		}
		return manifest, nil
	}
	return nil, nil
}

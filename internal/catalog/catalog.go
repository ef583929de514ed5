// Package catalog persists scan results in SQLite so selection commands
// (dupes, archive, rm, mv) can run in a later invocation than the scan.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bamsammich/reclaim/internal/engine"
)

// Catalog is a SQLite-backed store of scans and their FileRecords.
// AddRecord batches inserts; callers must Flush (or FinishScan/Close)
// before reading their own writes.
type Catalog struct {
	db   *sql.DB
	path string

	mu    sync.Mutex
	batch []batchEntry
}

type batchEntry struct {
	scanID string
	rec    engine.FileRecord
}

const flushThreshold = 100

// DefaultPath returns the catalog location:
// $XDG_STATE_HOME/reclaim/catalog.db, falling back to
// ~/.local/state/reclaim/catalog.db.
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "reclaim", "catalog.db")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "reclaim", "catalog.db")
}

// Open opens (or creates) the catalog at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	c := &Catalog{db: db, path: path}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id       TEXT PRIMARY KEY,
			root     TEXT NOT NULL,
			started  INTEGER NOT NULL,
			finished INTEGER
		);
		CREATE TABLE IF NOT EXISTS files (
			scan_id      TEXT NOT NULL,
			path         TEXT NOT NULL,
			name         TEXT NOT NULL,
			ext          TEXT NOT NULL,
			size         INTEGER NOT NULL,
			mtime        INTEGER NOT NULL,
			digest       TEXT NOT NULL,
			duplicate_of TEXT NOT NULL,
			PRIMARY KEY (scan_id, path)
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// BeginScan records a new scan row.
func (c *Catalog) BeginScan(scanID, root string) error {
	_, err := c.db.Exec(
		"INSERT INTO scans (id, root, started) VALUES (?, ?, ?)",
		scanID, root, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record scan %s: %w", scanID, err)
	}
	return nil
}

// AddRecord queues one FileRecord for insertion. Writes are batched and
// flushed every flushThreshold records.
func (c *Catalog) AddRecord(scanID string, rec engine.FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batch = append(c.batch, batchEntry{scanID: scanID, rec: rec})
	if len(c.batch) >= flushThreshold {
		return c.flushLocked()
	}
	return nil
}

// Flush writes any pending batch entries to the database.
func (c *Catalog) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Catalog) flushLocked() error {
	if len(c.batch) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO files
		(scan_id, path, name, ext, size, mtime, digest, duplicate_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range c.batch {
		_, err := stmt.Exec(
			e.scanID, e.rec.Path, e.rec.Name, e.rec.Extension,
			e.rec.SizeBytes, e.rec.ModifiedAt.UnixNano(),
			e.rec.Digest, e.rec.DuplicateOf,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.rec.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.batch = c.batch[:0]
	return nil
}

// FinishScan flushes pending records and marks the scan finished.
func (c *Catalog) FinishScan(scanID string) error {
	if err := c.Flush(); err != nil {
		return err
	}
	_, err := c.db.Exec(
		"UPDATE scans SET finished = ? WHERE id = ?",
		time.Now().UnixNano(), scanID,
	)
	if err != nil {
		return fmt.Errorf("finish scan %s: %w", scanID, err)
	}
	return nil
}

// LatestScanID returns the most recently started finished scan, or "" when
// the catalog holds none.
func (c *Catalog) LatestScanID() (string, error) {
	var id string
	err := c.db.QueryRow(
		"SELECT id FROM scans WHERE finished IS NOT NULL ORDER BY started DESC LIMIT 1",
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest scan: %w", err)
	}
	return id, nil
}

// Duplicates returns every record of scanID whose duplicateOf is set, in
// insertion (walk) order by path.
func (c *Catalog) Duplicates(scanID string) ([]engine.FileRecord, error) {
	rows, err := c.db.Query(`SELECT path, name, ext, size, mtime, digest, duplicate_of
		FROM files WHERE scan_id = ? AND duplicate_of != '' ORDER BY path`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Records returns every record of scanID ordered by path.
func (c *Catalog) Records(scanID string) ([]engine.FileRecord, error) {
	rows, err := c.db.Query(`SELECT path, name, ext, size, mtime, digest, duplicate_of
		FROM files WHERE scan_id = ? ORDER BY path`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]engine.FileRecord, error) {
	var records []engine.FileRecord
	for rows.Next() {
		var rec engine.FileRecord
		var mtime int64
		err := rows.Scan(
			&rec.Path, &rec.Name, &rec.Extension, &rec.SizeBytes,
			&mtime, &rec.Digest, &rec.DuplicateOf,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.ModifiedAt = time.Unix(0, mtime)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close flushes pending writes and closes the database.
func (c *Catalog) Close() error {
	c.mu.Lock()
	flushErr := c.flushLocked()
	c.mu.Unlock()

	if err := c.db.Close(); err != nil {
		return err
	}
	return flushErr
}

// Path returns the catalog database file path.
func (c *Catalog) Path() string { return c.path }

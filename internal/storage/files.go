// Package storage handles the file-based handoff between the pipeline
// stages: raw table snapshots written by the fetcher and the web-ready
// artifacts written by the denormalizer.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stacksight/pipeline/internal/models"
)

// ErrMissingSnapshot means a required snapshot file does not exist.
// The denormalizer treats this as fatal for the whole run.
var ErrMissingSnapshot = errors.New("storage: snapshot missing")

// Store reads and writes the pipeline's data directories.
type Store struct {
	snapshotDir string
	webDir      string
}

// New creates a Store over the given directories. Directories are
// created lazily on first write.
func New(snapshotDir, webDir string) *Store {
	return &Store{snapshotDir: snapshotDir, webDir: webDir}
}

// WebDir returns the directory web artifacts are written to.
func (s *Store) WebDir() string {
	return s.webDir
}

// SnapshotPath returns the snapshot file path for a table.
func (s *Store) SnapshotPath(table string) string {
	return filepath.Join(s.snapshotDir, table+".json")
}

// WriteSnapshot overwrites the snapshot file for a table with the full
// row set.
func (s *Store) WriteSnapshot(table string, rows []models.Row) error {
	if err := os.MkdirAll(s.snapshotDir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if rows == nil {
		rows = []models.Row{}
	}
	return writeJSON(s.SnapshotPath(table), rows)
}

// ReadSnapshot loads the snapshot file for a table. A missing file is
// reported as ErrMissingSnapshot; a malformed file is an error too.
func (s *Store) ReadSnapshot(table string) ([]models.Row, error) {
	path := s.SnapshotPath(table)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSnapshot, path)
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var rows []models.Row
	if err := json.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return rows, nil
}

// WriteArtifact overwrites one web-ready JSON file by name
// (e.g. "companies.json").
func (s *Store) WriteArtifact(name string, v any) error {
	if err := os.MkdirAll(s.webDir, 0o755); err != nil {
		return fmt.Errorf("create web dir: %w", err)
	}
	return writeJSON(filepath.Join(s.webDir, name), v)
}

// writeJSON writes v as human-readable, two-space-indented UTF-8 JSON.
// HTML escaping is off so URLs survive byte-for-byte.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

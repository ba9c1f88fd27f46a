// Package manifest keeps a small sqlite ledger next to the vector store: which
// embedder and chunking parameters a collection was built with, which source
// files went in, and the history of ingestion runs. Its main job is refusing
// queries made with a different embedder than the one used at ingest time,
// which would otherwise silently degrade retrieval.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrEmbedderMismatch is returned when the configured embedder differs from
// the one the collection was ingested with.
var ErrEmbedderMismatch = errors.New("embedder does not match the one used at ingest time")

// DB wraps a sql.DB with manifest-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens the manifest database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging manifest: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory manifest database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory manifest: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    embedder TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    chunk_size INTEGER NOT NULL,
    chunk_overlap INTEGER NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS files (
    collection TEXT NOT NULL,
    source TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    chunks INTEGER NOT NULL,
    ingested_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (collection, source)
);

CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    files INTEGER NOT NULL,
    chunks INTEGER NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_collection ON runs(collection, finished_at);
`

// CollectionInfo describes how a collection was built.
type CollectionInfo struct {
	Name         string
	Embedder     string
	Dimensions   int
	ChunkSize    int
	ChunkOverlap int
	UpdatedAt    time.Time
}

// Run records one ingestion run.
type Run struct {
	ID         string
	Collection string
	Files      int
	Chunks     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// FileRecord describes one ingested source file.
type FileRecord struct {
	Source      string
	ContentHash string
	Chunks      int
	IngestedAt  time.Time
}

// RecordCollection upserts the build parameters of a collection.
func (d *DB) RecordCollection(info CollectionInfo) error {
	_, err := d.Exec(`
		INSERT INTO collections (name, embedder, dimensions, chunk_size, chunk_overlap, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			embedder = excluded.embedder,
			dimensions = excluded.dimensions,
			chunk_size = excluded.chunk_size,
			chunk_overlap = excluded.chunk_overlap,
			updated_at = excluded.updated_at`,
		info.Name, info.Embedder, info.Dimensions, info.ChunkSize, info.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("recording collection %q: %w", info.Name, err)
	}
	return nil
}

// Collection returns the recorded build parameters, or sql.ErrNoRows when the
// collection has never been ingested.
func (d *DB) Collection(name string) (*CollectionInfo, error) {
	var info CollectionInfo
	var updated string
	err := d.QueryRow(`
		SELECT name, embedder, dimensions, chunk_size, chunk_overlap, updated_at
		FROM collections WHERE name = ?`, name).
		Scan(&info.Name, &info.Embedder, &info.Dimensions, &info.ChunkSize, &info.ChunkOverlap, &updated)
	if err != nil {
		return nil, err
	}
	info.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updated)
	return &info, nil
}

// CheckEmbedder verifies that the configured embedder matches the one the
// collection was ingested with. A collection that has never been ingested
// passes the check.
func (d *DB) CheckEmbedder(collection, embedder string) error {
	info, err := d.Collection(collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up collection %q: %w", collection, err)
	}
	if info.Embedder != embedder {
		return fmt.Errorf("collection %q was ingested with %q but %q is configured: %w",
			collection, info.Embedder, embedder, ErrEmbedderMismatch)
	}
	return nil
}

// ClearFiles removes all file records for a collection, ahead of a re-ingest.
func (d *DB) ClearFiles(collection string) error {
	_, err := d.Exec(`DELETE FROM files WHERE collection = ?`, collection)
	return err
}

// RecordFile upserts the record of one ingested source file.
func (d *DB) RecordFile(collection, source, contentHash string, chunks int) error {
	_, err := d.Exec(`
		INSERT INTO files (collection, source, content_hash, chunks, ingested_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(collection, source) DO UPDATE SET
			content_hash = excluded.content_hash,
			chunks = excluded.chunks,
			ingested_at = excluded.ingested_at`,
		collection, source, contentHash, chunks)
	if err != nil {
		return fmt.Errorf("recording file %q: %w", source, err)
	}
	return nil
}

// Files lists the ingested source files of a collection.
func (d *DB) Files(collection string) ([]FileRecord, error) {
	rows, err := d.Query(`
		SELECT source, content_hash, chunks, ingested_at
		FROM files WHERE collection = ? ORDER BY source`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var ingested string
		if err := rows.Scan(&f.Source, &f.ContentHash, &f.Chunks, &ingested); err != nil {
			return nil, err
		}
		f.IngestedAt, _ = time.Parse("2006-01-02 15:04:05", ingested)
		files = append(files, f)
	}
	return files, rows.Err()
}

// RecordRun appends one ingestion run to the history.
func (d *DB) RecordRun(run Run) error {
	_, err := d.Exec(`
		INSERT INTO runs (id, collection, files, chunks, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, run.Files, run.Chunks,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording run %q: %w", run.ID, err)
	}
	return nil
}

// LastRun returns the most recent ingestion run for a collection, or
// sql.ErrNoRows when none exists.
func (d *DB) LastRun(collection string) (*Run, error) {
	var run Run
	var started, finished string
	err := d.QueryRow(`
		SELECT id, collection, files, chunks, started_at, finished_at
		FROM runs WHERE collection = ? ORDER BY finished_at DESC LIMIT 1`, collection).
		Scan(&run.ID, &run.Collection, &run.Files, &run.Chunks, &started, &finished)
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return &run, nil
}

// Path returns the on-disk location of the manifest.
func (d *DB) Path() string { return d.path }

// DefaultPath returns the conventional manifest location inside a store dir.
func DefaultPath(storeDir string) string {
	return filepath.Join(storeDir, "manifest.db")
}

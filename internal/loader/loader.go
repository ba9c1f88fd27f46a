// Package loader reads supported document files (PDF, Markdown, plain text)
// from a directory tree and produces raw text units tagged with their source.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Type categorizes the kind of document that was loaded.
type Type string

const (
	TypePDF      Type = "pdf"
	TypeMarkdown Type = "markdown"
	TypeText     Type = "text"
)

// Document is one raw text unit produced by loading a file. PDFs yield one
// Document per page (Page is 1-based); other types yield a single Document
// with Page zero.
type Document struct {
	Source string // base filename, used in citations
	Path   string // path on disk
	Page   int
	Text   string
	Type   Type
}

// Options control directory traversal and file filtering.
type Options struct {
	DocsDir     string
	Include     []string // doublestar globs; empty = include everything
	Exclude     []string // doublestar globs
	MaxFileSize int64    // files larger than this are skipped (0 = no limit)
}

// Loader walks a docs directory and loads every supported file.
type Loader struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Loader. logger may be nil.
func New(opts Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{opts: opts, logger: logger}
}

// Load traverses the docs directory and returns the text of every supported
// file. Unreadable or corrupt files are logged and skipped; only a missing
// or unwalkable root is an error.
func (l *Loader) Load() ([]Document, error) {
	root, err := filepath.Abs(l.opts.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve docs dir: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("loader: docs dir %s: %w", l.opts.DocsDir, err)
	}

	var docs []Document

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			l.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(walkErr))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !matchesInclude(relPath, l.opts.Include) || matchesExclude(relPath, l.opts.Exclude) {
			return nil
		}

		if _, ok := typeForExt(filepath.Ext(path)); !ok {
			return nil
		}

		if l.opts.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > l.opts.MaxFileSize {
				l.logger.Warn("skipping oversized file",
					zap.String("path", relPath), zap.Int64("size", info.Size()))
				return nil
			}
		}

		loaded, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("failed to load file", zap.String("path", relPath), zap.Error(err))
			return nil
		}

		docs = append(docs, loaded...)
		l.logger.Info("loaded file", zap.String("path", relPath), zap.Int("units", len(loaded)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: traversal: %w", err)
	}

	return docs, nil
}

// LoadFile loads a single file by its extension-specific reader.
func (l *Loader) LoadFile(path string) ([]Document, error) {
	docType, ok := typeForExt(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	switch docType {
	case TypePDF:
		return loadPDF(path)
	case TypeMarkdown:
		return loadMarkdown(path)
	default:
		return loadText(path)
	}
}

// Supported reports whether the loader has a reader for the given path.
func Supported(path string) bool {
	_, ok := typeForExt(filepath.Ext(path))
	return ok
}

// Extensions returns the file extensions the loader understands.
func Extensions() []string {
	return []string{".pdf", ".md", ".markdown", ".txt"}
}

func typeForExt(ext string) (Type, bool) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return TypePDF, true
	case ".md", ".markdown":
		return TypeMarkdown, true
	case ".txt":
		return TypeText, true
	default:
		return "", false
	}
}

// isBinary reads the first 512 bytes and checks for NUL bytes, a simple but
// effective heuristic for binary content masquerading as text.
func isBinary(f io.Reader) (bool, []byte, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, nil, err
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true, nil, nil
		}
	}
	return false, buf[:n], nil
}

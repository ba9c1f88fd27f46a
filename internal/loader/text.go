package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// loadText reads a plain text file, rejecting binary content that happens to
// carry a .txt extension.
func loadText(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text file: %w", err)
	}
	defer f.Close()

	binary, head, err := isBinary(f)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	if binary {
		return nil, fmt.Errorf("binary content in %s", path)
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	return []Document{{
		Source: filepath.Base(path),
		Path:   path,
		Text:   string(head) + string(rest),
		Type:   TypeText,
	}}, nil
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyTreeRoundTrip(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "local_knowledge"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	files := map[string]string{
		"manifest.db":                  "sqlite bytes",
		"local_knowledge/00001.gob.gz": "chunk one",
		"local_knowledge/00002.gob.gz": "chunk two",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}

	dst := filepath.Join(t.TempDir(), "backup")
	if err := copyTree(src, dst); err != nil {
		t.Fatalf("copyTree: %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestCopyTreeMissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out")
	if err := copyTree(filepath.Join(t.TempDir(), "nope"), dst); err == nil {
		t.Fatal("expected error for missing source")
	}
}

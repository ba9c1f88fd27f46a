package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestTriggerOnWrite(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w := New(dir, []string{"md"}, func() { fired.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 })
}

func TestIgnoresUnmatchedExtension(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w := New(dir, []string{"md", "pdf"}, func() { fired.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("callback fired %d times for an ignored extension", n)
	}
}

func TestBurstCoalesces(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w := New(dir, nil, func() { fired.Add(1) }, WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "doc.txt"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("burst of writes fired callback %d times, want 1", n)
	}
}

func TestCallbacksNeverOverlap(t *testing.T) {
	dir := t.TempDir()
	var active, maxActive, fired atomic.Int32

	onChange := func() {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(300 * time.Millisecond) // long-running re-ingest
		active.Add(-1)
		fired.Add(1)
	}

	w := New(dir, []string{"txt"}, onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// First write starts a slow callback; the second lands while it runs.
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("2"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool { return fired.Load() >= 2 })
	if m := maxActive.Load(); m != 1 {
		t.Errorf("callbacks overlapped: %d ran concurrently", m)
	}
}

func TestWatchesNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w := New(dir, []string{"txt"}, func() { fired.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 })
	before := fired.Load()

	if err := os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return fired.Load() > before })
}

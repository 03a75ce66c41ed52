package watcher

// Notes:
// - End-to-end tests depend on the OS delivering fsnotify events; they wait
//   up to 5s for a batch so slow CI filesystems do not flake.
// - record/drain are tested directly for filtering and dedup since they run
//   on the Run goroutine only.

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newTestWatcher(t *testing.T, filters ...Filter) *Watcher {
	t.Helper()
	w, err := New(20*time.Millisecond, nil, filters...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

// runWatcher starts Run and returns the batch channel plus a stop func that
// waits for Run to return.
func runWatcher(t *testing.T, w *Watcher) (<-chan []Event, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, events []Event) {
			batches <- events
		})
	}()
	return batches, func() {
		cancel()
		<-done
	}
}

func waitBatch(t *testing.T, batches <-chan []Event) []Event {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
		return nil
	}
}

// ---------------------------------------------------------------------------
// TestOpString - Op names
// ---------------------------------------------------------------------------

func TestOpString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   Op
		want string
	}{
		{OpCreated, "created"},
		{OpModified, "modified"},
		{OpRemoved, "removed"},
		{OpRenamed, "renamed"},
		{Op(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilters - Path filters
// ---------------------------------------------------------------------------

func TestMarkdownFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"docs/guide.markdown", true},
		{"NOTES.MD", true},
		{"main.go", false},
		{"page.html", false},
		{"md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := MarkdownFilter(tt.path); got != tt.want {
				t.Errorf("MarkdownFilter(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNoHiddenFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"docs/README.md", true},
		{"docs/.README.md.swp", false},
		{".hidden.md", false},
		{"README.md~", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := NoHiddenFilter(tt.path); got != tt.want {
				t.Errorf("NoHiddenFilter(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRecord - Filtering and dedup
// ---------------------------------------------------------------------------

func TestRecord(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t, MarkdownFilter)
	defer w.fs.Close()

	kept := []fsnotify.Event{
		{Name: "b.md", Op: fsnotify.Create},
		{Name: "a.md", Op: fsnotify.Write},
		{Name: "b.md", Op: fsnotify.Write},
	}
	for _, ev := range kept {
		if !w.record(ev) {
			t.Errorf("record(%v) = false, want true", ev)
		}
	}

	dropped := []fsnotify.Event{
		{Name: "c.txt", Op: fsnotify.Write},
		{Name: "a.md", Op: fsnotify.Chmod},
	}
	for _, ev := range dropped {
		if w.record(ev) {
			t.Errorf("record(%v) = true, want false", ev)
		}
	}

	batch := w.drain()
	want := []Event{
		{Op: OpModified, Path: "a.md"},
		{Op: OpModified, Path: "b.md"},
	}
	if len(batch) != len(want) {
		t.Fatalf("drain() = %v, want %v", batch, want)
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Errorf("batch[%d] = %v, want %v", i, batch[i], want[i])
		}
	}

	if again := w.drain(); len(again) != 0 {
		t.Errorf("second drain() = %v, want empty", again)
	}
}

func TestNew_DefaultDelay(t *testing.T) {
	t.Parallel()

	w, err := New(0, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fs.Close()

	if w.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", w.delay, DefaultDelay)
	}
}

// ---------------------------------------------------------------------------
// TestRun - End to end
// ---------------------------------------------------------------------------

func TestRun_DeliversDebouncedBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, MarkdownFilter)
	if err := w.AddRecursive(dir); err != nil {
		t.Fatalf("AddRecursive() error = %v", err)
	}
	batches, stop := runWatcher(t, w)
	defer stop()

	path := filepath.Join(dir, "page.md")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("# v"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	batch := waitBatch(t, batches)
	seen := 0
	for _, ev := range batch {
		if ev.Path == "" || filepath.Ext(ev.Path) != ".md" {
			t.Errorf("unexpected event %v", ev)
		}
		if ev.Path == path {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("page.md appears %d times in %v, want 1", seen, batch)
	}
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, MarkdownFilter)
	if err := w.AddRecursive(dir); err != nil {
		t.Fatalf("AddRecursive() error = %v", err)
	}
	batches, stop := runWatcher(t, w)
	defer stop()

	sub := filepath.Join(dir, "chapter")
	if err := os.Mkdir(sub, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Retry the write until the new directory is watched
	path := filepath.Join(sub, "one.md")
	deadline := time.After(5 * time.Second)
	for {
		if err := os.WriteFile(path, []byte("# one"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case batch := <-batches:
			for _, ev := range batch {
				if ev.Path == path {
					return
				}
			}
		case <-time.After(200 * time.Millisecond):
		case <-deadline:
			t.Fatal("no event from new subdirectory")
		}
	}
}

func TestAddRecursive_SkipsHiddenDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, d := range []string{".git", "node_modules", "docs"} {
		if err := os.Mkdir(filepath.Join(dir, d), 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	w := newTestWatcher(t)
	defer w.fs.Close()
	if err := w.AddRecursive(dir); err != nil {
		t.Fatalf("AddRecursive() error = %v", err)
	}

	watched := map[string]bool{}
	for _, p := range w.fs.WatchList() {
		watched[p] = true
	}
	if !watched[dir] || !watched[filepath.Join(dir, "docs")] {
		t.Errorf("WatchList() = %v, want root and docs", w.fs.WatchList())
	}
	if watched[filepath.Join(dir, ".git")] || watched[filepath.Join(dir, "node_modules")] {
		t.Errorf("WatchList() = %v, hidden dirs should be skipped", w.fs.WatchList())
	}
}

func TestAddRecursive_MissingRoot(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t)
	defer w.fs.Close()

	if err := w.AddRecursive(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

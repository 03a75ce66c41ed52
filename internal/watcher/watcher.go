// Package watcher reports debounced file changes under a directory tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-gfmrender/internal/fileutil"
)

// DefaultDelay coalesces editor save bursts (write, chmod, rename).
const DefaultDelay = 100 * time.Millisecond

// Op is the kind of change seen for a path.
type Op int

const (
	OpCreated Op = iota
	OpModified
	OpRemoved
	OpRenamed
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpRemoved:
		return "removed"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is the last change seen for one path within a debounce window.
type Event struct {
	Op   Op
	Path string
}

// Filter reports whether a path is of interest. All filters must accept.
type Filter func(path string) bool

// Handler receives one batch per quiet period, sorted by path.
type Handler func(ctx context.Context, events []Event)

// Watcher watches directories recursively and batches changes.
type Watcher struct {
	fs      *fsnotify.Watcher
	delay   time.Duration
	filters []Filter
	logger  *slog.Logger
	pending map[string]Event
}

// New creates a watcher. A non-positive delay uses DefaultDelay.
func New(delay time.Duration, logger *slog.Logger, filters ...Filter) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		fs:      fsw,
		delay:   delay,
		filters: filters,
		logger:  logger,
		pending: make(map[string]Event),
	}, nil
}

// AddRecursive watches root and every directory below it, skipping hidden
// directories and node_modules.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Run delivers batches to handle until ctx ends, then releases the OS
// watches. The handler runs on the Run goroutine: events arriving meanwhile
// are queued for the next batch.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fs.Close()

	// Armed by the first kept event
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.record(ev) {
				timer.Reset(w.delay)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			if batch := w.drain(); len(batch) > 0 {
				handle(ctx, batch)
			}
		}
	}
}

// record adds ev to the pending set and reports whether it was kept.
// New directories are watched so files created in them are seen.
func (w *Watcher) record(ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Create) && fileutil.DirExists(ev.Name) {
		if !skipDir(filepath.Base(ev.Name)) {
			if err := w.AddRecursive(ev.Name); err != nil {
				w.logger.Warn("watching new directory", "path", ev.Name, "error", err)
			}
		}
		return false
	}

	for _, f := range w.filters {
		if !f(ev.Name) {
			return false
		}
	}

	op, ok := convertOp(ev.Op)
	if !ok {
		return false
	}
	w.pending[ev.Name] = Event{Op: op, Path: ev.Name}
	return true
}

func (w *Watcher) drain() []Event {
	batch := make([]Event, 0, len(w.pending))
	for _, ev := range w.pending {
		batch = append(batch, ev)
	}
	clear(w.pending)
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	return batch
}

// convertOp maps an fsnotify op; chmod-only events are dropped.
func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreated, true
	case op.Has(fsnotify.Write):
		return OpModified, true
	case op.Has(fsnotify.Remove):
		return OpRemoved, true
	case op.Has(fsnotify.Rename):
		return OpRenamed, true
	default:
		return 0, false
	}
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// MarkdownFilter accepts Markdown sources.
func MarkdownFilter(path string) bool {
	return fileutil.HasExt(path, ".md", ".markdown")
}

// NoHiddenFilter rejects dotfiles, including editor swap files.
func NoHiddenFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches one file and calls a Handler with debounced batches.
type FileWatcher struct {
	path      string
	opts      Options
	logger    *slog.Logger
	handler   Handler
	debouncer *Debouncer
	fsw       *fsnotify.Watcher

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// NewFileWatcher prepares a watcher for path. Nothing is watched until Start.
func NewFileWatcher(path string, opts Options, handler Handler) (*FileWatcher, error) {
	if handler == nil {
		return nil, errors.New("watcher: nil handler")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}
	opts = opts.WithDefaults()

	w := &FileWatcher{
		path:      abs,
		opts:      opts,
		logger:    opts.Logger,
		handler:   handler,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.Logger),
		stopCh:    make(chan struct{}),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.logger.Warn("fsnotify unavailable, falling back to polling",
				slog.String("error", err.Error()))
		} else {
			w.fsw = fsw
		}
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Mode returns "fsnotify" or "polling".
func (w *FileWatcher) Mode() string {
	if w.fsw != nil {
		return "fsnotify"
	}
	return "polling"
}

// Start watches until ctx is cancelled or Stop is called. It blocks.
func (w *FileWatcher) Start(ctx context.Context) error {
	if w.fsw != nil {
		// Watch the directory: editors often save by writing a temp file and
		// renaming it over the original, which drops a watch on the file itself.
		if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
		}
		go w.forward()
		w.logger.Debug("watching file", slog.String("path", w.path), slog.String("mode", "fsnotify"))
		return w.runFsnotify(ctx)
	}

	go w.forward()
	w.logger.Debug("watching file", slog.String("path", w.path), slog.String("mode", "polling"))
	return w.runPolling(ctx)
}

func (w *FileWatcher) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// chmod
		return
	}

	w.debouncer.Add(FileEvent{Path: w.path, Operation: op, Timestamp: time.Now()})
}

type snapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (w *FileWatcher) stat() snapshot {
	info, err := os.Stat(w.path)
	if err != nil {
		return snapshot{}
	}
	return snapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
}

func (w *FileWatcher) runPolling(ctx context.Context) error {
	prev := w.stat()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			cur := w.stat()
			if op, changed := diff(prev, cur); changed {
				w.debouncer.Add(FileEvent{Path: w.path, Operation: op, Timestamp: time.Now()})
			}
			prev = cur
		}
	}
}

// diff classifies the change between two polls.
func diff(prev, cur snapshot) (Operation, bool) {
	switch {
	case !prev.exists && cur.exists:
		return OpCreate, true
	case prev.exists && !cur.exists:
		return OpDelete, true
	case cur.exists && (!prev.modTime.Equal(cur.modTime) || prev.size != cur.size):
		return OpModify, true
	default:
		return 0, false
	}
}

// forward delivers debounced batches to the handler until the debouncer stops.
func (w *FileWatcher) forward() {
	for events := range w.debouncer.Output() {
		if len(events) == 0 {
			continue
		}
		w.safeHandle(events)
	}
}

func (w *FileWatcher) safeHandle(events []FileEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("file watcher handler panicked", slog.Any("panic", r))
		}
	}()
	w.handler(events)
}

// Stop stops watching. Safe to call multiple times.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

package realtime

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of file events into one hint.
const DefaultDebounce = 200 * time.Millisecond

// Watcher turns writes to the SQLite database made by other processes into
// TopicAll hints on a Hub. It watches the database's directory because SQLite
// replaces and appends to sidecar files (-wal, -journal) that may not exist yet.
type Watcher struct {
	mu       sync.Mutex
	hub      *Hub
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]bool
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	pending   bool
	lastEvent time.Time
}

// NewWatcher creates a watcher for the database file at dbPath.
func NewWatcher(hub *Hub, dbPath string, debounce time.Duration) (*Watcher, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return nil, errors.New("watcher needs a file-backed database")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		fw.Close()
		return nil, err
	}
	base := filepath.Base(abs)

	return &Watcher{
		hub:     hub,
		watcher: fw,
		dir:     filepath.Dir(abs),
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logger.Debug("watching database directory", "dir", w.dir)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logger.Error("closing database watcher", "err", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("database watcher error", "err", err)

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.names[filepath.Base(event.Name)] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.pending = true
	w.lastEvent = time.Now()
}

// flush publishes once the event stream has been quiet for the debounce window.
func (w *Watcher) flush(now time.Time) {
	if !w.pending || now.Sub(w.lastEvent) < w.debounce {
		return
	}
	w.pending = false
	w.hub.Publish(Change{Topic: TopicAll, Op: OpUpdate, Source: SourceExternal, At: now.UTC()})
}

package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/couchcryptid/squirrel-census/internal/observability"
)

// DefaultDebounce collapses the burst of events produced by one atomic write.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Store when its dataset file changes on disk. The containing
// directory is watched so that rename-over writes are seen.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the store's dataset file.
func NewWatcher(store *Store, debounce time.Duration, logger *slog.Logger, metrics *observability.Metrics) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    store,
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		metrics:  metrics,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the dataset directory in a background goroutine until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.running = true
	w.logger.Info("dataset watcher started", "dir", dir)

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit. Safe to call more than once and
// after the context has been cancelled.
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
		w.logger.Error("close dataset watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	target := filepath.Clean(w.store.Path())
	var pending <-chan time.Time

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
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("dataset changed", "op", event.Op.String())
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("dataset watcher", "error", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		w.logger.Error("dataset reload failed, keeping previous dataset", "path", w.store.Path(), "error", err)
		w.recordReload("error")
		return
	}
	w.recordReload("success")
}

func (w *Watcher) recordReload(outcome string) {
	if w.metrics != nil {
		w.metrics.DatasetReloads.WithLabelValues(outcome).Inc()
	}
}

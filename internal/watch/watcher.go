// Package watch wakes the worker loop when a transcript lands in the input
// directory, so new work starts immediately instead of waiting out the poll
// interval. Polling remains the fallback: missed filesystem events only
// cost latency, never correctness.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"scribed/internal/queue"
)

// Watcher converts fsnotify events on the input directory into wake
// signals.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	wake    chan struct{}
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher over dir. The directory must exist.
func NewWatcher(dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: fsw,
		dir:     dir,
		wake:    make(chan struct{}, 1),
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Wake returns the channel that receives a signal whenever a claimable
// transcript may have appeared. Capacity 1: repeated events coalesce.
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

// Start begins watching. Non-blocking; Stop or context cancellation ends
// the event loop.
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
		w.watcher.Close()
		return err
	}
	w.logger.Debug("watching input directory", zap.String("dir", w.dir))

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !claimableEvent(event) {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default: // a wake-up is already pending
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}

// claimableEvent reports whether the event can have made a new .txt file
// visible: a create, or a rename/move into the directory.
func claimableEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), queue.InputExt)
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}

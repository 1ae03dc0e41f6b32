package fswatch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Waiter wakes the base-map refresher when the world save changes. It
// watches the parent directory because game servers usually replace the
// save with a rename, which drops a watch on the file itself.
type Waiter struct {
	watcher *fsnotify.Watcher
	target  string
	settle  time.Duration
	logger  *zap.Logger
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWaiter(path string, settle time.Duration, logger *zap.Logger) (*Waiter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w := &Waiter{
		watcher: watcher,
		target:  target,
		settle:  settle,
		logger:  logger,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Waiter) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("world save watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Waiter) matches(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == w.target
}

// Wait returns after the world save changes and the settle period passes,
// after max elapses, or when ctx is done. A non-positive max waits for a
// change only.
func (w *Waiter) Wait(ctx context.Context, max time.Duration) {
	var timeout <-chan time.Time
	if max > 0 {
		t := time.NewTimer(max)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case <-w.changed:
	case <-timeout:
		return
	case <-ctx.Done():
		return
	}
	if w.settle <= 0 {
		return
	}
	// Let a burst of writes finish, then drop the wake-ups it produced.
	t := time.NewTimer(w.settle)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		return
	}
	select {
	case <-w.changed:
	default:
	}
}

func (w *Waiter) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

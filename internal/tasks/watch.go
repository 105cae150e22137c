package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/wallview/internal/shared"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDuration is the default quiet period before a rescan.
const DefaultDebounceDuration = 500 * time.Millisecond

// Debouncer coalesces rapid events into a single callback invocation.
// Only the callback from the last Trigger within the window runs.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	seq      uint64
}

// NewDebouncer creates a Debouncer. A zero duration uses [DefaultDebounceDuration].
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger schedules callback after the debounce window, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// A stale timer can fire after Stop returned false.
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			callback()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch rescans root whenever image files below it change, until ctx is cancelled.
//
// Events are debounced by debounce. A rescan that collides with a running scan is
// skipped; the next event triggers another attempt.
func (s *Scanner) Watch(ctx context.Context, progress chan<- ProgressUpdate, categoryID, root string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}

	logger := s.logger.With("category", categoryID, "root", root)
	debouncer := NewDebouncer(debounce)
	defer debouncer.Cancel()

	rescan := func() {
		result, err := s.Scan(ctx, nil, categoryID, root)
		switch {
		case errors.Is(err, shared.ErrScanInProgress):
			logger.Debug("rescan skipped, scan already running")
		case errors.Is(err, context.Canceled):
		case err != nil:
			logger.Error("rescan failed", "error", err)
		default:
			sendProgress(progress, watchUpdate(root, result))
		}
	}

	logger.Info("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("failed to watch directory", "path", event.Name, "error", err)
					}
					debouncer.Trigger(rescan)
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("file event", "op", event.Op.String(), "path", event.Name)
			debouncer.Trigger(rescan)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event concerns an image file.
// Removes and renames of directories surface as their own path, so those always count.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return shared.AllowedImage(event.Name)
}

// addTree watches root and every directory below it. fsnotify watches are not recursive.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

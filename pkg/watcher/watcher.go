// Package watcher notifies about changes to source documents so stale
// export artifacts can be dropped promptly instead of waiting for the
// next staleness check.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DocumentWatcher watches source documents and reports changed paths
// to a single handler, debounced per path
type DocumentWatcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New creates a watcher that calls onChange with the absolute path of
// each changed document, at most once per debounce window. onChange
// runs with the watcher's internal lock held and must not call back
// into the watcher.
func New(debounce time.Duration, onChange func(path string)) (*DocumentWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dw := &DocumentWatcher{
		watcher:  fsw,
		onChange: onChange,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
	go dw.run()
	return dw, nil
}

// Add starts watching the document at path
func (dw *DocumentWatcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if err := dw.watcher.Add(absPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}
	return nil
}

// Remove stops watching the document at path
func (dw *DocumentWatcher) Remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return dw.watcher.Remove(absPath)
}

func (dw *DocumentWatcher) run() {
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			// Writes and renames-into-place both mean new content
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				dw.schedule(event.Name)
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Debugf("watcher error: %v", err)
		}
	}
}

func (dw *DocumentWatcher) schedule(path string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.closed {
		return
	}
	if timer, exists := dw.timers[path]; exists {
		timer.Stop()
	}
	// Stop cannot stop a timer whose callback is already executing, so
	// the callback re-checks closed under the mutex. Holding it across
	// onChange means Close never returns with a handler mid-flight.
	dw.timers[path] = time.AfterFunc(dw.debounce, func() {
		dw.mu.Lock()
		defer dw.mu.Unlock()
		if dw.closed {
			return
		}
		dw.onChange(path)
	})
}

// Close stops the watcher and cancels pending notifications
func (dw *DocumentWatcher) Close() error {
	dw.mu.Lock()
	dw.closed = true
	for _, timer := range dw.timers {
		timer.Stop()
	}
	dw.timers = make(map[string]*time.Timer)
	dw.mu.Unlock()
	return dw.watcher.Close()
}

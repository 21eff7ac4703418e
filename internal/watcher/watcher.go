// Package watcher watches an experiment directory for snapshot rewrites.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/watchfire-io/runlog/internal/config"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventMetricsChanged EventType = iota
	EventConfigChanged
)

func (t EventType) String() string {
	switch t {
	case EventMetricsChanged:
		return "metrics"
	case EventConfigChanged:
		return "config"
	default:
		return "unknown"
	}
}

// DefaultDebounce coalesces the write bursts of one snapshot rewrite.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// Watcher reports changes to config.json and logs.json in one directory.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dir        string
	delay      time.Duration
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for an experiment directory. The directory must exist.
func New(dir string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		dir:        filepath.Clean(dir),
		delay:      DefaultDebounce,
		eventsChan: make(chan Event, 100),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
	}
	return w, nil
}

// SetDebounce changes the debounce delay. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.delay = d
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start begins watching the directory.
func (w *Watcher) Start() error {
	// Watch the directory, not the files: atomic rewrites replace the inode.
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	log.Printf("[watcher] Watching %s", w.dir)

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Rename covers the tmp -> target replace done by every snapshot write.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	eventType, ok := classify(event.Name)
	if !ok {
		return
	}

	path := event.Name
	w.debounceEvent(path, func() {
		select {
		case w.eventsChan <- Event{Type: eventType, Path: path}:
		case <-w.done:
		}
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	// Cancel existing timer
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

// classify maps a changed file to an event type. Temp files are ignored.
func classify(path string) (EventType, bool) {
	switch filepath.Base(path) {
	case config.LogsFileName:
		return EventMetricsChanged, true
	case config.ConfigFileName:
		return EventConfigChanged, true
	default:
		return 0, false
	}
}

// Package inbox watches the recordings drop directory. Companion
// capture devices (or the user) copy video files into the inbox; the
// watcher waits for each file to settle and hands it to the upload
// screen.
package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"recall/internal/logging"
)

// DefaultDebounce is how long a file must sit unchanged before it is
// considered fully copied.
const DefaultDebounce = 500 * time.Millisecond

// recordingExts are the video containers the backend pipeline accepts.
var recordingExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// IsRecording reports whether a path looks like an uploadable recording.
func IsRecording(path string) bool {
	return recordingExts[strings.ToLower(filepath.Ext(path))]
}

// Arrival is one recording that finished landing in the inbox.
type Arrival struct {
	Path string
	Size int64
	At   time.Time
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesRemoved  int
	Emitted       int
	Dropped       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// Watcher monitors the inbox directory for new recordings.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	arrivals    chan Arrival
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New creates a watcher for the given inbox directory. A non-positive
// debounce falls back to DefaultDebounce.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:     fsw,
		dir:         dir,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		arrivals:    make(chan Arrival, 32),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Dir returns the watched inbox directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Arrivals returns the channel of settled recordings. The channel is
// buffered; when nobody drains it new arrivals are dropped, and the
// upload screen's rescan on mount picks them up instead.
func (w *Watcher) Arrivals() <-chan Arrival {
	return w.arrivals
}

// Start begins watching the inbox directory. Non-blocking; the event
// loop runs in a goroutine until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.InboxWarn("failed to create inbox dir %s: %v (continuing anyway)", w.dir, err)
	}

	if err := w.watcher.Add(w.dir); err != nil {
		logging.InboxWarn("initial watch failed (dir may not exist): %v", err)
	} else {
		logging.Inbox("watching directory: %s", w.dir)
	}

	go w.run(ctx)

	return nil
}

// Stop stops the event loop and releases the underlying filesystem
// watcher. Safe whether or not Start ran; later calls are no-ops.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.InboxError("error closing watcher: %v", err)
	}
	logging.Inbox("stopped")
}

// IsWatching returns true while the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a copy of the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Scan lists the recordings already sitting in the inbox, newest
// first. The upload screen calls this on mount so recordings that
// landed while the screen was closed still show up.
func (w *Watcher) Scan() ([]Arrival, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var found []Arrival
	for _, entry := range entries {
		if entry.IsDir() || !IsRecording(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, Arrival{
			Path: filepath.Join(w.dir, entry.Name()),
			Size: info.Size(),
			At:   info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].At.After(found[j].At) })
	return found, nil
}

// run is the main event loop for the watcher.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Sweep the debounce map often enough that settle latency stays
	// close to debounceDur.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Inbox("context cancelled")
			return

		case <-w.stopCh:
			logging.Inbox("stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				logging.Inbox("event channel closed")
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				logging.Inbox("error channel closed")
				return
			}
			logging.InboxError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.emitSettled()
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsRecording(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "remove"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return // Ignore chmod, etc.
	}

	logging.Get(logging.CategoryInbox).Debug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
		w.debounceMap[event.Name] = time.Now()
	case "modify":
		// Each write refreshes the clock, so a file still being copied
		// never settles early.
		w.stats.FilesModified++
		w.debounceMap[event.Name] = time.Now()
	case "remove", "rename":
		w.stats.FilesRemoved++
		delete(w.debounceMap, event.Name)
	}
}

// emitSettled emits recordings whose last event is past the debounce
// window.
func (w *Watcher) emitSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logging.Get(logging.CategoryInbox).Debug("file gone before settle: %s", path)
				continue
			}
			logging.InboxError("failed to stat %s: %v", path, err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			continue
		}
		if info.IsDir() {
			continue
		}

		arrival := Arrival{Path: path, Size: info.Size(), At: time.Now()}
		select {
		case w.arrivals <- arrival:
			logging.Inbox("recording arrived: %s (%d bytes)", filepath.Base(path), info.Size())
			w.mu.Lock()
			w.stats.Emitted++
			w.mu.Unlock()
		default:
			logging.InboxWarn("arrivals channel full, dropping %s", filepath.Base(path))
			w.mu.Lock()
			w.stats.Dropped++
			w.mu.Unlock()
		}
	}
}

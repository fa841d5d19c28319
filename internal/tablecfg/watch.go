package tablecfg

import (
	"os"
	"slices"
	"sync"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Files that appear after Start count as changed, and so do files that go away.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	list      func() ([]string, error) // re-lists Paths on every poll when set
	onChange  func(string)             // called with path that changed
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// NewTreeWatcher watches every YAML file under p's tables directory. The tree
// is listed again on each poll, so a table or variant file created later is
// picked up even though the loader cached it as missing.
func NewTreeWatcher(p Paths, interval time.Duration, onChange func(string)) *FileWatcher {
	w := NewFileWatcher(nil, interval, onChange)
	w.list = p.All
	return w
}

// Start primes the mtime cache, then polls in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	paths := w.Paths
	if w.list != nil {
		// a failed listing keeps the previous set
		if listed, err := w.list(); err == nil {
			w.Paths = listed
			paths = listed
		}
		for p := range w.lastMTime {
			if !slices.Contains(paths, p) {
				paths = append(paths, p)
			}
		}
	}
	for _, p := range paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last := w.lastMTime[p]
		w.lastMTime[p] = mt
		if mt.IsZero() && w.list != nil {
			delete(w.lastMTime, p)
		}
		if prime || mt.Equal(last) {
			continue
		}
		if w.onChange != nil {
			w.onChange(p)
		}
	}
}

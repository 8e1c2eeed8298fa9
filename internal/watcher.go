package internal

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify and emits image paths once they stopped changing
// for the settle delay.
type Watcher struct {
	watcher *fsnotify.Watcher
	exts    []string
	settle  time.Duration
	ready   chan string
	errors  chan error
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher watches root and every directory below it
func NewWatcher(root string, exts []string, settle time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		exts:    exts,
		settle:  settle,
		ready:   make(chan string, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}

	if err := w.addRecursive(root, false); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// addRecursive adds a directory and all its subdirectories to the watcher.
// With scheduleFiles set, images already inside are scheduled too: a
// directory moved into the tree produces no events for its contents.
func (w *Watcher) addRecursive(root string, scheduleFiles bool) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.sendError(err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		if scheduleFiles && hasExtension(path, w.exts) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name, true); err != nil {
						w.sendError(err)
					}
					continue
				}
			}

			if hasExtension(event.Name, w.exts) {
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)

		case <-w.done:
			return
		}
	}
}

// schedule (re)starts the settle timer of path. Our own metadata writes
// also land here; the second pass finds the value already set and stops.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// Error channel is full, drop error
	}
}

// Ready returns the channel of settled image paths
func (w *Watcher) Ready() <-chan string {
	return w.ready
}

// Errors returns the channel of watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and pending timers
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// Watch runs an initial batch over root, then processes every image that
// settles under it until stop is closed.
func (b *Batch) Watch(root string, settle time.Duration, stop <-chan struct{}) error {
	if _, err := b.Run(root); err != nil {
		return err
	}
	abs, err := checkRoot(root)
	if err != nil {
		return err
	}

	exts := b.Extensions
	if len(exts) == 0 {
		exts = DefaultImageExtensions
	}
	w, err := NewWatcher(abs, exts, settle)
	if err != nil {
		return err
	}
	defer w.Close()
	b.Logger.Info("watching %s for new images", abs)

	proc := NewProcessor(abs, b.Writers, b.DryRun)
	seen := 0
	// Paths we just rewrote echo back as write events.
	stamped := make(map[string]bool)
	for {
		select {
		case path := <-w.Ready():
			if _, err := os.Stat(path); err != nil {
				continue
			}
			res := safeProcess(proc, path)
			if stamped[path] && res.Outcome == OutcomeAlreadyMatches {
				delete(stamped, path)
				continue
			}
			if res.Outcome == OutcomeUpdated {
				stamped[path] = true
			}
			seen++
			if b.Reporter != nil {
				b.Reporter.OnResult(seen, seen, res)
			}
		case err := <-w.Errors():
			b.Logger.Warn("watcher: %v", err)
		case <-stop:
			return nil
		}
	}
}

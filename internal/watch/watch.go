// Package watch monitors workspace package directories for source file
// changes using fsnotify. Events are debounced and delivered in batches
// so one save (or an editor's write-rename dance) triggers one
// re-resolution.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// Watcher monitors a set of directory trees and emits batches of changed
// file paths.
type Watcher struct {
	// Batches receives debounced sets of changed files.
	Batches <-chan []string

	batches chan []string
	done    chan struct{}
	watcher *fsnotify.Watcher
	filter  func(path string) bool
}

// New creates a watcher over the given root directories and all
// directories beneath them. filter decides whether a file path is
// relevant; irrelevant events are dropped.
func New(roots []string, filter func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan []string, 4)
	w := &Watcher{
		Batches: ch,
		batches: ch,
		done:    make(chan struct{}),
		watcher: fw,
		filter:  filter,
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree registers root and every directory below it. fsnotify does not
// recurse on its own.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == "target" {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Start begins delivering batches.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the watcher and waits for the delivery loop to drain.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.batches)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.flush(pending, time.Time{})
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// A new directory must be watched before files land in it.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(event.Name)
					continue
				}
			}
			if w.filter != nil && !w.filter(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case <-ticker.C:
			w.flush(pending, time.Now().Add(-debounce))

		case _, ok := <-w.watcher.Errors:
			if !ok {
				w.flush(pending, time.Time{})
				return
			}
		}
	}
}

// flush emits all pending files last touched at or before cutoff. A zero
// cutoff emits everything.
func (w *Watcher) flush(pending map[string]time.Time, cutoff time.Time) {
	var batch []string
	for file, at := range pending {
		if cutoff.IsZero() || !at.After(cutoff) {
			batch = append(batch, file)
			delete(pending, file)
		}
	}
	if len(batch) > 0 {
		w.batches <- batch
	}
}

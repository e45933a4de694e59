// Package watch monitors tracked paths and reports files whose content
// has settled, so the scanner can version them without racing an editor
// mid-save.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors files and directories for changes. A file is emitted
// on Events only after it has stayed unchanged for the debounce interval.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	excluded  map[string]bool
	debounce  time.Duration

	// pending: path -> time of last observed write
	pending   map[string]time.Time
	pendingMu sync.Mutex

	events chan string
	errors chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher over the given roots. Directory roots are watched
// recursively, skipping the excluded directory names.
func New(paths []string, excludedDirs []string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(excludedDirs))
	for _, d := range excludedDirs {
		excluded[d] = true
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		paths:     paths,
		excluded:  excluded,
		debounce:  debounce,
		pending:   make(map[string]time.Time),
		events:    make(chan string, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of settled changed files.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching all configured paths.
func (w *Watcher) Start() error {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := w.addDirTree(path); err != nil {
				return err
			}
		} else {
			// Watch a single file by watching its directory.
			if err := w.fsWatcher.Add(filepath.Dir(path)); err != nil {
				return err
			}
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsWatcher.Close()
}

// addDirTree watches root and every non-excluded subdirectory.
func (w *Watcher) addDirTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded[d.Name()] {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				// New directory under a watched root: watch it too.
				if event.Op&fsnotify.Create != 0 && !w.excluded[filepath.Base(event.Name)] {
					_ = w.addDirTree(event.Name)
				}
				continue
			}

			w.pendingMu.Lock()
			w.pending[event.Name] = time.Now()
			w.pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// debounceLoop emits files that have stayed unchanged for the debounce
// interval.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := w.debounce / 4
	if tick < 50*time.Millisecond {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case now := <-ticker.C:
			w.emitSettled(now)
		}
	}
}

// emitSettled moves files whose last write is older than the debounce
// interval from pending to the events channel.
func (w *Watcher) emitSettled(now time.Time) {
	threshold := now.Add(-w.debounce)

	var settled []string
	w.pendingMu.Lock()
	for path, lastMod := range w.pending {
		if lastMod.Before(threshold) {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range settled {
		select {
		case w.events <- path:
		case <-w.done:
			return
		}
	}
}

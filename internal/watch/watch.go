// Package watch reports repository state changes made outside the process,
// such as a rebase started or finished from another terminal.
package watch

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/asyncgit-go/internal/asyncgit"
	"github.com/thiagokokada/asyncgit-go/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

type Watcher struct {
	mu       sync.Mutex
	paths    []string
	delay    time.Duration
	notify   chan<- asyncgit.Notification
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	done     chan struct{}
}

// New returns a stopped watcher for the work tree at root whose git
// directory is gitDir. Bursts of events within delay post a single
// NotificationRepoState on notify.
func New(root, gitDir string, delay time.Duration, notify chan<- asyncgit.Notification) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	var paths []string
	for p := range watchPaths(root, gitDir) {
		paths = append(paths, p)
	}
	return &Watcher{paths: paths, delay: delay, notify: notify}
}

func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range w.paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			err := errors.Join(err, watcher.Close())
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	debounce.Ensure(&w.debounce, w.delay, w.post)
	w.watcher = watcher
	w.done = make(chan struct{})
	go w.loop(watcher, w.done)
	return nil
}

// Close stops the watcher and waits for its event loop to exit. Calling it
// on a stopped watcher is a no-op.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	watcher, done := w.watcher, w.done
	w.watcher, w.done = nil, nil
	w.mu.Unlock()
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

func (w *Watcher) post() {
	if w.notify == nil {
		return
	}
	select {
	case w.notify <- asyncgit.NotificationRepoState:
	default:
		slog.Debug("repo state notification dropped")
	}
}

func (w *Watcher) loop(fw *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil || w.debounce == nil {
		return
	}
	w.debounce.Trigger()
}

// watchPaths yields the git directory and the work tree root. fsnotify is not
// recursive, so nested work tree edits are only seen through the index.
func watchPaths(root, gitDir string) iter.Seq[string] {
	unique := map[string]struct{}{}
	for _, p := range []string{gitDir, root} {
		if p == "" {
			continue
		}
		unique[filepath.Clean(p)] = struct{}{}
	}
	return maps.Keys(unique)
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	// Object writes happen on every fetch and never change the repo state.
	return strings.Contains(filepath.ToSlash(name), "/objects/")
}

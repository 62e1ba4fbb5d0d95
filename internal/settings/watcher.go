package settings

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads Settings from a file whenever it changes on disk.
// Grounded on bennypowers-cem's FSNotifyFileWatcher: a dedicated goroutine
// translates raw fsnotify events into a single typed callback, and Close is
// idempotent and waits for that goroutine to exit before returning.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path and calls onChange with the freshly loaded
// Settings every time the file is written. The watch is placed on the file
// itself, so once the file is removed or replaced by a rename, later
// changes are no longer reported. onChange runs on
// the watcher's internal goroutine — callers that need reactor-thread
// safety must wrap it in reactor.Post themselves.
func Watch(path string, onChange func(Settings)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: new watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("settings: watch %s: %w", path, err)
	}

	w := &Watcher{watcher: fsw, done: make(chan struct{})}
	go w.run(path, onChange)
	return w, nil
}

func (w *Watcher) run(path string, onChange func(Settings)) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s, err := Load(path)
			if err != nil {
				continue
			}
			onChange(s)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

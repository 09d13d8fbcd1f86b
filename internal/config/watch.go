package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on disk changes, so a long-running soak
// can have its thread count or iteration budget adjusted without a
// restart.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
}

// Watch starts watching path's containing directory and invokes onChange
// with the freshly decoded Config whenever path is written. Decode
// failures during a reload are silently skipped — the harness keeps
// running on its last-known-good config rather than stopping a soak test
// over a transient partial write.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, path: path}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func(Config)) {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		absPath = w.path
	}
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil {
				evAbs = ev.Name
			}
			if evAbs != absPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if cfg, err := Load(w.path); err == nil {
				onChange(cfg)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

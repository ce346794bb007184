// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package atlas

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/nightisyang/frankentui-migrate/pkg/logging"
)

// Watcher hot-reloads an Atlas from disk whenever its backing TOML file
// changes, so an operator can extend the dictionary without restarting the
// planner. A failed reload keeps serving the last good Atlas and logs the
// error rather than tearing down the watch.
type Watcher struct {
	path    string
	log     *logging.Logger
	current atomic.Pointer[Atlas]
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// NewWatcher loads path once, then starts watching it for writes.
func NewWatcher(path string, log *logging.Logger) (*Watcher, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	if log == nil {
		log = logging.Default()
	}
	w := &Watcher{path: path, log: log, watcher: fsw}
	w.current.Store(initial)

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reloaded, err := Load(w.path)
			if err != nil {
				w.log.Warn("atlas reload failed, keeping previous atlas", "path", w.path, "error", err)
				continue
			}
			w.current.Store(reloaded)
			w.log.Info("atlas reloaded", "path", w.path, "entries", reloaded.Len())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("atlas watcher error", "error", err)
		}
	}
}

// Current returns the most recently loaded Atlas.
func (w *Watcher) Current() *Atlas {
	return w.current.Load()
}

// Close stops the underlying filesystem watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package watcher implements continuous mode: an fsnotify watch over
// the project's source directory, filtered by doublestar ignore
// globs, feeding file add/remove events to the engine through its
// AddSourceFile / RemoveSourceFile pair to keep the graph in sync with
// a live source tree.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/ekam-build/ekam/internal/backoff"
	"github.com/ekam-build/ekam/internal/logger"
)

// SourceTree is the subset of the engine facade the watcher drives.
// It is expressed as an interface so this package never imports
// internal/engine directly.
type SourceTree interface {
	AddSourceFile(relPath string)
	RemoveSourceFile(relPath string)
}

// Watcher keeps SourceTree's known files synchronized with the files
// actually present under root, recursively, ignoring any path matching
// one of the doublestar patterns in Ignore.
type Watcher struct {
	root   string
	engine SourceTree
	ignore []string
	log    logger.Logger

	fsw   *fsnotify.Watcher
	retry backoff.Retrier

	mu      sync.Mutex
	watched map[string]bool // absolute directories currently under fsnotify watch
}

// New constructs a Watcher over root, an absolute path to the project's
// source directory. ignore is a list of doublestar glob patterns
// (matched against paths relative to root) that are never reported.
func New(root string, engine SourceTree, ignore []string, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:    root,
		engine:  engine,
		ignore:  ignore,
		log:     log,
		fsw:     fsw,
		retry:   backoff.NewRetrier(backoff.NewExponentialPolicy(200 * time.Millisecond)),
		watched: map[string]bool{},
	}
	return w, nil
}

// Run walks root once to report its initial contents, then blocks
// dispatching fsnotify events until ctx is canceled. A watch-queue
// error (commonly ENOSPC on inotify watch exhaustion, or a dropped
// event) triggers a full rewatch of the tree after a backoff delay,
// rather than risking a silently incomplete view of the source tree.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.rebuild(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watcher: %v, rebuilding watch list", err)
			if rerr := w.retry.Next(ctx, err); rerr != nil {
				return rerr
			}
			if err := w.rebuild(); err != nil {
				return err
			}
			w.retry.Reset()
		}
	}
}

// rebuild re-walks the entire tree, re-registering every directory
// with fsnotify and re-reporting every file, the recovery path after a
// watch-queue error of unknown extent.
func (w *Watcher) rebuild() error {
	w.mu.Lock()
	for dir := range w.watched {
		w.fsw.Remove(dir)
	}
	w.watched = map[string]bool{}
	w.mu.Unlock()

	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && w.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			w.mu.Lock()
			w.watched[path] = true
			w.mu.Unlock()
			return w.fsw.Add(path)
		}
		w.engine.AddSourceFile(filepath.ToSlash(rel))
		return nil
	})
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || w.ignored(rel) {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Has(fsnotify.Create):
		w.handleCreate(ev.Name, rel)
	case ev.Has(fsnotify.Write):
		w.engine.AddSourceFile(rel)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.engine.RemoveSourceFile(rel)
		w.mu.Lock()
		if w.watched[ev.Name] {
			delete(w.watched, ev.Name)
			w.fsw.Remove(ev.Name)
		}
		w.mu.Unlock()
	}
}

func (w *Watcher) handleCreate(abs, rel string) {
	info, err := os.Stat(abs)
	if err != nil {
		return
	}
	if info.IsDir() {
		w.mu.Lock()
		w.watched[abs] = true
		w.mu.Unlock()
		if err := w.fsw.Add(abs); err != nil {
			w.log.Warnf("watcher: watching new directory %s: %v", abs, err)
		}
		return
	}
	w.engine.AddSourceFile(rel)
}

func (w *Watcher) ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	str "strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs a script when it, or a script beside it, is written.
type Watcher struct {
	watcher *fsnotify.Watcher
	script  string
	run     func() error
	stderr  io.Writer
	log     *Logger
}

func NewWatcher(script string, run func() error, stderr io.Writer, log *Logger) (*Watcher, error) {
	abs, err := filepath.Abs(script)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fef("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{watcher: fsWatcher, script: abs, run: run, stderr: stderr, log: log}, nil
}

// Watch runs the script once and then after every relevant change, until
// ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()
	w.runOnce()

	// a save often arrives as several writes; run once they go quiet
	const debounce = 100 * time.Millisecond
	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.log.Debug("script changed", map[string]any{"file": event.Name})
			settled = time.After(debounce)

		case <-settled:
			settled = nil
			w.log.Info("re-running script", map[string]any{"file": w.script})
			w.runOnce()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", map[string]any{"error": err.Error()})
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if abs, err := filepath.Abs(path); err == nil && abs == w.script {
		return true
	}
	return str.EqualFold(filepath.Ext(path), SCRIPT_EXT)
}

func (w *Watcher) runOnce() {
	fpf(w.stderr, "-- running %s\n", filepath.Base(w.script))
	err := w.run()
	var ex *ExitRequest
	switch {
	case err == nil:
	case errors.As(err, &ex):
		fpf(w.stderr, "-- exit status %d\n", ex.Code)
	default:
		reportError(w.stderr, err)
	}
}

// Package watcher re-runs corpus analysis whenever a markdown file changes.
// Events are debounced so an editor save burst triggers a single run.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one analysis pass.
type RunFunc func(ctx context.Context)

// Options configures the watch loop.
type Options struct {
	// Debounce is the quiet period before a change triggers a run.
	// 0 means 500ms.
	Debounce time.Duration
}

// skipDirs are directory names never watched.
var skipDirs = map[string]struct{}{
	".git":         {},
	".bpkit":       {},
	"node_modules": {},
	"vendor":       {},
}

// Watch starts an fsnotify watcher on the corpus root and calls run after
// each debounced batch of markdown changes, until ctx is cancelled.
// Directories created at runtime are added to the watch list.
func Watch(ctx context.Context, corpusRoot string, opts Options, logger *slog.Logger, run RunFunc) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, corpusRoot); err != nil {
		return err
	}

	logger.Info("watching corpus", "root", corpusRoot, "debounce", debounce)

	debouncer := NewDebouncer(debounce)
	defer debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if _, skip := skipDirs[filepath.Base(ev.Name)]; !skip {
						if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
							logger.Warn("watch new dir failed", "path", ev.Name, "error", addErr)
						}
					}
					continue
				}
			}

			if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			debouncer.Trigger(func() {
				if ctx.Err() != nil {
					return
				}
				run(ctx)
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", watchErr)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping directories that are never scanned.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, skip := skipDirs[d.Name()]; skip && path != root {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

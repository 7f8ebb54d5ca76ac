package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the freshly loaded catalog, or the error from loading it.
type ReloadFunc func(cat *Catalog, err error)

// Watcher reloads a set of catalog files whenever one of them changes.
type Watcher struct {
	paths    []string
	debounce time.Duration
}

// NewWatcher creates a watcher for the given catalog files.
func NewWatcher(debounce time.Duration, paths ...string) *Watcher {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		paths:    paths,
		debounce: debounce,
	}
}

// Run watches until ctx is cancelled. Directories are watched rather than the
// files themselves so editors that replace files on save are still seen.
func (w *Watcher) Run(ctx context.Context, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	watched := make(map[string]bool, len(w.paths))
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch path: %w", err)
		}
		dirs[dir] = true
	}

	log.Info("Watching catalogs", "files", len(w.paths))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("Catalog changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cat, err := LoadFiles(w.paths...)
			if err != nil {
				log.Warn("Catalog reload failed", "error", err)
			} else {
				log.Info("Catalog reloaded", "goals", len(cat.Goals), "actions", len(cat.Actions))
			}
			onReload(cat, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "error", err)
		}
	}
}

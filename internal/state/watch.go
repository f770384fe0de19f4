package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"ColoringBoard/internal/logging"
)

const reloadDelay = 250 * time.Millisecond

// Watch reloads c from src whenever the manifest or catalog directory
// changes, until ctx is done. Bursts of events are coalesced. A reload that
// fails keeps the previous catalog.
func Watch(ctx context.Context, c *Catalog, src Source) error {
	log := logging.For("catalog")
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer w.Close()

	if err := addWatches(w, src); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && src.Manifest == "" {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-fire:
			fire = nil
			cats, err := src.Read()
			if err != nil {
				log.Warn("catalog reload failed", "err", err)
				continue
			}
			c.Replace(cats)
			log.Info("catalog reloaded", "pages", c.Len())
		}
	}
}

func addWatches(w *fsnotify.Watcher, src Source) error {
	if src.Manifest != "" {
		// Editors replace files on save, so watch the directory.
		if err := w.Add(filepath.Dir(src.Manifest)); err != nil {
			return fmt.Errorf("watch %s: %w", src.Manifest, err)
		}
		return nil
	}
	if src.Dir == "" {
		return nil
	}
	if err := w.Add(src.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", src.Dir, err)
	}
	entries, err := os.ReadDir(src.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", src.Dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(src.Dir, e.Name())); err != nil {
				return fmt.Errorf("watch %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

package logic

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/idelchi/assetpack/internal/config"
)

// watchDebounce collapses bursts of events, e.g. an editor saving several files at once.
const watchDebounce = 250 * time.Millisecond

// RunWatch builds the bundle, then rebuilds it whenever the asset folder changes, until ctx is done.
// Failed rebuilds are logged and do not stop the watch.
func RunWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := Run(cfg, logger); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, cfg.AssetFolder); err != nil {
		return err
	}

	logger.Info("watching for changes", "folder", cfg.AssetFolder)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			logger.Debug("change", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) {
				// New directories need their own watch; errors surface as a missing rebuild only.
				if err := watchTree(watcher, event.Name); err != nil {
					logger.Debug("not watching", "path", event.Name, "error", err)
				}
			}

			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watch error", "error", err)
		case <-timer.C:
			if err := Run(cfg, logger); err != nil {
				logger.Error("rebuild failed", "error", err)
			}
		}
	}
}

// watchTree adds root and every directory below it to the watcher.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching %q: %w", root, err)
	}

	return nil
}

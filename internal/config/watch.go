package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors every file in files and calls onChange with the Config
// reloaded from all of them each time one is written. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and onChange is
// not called; the caller keeps its previous config.
func Watch(ctx context.Context, files Files, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := files.Paths()
	for _, p := range watched {
		if err := watcher.Add(p); err != nil {
			return err
		}
	}

	slog.Info("config: watching for changes", "paths", watched)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFiles(files)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", event.Name, "err", err)
				continue
			}

			slog.Info("config: reloaded", "path", event.Name)
			onChange(cfg)

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

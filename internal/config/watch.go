package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it changes and hands the
// fresh *Config to onChange. It blocks until ctx is cancelled.
//
// A reload that fails to parse or validate is logged and dropped; onChange
// only ever sees configs that passed Load, so callers can swap state (such as
// the upstream CrUX client) without re-checking.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if reload(path, event, onChange) {
				// Atomic saves replace the inode; re-add so future writes
				// to the new file are still seen.
				_ = watcher.Add(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reload handles one fsnotify event. It returns true when the event was a
// write/create for which a Load was attempted (successful or not).
func reload(path string, event fsnotify.Event, onChange func(*Config)) bool {
	// Editors often save via rename, which surfaces as Create rather
	// than Write.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config",
			"path", path, "err", err)
		return true
	}

	slog.Info("config: reloaded", "path", path)
	onChange(cfg)
	return true
}

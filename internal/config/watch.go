package config

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "agehasite/internal/log"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to fn. A
// missing file is skipped, never recreated.
// The parent directory is watched so atomic rename-over saves (including
// our own Save) are seen. It blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	if path == "" {
		return ErrEmptyPath
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Reload(path)
			if errors.Is(err, fs.ErrNotExist) {
				// Moved or deleted; keep the running config until it returns.
				appLog.Info("config file missing; keeping current settings", "path", path)
				continue
			}
			if err != nil {
				appLog.Error("config reload failed", err, "path", path)
				continue
			}
			appLog.Info("config reloaded", "path", path)
			fn(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			appLog.Error("config watcher error", err, "path", path)
		}
	}
}

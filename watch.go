package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/echoflaresat/photosphere/internal/config"
	"github.com/echoflaresat/photosphere/internal/logger"
)

// settle is how long the watcher waits for a burst of writes to end.
const settle = 250 * time.Millisecond

// watch re-renders whenever the config file or the panorama changes until
// ctx is cancelled. A broken config is logged and the previous one kept.
func watch(ctx context.Context, flags *config.Flags, cfg *config.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dirs := map[string]bool{}
	var files map[string]bool
	rewatch := func(cfg *config.Config) {
		targets := map[string]bool{}
		for _, p := range watchTargets(cfg) {
			targets[p] = true
			// editors often replace files, so watch the directory
			dir := filepath.Dir(p)
			if !dirs[dir] {
				if err := w.Add(dir); err != nil {
					logger.Warn("cannot watch", zap.String("dir", dir), zap.Error(err))
					continue
				}
				dirs[dir] = true
			}
		}
		files = targets
	}
	rewatch(cfg)
	logger.Info("watching for changes", zap.Strings("files", watchTargets(cfg)))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change detected", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer = time.After(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer:
			timer = nil
			next, err := loadConfig(flags)
			if err != nil {
				logger.Error("config reload failed", zap.Error(err))
				next = cfg
			}
			cfg = next
			rewatch(cfg)
			if err := renderToFile(ctx, cfg); err != nil {
				logger.Error("render failed", zap.Error(err))
			}
		}
	}
}

// watchTargets lists the files whose changes trigger a re-render.
func watchTargets(cfg *config.Config) []string {
	var out []string
	if p := cfg.Path(); p != "" {
		out = append(out, absClean(p))
	}
	out = append(out, absClean(cfg.Panorama.Path))
	return out
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

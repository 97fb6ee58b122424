package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rshade/reminderin/internal/logging"
)

// watchDebounce coalesces the burst of events editors produce on save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads path whenever it changes and passes the new configuration to
// onChange. Invalid files are logged and skipped. Watch blocks until ctx is
// done; onChange runs on a timer goroutine.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	log := logging.FromContext(ctx).With().Str("component", "config").Str("path", path).Logger()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Watch the directory: editors replace files by rename.
	if err = w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		cfg, loadErr := Load(path)
		if loadErr != nil {
			log.Warn().Err(loadErr).Msg("config reload rejected")
			return
		}
		log.Debug().Msg("config reloaded")
		onChange(cfg)
	}
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, reload)
	}
	defer func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) == base && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Msg("config watch error")
		}
	}
}

// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the global configuration when the config file changes on
// disk. Events are debounced because editors typically emit several write
// events per save.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(*Config)

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a config file watcher. onReload may be nil; when set it
// is called with the freshly loaded config after each successful reload.
func NewWatcher(debounce time.Duration, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching the configuration directory.
func (w *Watcher) Watch() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name != "config.toml" && name != "config.json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if !due {
				continue
			}
			if err := ReloadGlobal(); err != nil {
				continue
			}
			if w.onReload != nil {
				w.onReload(Global())
			}
		}
	}
}

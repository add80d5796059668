// UFood TUI - a terminal client for the UFood food marketplace.
//
// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/GutSayN/ufood-tui/internal/api"
	"github.com/GutSayN/ufood-tui/internal/auth"
	"github.com/GutSayN/ufood-tui/internal/catalog"
	"github.com/GutSayN/ufood-tui/internal/config"
	"github.com/GutSayN/ufood-tui/internal/store"
	"github.com/GutSayN/ufood-tui/internal/telemetry"
	"github.com/GutSayN/ufood-tui/internal/ui"
	"github.com/GutSayN/ufood-tui/internal/ui/styles"
	"github.com/GutSayN/ufood-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App owns every process-wide resource. It is constructed once in main and
// passed by reference; nothing in the core reads ambient globals.
type App struct {
	Config  *config.Config
	Session *auth.Manager
	Catalog *catalog.Client
	Tracker *telemetry.Tracker

	device  *store.SQLiteStore
	watcher *config.Watcher
	logFile *os.File
}

// NewApp loads configuration and opens every resource the client needs.
// A partially constructed app is torn down before the error returns.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config.SetGlobal(cfg)

	app := &App{Config: cfg}
	if err := app.setupLogging(); err != nil {
		return nil, err
	}

	device, err := store.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		app.Dispose()
		return nil, fmt.Errorf("open store: %w", err)
	}
	app.device = device

	seed, err := installSeed()
	if err != nil {
		app.Dispose()
		return nil, err
	}
	secure, err := store.NewSecureStore(device, seed)
	if err != nil {
		app.Dispose()
		return nil, fmt.Errorf("init secure store: %w", err)
	}

	authClient := api.New(cfg.Services.AuthURL).
		WithTimeout(cfg.RequestTimeout()).
		WithRateLimit(cfg.Network.RateLimitRPS)
	app.Session = auth.NewManager(authClient, secure).
		WithTimeouts(cfg.SessionTimeout(), cfg.MonitorInterval()).
		WithLockout(auth.NewLockoutManager(secure).
			WithPolicy(cfg.Lockout.MaxAttempts, cfg.LockoutDuration()))

	productClient := api.New(cfg.Services.ProductURL).
		WithTimeout(cfg.RequestTimeout()).
		WithRateLimit(cfg.Network.RateLimitRPS)
	app.Session.AttachClient(productClient)
	app.Catalog = catalog.New(productClient)

	app.Tracker = openTracker(cfg)

	if watcher, err := config.NewWatcher(0, func(c *config.Config) {
		log.Printf("config reloaded")
	}); err == nil {
		if err := watcher.Watch(); err == nil {
			app.watcher = watcher
		}
	}

	return app, nil
}

// Dispose releases everything NewApp opened. Safe on a partial app.
func (a *App) Dispose() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.Session != nil {
		a.Session.SetOnExpired(nil)
	}
	if a.Tracker != nil {
		a.Tracker.Close()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// setupLogging sends the stdlib logger to ~/.ufood/ufood.log; a TUI cannot
// share stderr with its own frames.
func (a *App) setupLogging() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}
	file, err := os.OpenFile(filepath.Join(dir, "ufood.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		// Last resort: keep the process alive, drop the diagnostics.
		log.SetOutput(io.Discard)
		return nil
	}
	a.logFile = file
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	return nil
}

// installSeed returns the per-install identifier used to derive the store
// obfuscation keystream, creating it on first run.
func installSeed() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "install_id")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	id := uuid.NewString()
	if err := util.AtomicWriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write install id: %w", err)
	}
	return id, nil
}

// openTracker opens the local analytics sink; telemetry is best effort and
// never blocks startup.
func openTracker(cfg *config.Config) *telemetry.Tracker {
	if !cfg.Telemetry.Enabled {
		return telemetry.NewTracker(nil, false)
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return telemetry.NewTracker(nil, false)
	}
	storage, err := telemetry.OpenEventStorage(filepath.Join(dir, "events.db"))
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		return telemetry.NewTracker(nil, false)
	}
	return telemetry.NewTracker(storage, true)
}

func main() {
	app, err := NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ufood: %v\n", err)
		os.Exit(1)
	}
	defer app.Dispose()

	ctx := context.Background()
	check := app.Session.CheckSession(ctx)
	app.Tracker.Record(ctx, telemetry.EventAppStarted, map[string]string{"version": Version})

	model := ui.New(ui.Deps{
		Session: app.Session,
		Catalog: app.Catalog,
		Tracker: app.Tracker,
		Theme:   styles.NewTheme(),
	}, check.Valid)

	program := tea.NewProgram(model, tea.WithAltScreen())
	app.Session.SetOnExpired(func(reason string) {
		app.Tracker.Record(context.Background(), telemetry.EventSessionExpired, nil)
		program.Send(ui.SessionExpiredMsg{Reason: reason})
	})

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ufood: %v\n", err)
		os.Exit(1)
	}
}

// Package app wires all subsystems into a running voice launcher daemon.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the listening loop and control plane, and
// Shutdown tears everything down in order.
//
// For testing, inject mock implementations via functional options. When an
// option is not provided, New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmorales/fastaccess/internal/catalog"
	"github.com/dmorales/fastaccess/internal/config"
	"github.com/dmorales/fastaccess/internal/events"
	"github.com/dmorales/fastaccess/internal/executor"
	"github.com/dmorales/fastaccess/internal/health"
	"github.com/dmorales/fastaccess/internal/listener"
	"github.com/dmorales/fastaccess/internal/observe"
	"github.com/dmorales/fastaccess/internal/resolve"
	"github.com/dmorales/fastaccess/internal/server"
	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
	"github.com/dmorales/fastaccess/pkg/provider/tts"
)

// Providers holds one interface value per provider slot. Populated by
// main.go via the config registry. TTS may be nil when spoken feedback is
// disabled.
type Providers struct {
	STT   stt.Transcriber
	TTS   tts.Speaker
	Audio audio.Source
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	// Subsystems — initialised in New, torn down in Shutdown.
	store    *catalog.Store
	watcher  *catalog.Watcher
	bus      *events.Bus
	listener *listener.Listener
	server   *server.Server
	metrics  *observe.Metrics
	opener   executor.Opener

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithMetrics injects a metrics instance instead of the process-wide default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithOpener injects the OS opener used by the executor. Tests use this to
// capture launches without touching the desktop.
func WithOpener(o executor.Opener) Option {
	return func(a *App) { a.opener = o }
}

// WithBus injects an event bus instead of creating a fresh one.
func WithBus(b *events.Bus) Option {
	return func(a *App) { a.bus = b }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.STT == nil || providers.Audio == nil {
		return nil, errors.New("app: STT and Audio providers are required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.bus == nil {
		a.bus = events.NewBus()
	}
	if a.opener == nil {
		a.opener = executor.OSOpener{}
	}

	// ── Catalog ──────────────────────────────────────────────────────────
	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("app: open catalog: %w", err)
	}
	a.store = store

	a.watcher = catalog.NewWatcher(store,
		catalog.WithInterval(cfg.Catalog.PollInterval),
		catalog.WithOnReload(func(snap *catalog.Snapshot) {
			a.metrics.CatalogReloads.Add(context.Background(), 1)
			a.bus.Publish(events.StatusChanged,
				fmt.Sprintf("catalog reloaded: %d commands, %d groups",
					len(snap.CommandNames), len(snap.GroupNames)))
		}))

	// ── Resolution engine + listener ─────────────────────────────────────
	fillers := cfg.Voice.FillerWords
	if len(fillers) == 0 {
		fillers = resolve.DefaultFillerWords
	}
	resolver := resolve.NewResolver(fillers,
		resolve.WithSimilarityThreshold(cfg.Voice.MatchThreshold))

	a.listener = listener.New(providers.Audio, providers.STT, providers.TTS,
		store, resolver, executor.New(a.opener), a.bus, a.metrics,
		listener.Config{
			Announce: *cfg.Voice.Announce,
			Phrases:  listener.PhrasesForLanguage(cfg.Voice.Language),
		})
	if *cfg.Voice.Active {
		a.listener.Start()
	}

	// ── Control plane ────────────────────────────────────────────────────
	checkers := []health.Checker{
		{Name: "catalog", Check: func(ctx context.Context) error {
			return store.Reload()
		}},
	}
	a.server = server.New(cfg.Server.ListenAddr, a.listener, store, a.metrics, checkers)

	// Providers close last, after the loop that uses them has stopped.
	a.closers = append(a.closers, providers.Audio.Close, providers.STT.Close)
	if providers.TTS != nil {
		a.closers = append(a.closers, providers.TTS.Close)
	}

	return a, nil
}

// Bus returns the event bus for external subscribers.
func (a *App) Bus() *events.Bus { return a.bus }

// Listener returns the voice listener.
func (a *App) Listener() *listener.Listener { return a.listener }

// Store returns the catalog store.
func (a *App) Store() *catalog.Store { return a.store }

// Run starts the catalog watcher, the listening loop, and the control plane,
// blocking until ctx is cancelled or one of them fails. Cancellation is a
// clean exit.
func (a *App) Run(ctx context.Context) error {
	a.watcher.Start()
	defer a.watcher.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.listener.Run(ctx) })
	g.Go(func() error { return a.server.Run(ctx) })

	slog.Info("daemon running",
		"catalog", a.cfg.Catalog.Path,
		"listen_addr", a.cfg.Server.ListenAddr,
		"voice_active", a.listener.Active())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, the remaining closers
// are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))
		a.watcher.Stop()

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

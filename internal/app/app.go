// Package app runs the worktrack daemon: the HTTP API, the WebSocket event
// hub, and every long-running component, under one errgroup. It restores
// the tracking state before anything else can feed it events.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	presencein "worktrack/internal/modules/presence/port/in"
	settingsin "worktrack/internal/modules/settings/port/in"
	trackingdto "worktrack/internal/modules/tracking/dto"
	trackingin "worktrack/internal/modules/tracking/port/in"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/logging"
	"worktrack/internal/platform/ws"
)

const (
	heartbeatInterval = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Registrar is an inbound HTTP adapter.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// Worker is a named component that runs until its context is done.
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

type Options struct {
	Logger   *zap.Logger
	Bind     string
	Clock    clock.Clock
	Hub      *ws.Hub
	Tracking trackingin.Usecase
	Settings settingsin.Usecase
	Presence presencein.Usecase
	Handlers []Registrar
	Workers  []Worker
}

type App struct {
	opts      Options
	log       *zap.Logger
	startedAt time.Time
}

func New(opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Hub == nil {
		opts.Hub = ws.NewHub(opts.Logger)
	}
	return &App{opts: opts, log: logging.OrNop(opts.Logger).Named("app")}
}

// Run restores state, then serves until ctx is cancelled or a component
// fails. Shutdown waits for every component to return.
func (a *App) Run(ctx context.Context) error {
	a.startedAt = a.opts.Clock.Now()

	restored, err := a.opts.Tracking.RestoreState(ctx)
	if err != nil {
		return fmt.Errorf("restore tracking state: %w", err)
	}
	a.log.Info("tracking state restored", zap.String("state", restored.Kind), zap.String("session_id", restored.SessionID))

	if err := a.opts.Presence.Start(ctx); err != nil {
		return fmt.Errorf("start presence monitor: %w", err)
	}
	defer a.opts.Presence.Stop()

	ln, err := net.Listen("tcp", a.opts.Bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.opts.Bind, err)
	}
	server := &http.Server{
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.log.Info("listening", zap.String("addr", "http://"+ln.Addr().String()))

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error { return a.opts.Hub.Run(ctx) })
	group.Go(func() error {
		a.heartbeatLoop(ctx)
		return nil
	})
	group.Go(func() error {
		a.opts.Tracking.WatchState(ctx, a.broadcastState)
		return nil
	})
	group.Go(func() error {
		a.opts.Tracking.WatchPhase(ctx, a.broadcastPhase)
		return nil
	})
	group.Go(func() error {
		a.followSettings(ctx)
		return nil
	})
	for _, w := range a.opts.Workers {
		worker := w
		group.Go(func() error {
			if err := worker.Run(ctx); err != nil {
				return fmt.Errorf("%s: %w", worker.Name, err)
			}
			a.log.Debug("worker stopped", zap.String("worker", worker.Name))
			return nil
		})
	}
	return group.Wait()
}

// Handler returns the daemon's HTTP routes without starting any component.
func (a *App) Handler() http.Handler {
	return a.routes()
}

func (a *App) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /api/status", a.handleStatus)
	mux.Handle("GET /ws", a.opts.Hub.Handler())
	for _, h := range a.opts.Handlers {
		h.Register(mux)
	}
	return mux
}

// followSettings re-arms presence monitoring with the new beacon config
// whenever the settings change.
func (a *App) followSettings(ctx context.Context) {
	updates, cancel := a.opts.Settings.Subscribe()
	defer cancel()
	// The first value is the one presence already started with.
	select {
	case <-ctx.Done():
		return
	case <-updates:
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := a.opts.Presence.Start(ctx); err != nil {
				a.log.Warn("presence restart failed", zap.Error(err))
				continue
			}
			a.opts.Hub.BroadcastJSON(a.event("settings", map[string]any{}))
		}
	}
}

func (a *App) heartbeatLoop(ctx context.Context) {
	ticker := a.opts.Clock.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, _ := a.opts.Tracking.Status(ctx)
			a.opts.Hub.BroadcastJSON(a.event("heartbeat", map[string]any{
				"uptime_seconds": a.uptimeSeconds(),
				"state":          status.State.Kind,
			}))
		}
	}
}

func (a *App) broadcastState(state trackingdto.StateOutput) {
	a.opts.Hub.BroadcastJSON(a.event("state", map[string]any{"state": state}))
}

func (a *App) broadcastPhase(phase string) {
	a.opts.Hub.BroadcastJSON(a.event("phase", map[string]any{"phase": phase}))
}

func (a *App) event(kind string, payload map[string]any) map[string]any {
	payload["type"] = kind
	payload["ts"] = a.opts.Clock.Now().UTC().Format(time.RFC3339Nano)
	return payload
}

func (a *App) uptimeSeconds() int64 {
	return int64(a.opts.Clock.Now().Sub(a.startedAt).Seconds())
}

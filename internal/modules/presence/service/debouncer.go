package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"worktrack/internal/modules/presence/domain"
	presenceout "worktrack/internal/modules/presence/port/out"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/logging"
)

const defaultLossTimeout = 10 * time.Minute

// Sink receives debounced presence signals.
type Sink interface {
	OnDetected(ctx context.Context, signal domain.Detected) error
	OnLost(ctx context.Context, signal domain.Lost) error
}

// Debouncer turns raw beacon callbacks into Detected and Lost signals. A
// region exit arms a loss timer; any sighting before it fires cancels it.
//
// Every cancellation bumps gen. A timer callback carries the gen it was
// armed with and is discarded if that no longer matches, so a callback
// that lost the race against a sighting or Stop never emits.
type Debouncer struct {
	mu     sync.Mutex
	clock  clock.Clock
	source presenceout.ConfigSource
	sink   Sink
	log    *zap.Logger

	cfg      domain.Config
	running  bool
	runCtx   context.Context
	lastSeen time.Time
	pending  *clock.Timer
	gen      uint64
}

func NewDebouncer(clk clock.Clock, source presenceout.ConfigSource, sink Sink, logger *zap.Logger) *Debouncer {
	return &Debouncer{clock: clk, source: source, sink: sink, log: logging.OrNop(logger).Named("debouncer")}
}

// Start reads and caches the configuration. Calling Start again re-reads
// it and keeps any pending timer.
func (d *Debouncer) Start(ctx context.Context) error {
	cfg := d.source.PresenceConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLossTimeout
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	d.running = true
	d.runCtx = ctx
	d.log.Info("presence monitoring started",
		zap.Stringer("window", cfg.Window),
		zap.Duration("timeout", cfg.Timeout),
		zap.Duration("scan_interval", cfg.ScanInterval))
	return nil
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.cancelLocked()
	d.running = false
	d.lastSeen = time.Time{}
	d.log.Info("presence monitoring stopped")
}

func (d *Debouncer) ScanInterval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.ScanInterval
}

// BeaconSeen records a raw sighting. Inside the scanning window it emits
// Detected on every sighting; the gate drops those that arrive while a
// session is already running.
func (d *Debouncer) BeaconSeen(ctx context.Context, beaconID string) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		d.log.Debug("sighting ignored", zap.String("reason", "monitoring stopped"))
		return nil
	}
	if !d.cfg.Accepts(beaconID) {
		d.mu.Unlock()
		d.log.Debug("sighting ignored", zap.String("reason", "unknown beacon"), zap.String("beacon_id", beaconID))
		return nil
	}
	now := d.clock.Now()
	d.lastSeen = now
	d.cancelLocked()
	inWindow := d.cfg.InWindow(now)
	d.mu.Unlock()

	if !inWindow {
		d.log.Debug("sighting ignored", zap.String("reason", "outside scanning window"), zap.Time("at", now))
		return nil
	}
	return d.sink.OnDetected(ctx, domain.Detected{BeaconID: beaconID, Time: now})
}

// RegionExited (re)arms the loss timer.
func (d *Debouncer) RegionExited(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	d.cancelLocked()
	gen := d.gen
	d.pending = d.clock.AfterFunc(d.cfg.Timeout, func() { d.fire(gen) })
	return nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.running {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.gen++
	signal := domain.Lost{Time: d.clock.Now(), LastSeen: d.lastSeen}
	// A sighting only dates the loss that follows it.
	d.lastSeen = time.Time{}
	ctx := d.runCtx
	d.mu.Unlock()

	if err := d.sink.OnLost(ctx, signal); err != nil {
		d.log.Error("beacon loss not applied", zap.Error(err))
	}
}

func (d *Debouncer) cancelLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

package service

import (
	"context"

	"go.uber.org/zap"

	"worktrack/internal/modules/presence/domain"
	presenceout "worktrack/internal/modules/presence/port/out"
	"worktrack/internal/platform/logging"
)

// HomeOfficeGate decides which debounced beacon signals reach the tracker.
// A detection starts a home office session only from idle and inside the
// work window; a commute day does not block it, an active commute does.
// A loss is only relevant to a running home office session.
type HomeOfficeGate struct {
	tracker presenceout.Tracker
	config  presenceout.ConfigSource
	log     *zap.Logger
}

func NewHomeOfficeGate(tracker presenceout.Tracker, config presenceout.ConfigSource, logger *zap.Logger) *HomeOfficeGate {
	return &HomeOfficeGate{tracker: tracker, config: config, log: logging.OrNop(logger).Named("gate")}
}

func (g *HomeOfficeGate) OnDetected(ctx context.Context, signal domain.Detected) error {
	state, err := g.tracker.State(ctx)
	if err != nil {
		return err
	}
	if !state.Idle() {
		g.log.Debug("beacon detection ignored", zap.String("reason", "session active"), zap.String("session_type", string(state.SessionType)))
		return nil
	}
	if !g.config.WorkWindowContains(signal.Time) {
		g.log.Debug("beacon detection ignored", zap.String("reason", "outside work window"), zap.Time("at", signal.Time))
		return nil
	}
	return g.tracker.BeaconDetected(ctx, signal)
}

func (g *HomeOfficeGate) OnLost(ctx context.Context, signal domain.Lost) error {
	state, err := g.tracker.State(ctx)
	if err != nil {
		return err
	}
	if !state.HomeOfficeActive() {
		g.log.Debug("beacon loss ignored", zap.String("reason", "no home office session"))
		return nil
	}
	return g.tracker.BeaconLost(ctx, signal)
}

package out

import (
	"context"
	"time"

	"worktrack/internal/modules/presence/domain"
)

// Tracker is the tracking engine as seen from presence.
type Tracker interface {
	State(ctx context.Context) (domain.TrackerState, error)
	BeaconDetected(ctx context.Context, signal domain.Detected) error
	BeaconLost(ctx context.Context, signal domain.Lost) error
}

type ConfigSource interface {
	PresenceConfig() domain.Config
	// WorkWindowContains uses the live settings, unlike the cached Config.
	WorkWindowContains(t time.Time) bool
}

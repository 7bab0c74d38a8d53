package in

import (
	"context"
	"time"
)

type Usecase interface {
	// Start caches the presence configuration and arms monitoring.
	Start(ctx context.Context) error
	// Stop cancels any pending loss timer. No signal is emitted afterwards.
	Stop()
	BeaconSeen(ctx context.Context, beaconID string) error
	RegionExited(ctx context.Context) error
	ScanInterval() time.Duration
}

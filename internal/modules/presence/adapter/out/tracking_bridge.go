package out

import (
	"context"

	"worktrack/internal/modules/presence/domain"
	presenceout "worktrack/internal/modules/presence/port/out"
	trackingdomain "worktrack/internal/modules/tracking/domain"
	trackingdto "worktrack/internal/modules/tracking/dto"
	trackingin "worktrack/internal/modules/tracking/port/in"
)

// TrackingBridge feeds presence signals into the tracking engine's single
// event entry point.
type TrackingBridge struct {
	tracking trackingin.Usecase
}

func NewTrackingBridge(tracking trackingin.Usecase) presenceout.Tracker {
	return &TrackingBridge{tracking: tracking}
}

func (b *TrackingBridge) State(ctx context.Context) (domain.TrackerState, error) {
	status, err := b.tracking.Status(ctx)
	if err != nil {
		return domain.TrackerState{}, err
	}
	return domain.TrackerState{
		Kind:        trackingdomain.StateKind(status.State.Kind),
		SessionType: trackingdomain.SessionType(status.State.SessionType),
	}, nil
}

func (b *TrackingBridge) BeaconDetected(ctx context.Context, signal domain.Detected) error {
	_, err := b.tracking.ProcessEvent(ctx, trackingdto.EventInput{
		Type:     "beacon_detected",
		BeaconID: signal.BeaconID,
		Time:     signal.Time,
	})
	return err
}

func (b *TrackingBridge) BeaconLost(ctx context.Context, signal domain.Lost) error {
	_, err := b.tracking.ProcessEvent(ctx, trackingdto.EventInput{
		Type:     "beacon_lost",
		Time:     signal.Time,
		LastSeen: signal.LastSeen,
	})
	return err
}

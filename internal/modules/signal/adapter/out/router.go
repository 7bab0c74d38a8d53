package out

import (
	"context"
	"fmt"
	"time"

	presencein "worktrack/internal/modules/presence/port/in"
	"worktrack/internal/modules/signal/domain"
	signalout "worktrack/internal/modules/signal/port/out"
	trackingdto "worktrack/internal/modules/tracking/dto"
	trackingin "worktrack/internal/modules/tracking/port/in"
	"worktrack/internal/platform/clock"
	apperrors "worktrack/internal/platform/errors"
)

// Router sends geofence and manual signals to the tracking engine and raw
// beacon radio signals through the presence debouncer.
type Router struct {
	tracking trackingin.Usecase
	presence presencein.Usecase
	clock    clock.Clock
}

func NewRouter(tracking trackingin.Usecase, presence presencein.Usecase, clk clock.Clock) signalout.Router {
	return &Router{tracking: tracking, presence: presence, clock: clk}
}

func (r *Router) Route(ctx context.Context, signal domain.Signal) error {
	switch signal.Kind {
	case domain.KindBeaconSeen:
		return r.presence.BeaconSeen(ctx, signal.BeaconID)
	case domain.KindBeaconExited:
		return r.presence.RegionExited(ctx)
	}
	input, err := r.eventInput(signal)
	if err != nil {
		return err
	}
	_, err = r.tracking.ProcessEvent(ctx, input)
	return err
}

func (r *Router) ScanInterval() time.Duration {
	return r.presence.ScanInterval()
}

func (r *Router) eventInput(signal domain.Signal) (trackingdto.EventInput, error) {
	at := signal.Time
	switch signal.Kind {
	case domain.KindGeofenceEnter, domain.KindGeofenceExit:
		if at.IsZero() {
			at = r.clock.Now()
		}
		typ := "geofence_entered"
		if signal.Kind == domain.KindGeofenceExit {
			typ = "geofence_exited"
		}
		return trackingdto.EventInput{Type: typ, Zone: signal.Zone, Time: at}, nil
	case domain.KindManualStart:
		return trackingdto.EventInput{Type: "manual_start", SessionType: signal.SessionType, Time: at}, nil
	case domain.KindManualStop, domain.KindPauseStart, domain.KindPauseEnd:
		return trackingdto.EventInput{Type: string(signal.Kind)}, nil
	default:
		return trackingdto.EventInput{}, fmt.Errorf("%w: signal kind %q", apperrors.ErrUnknownEvent, signal.Kind)
	}
}

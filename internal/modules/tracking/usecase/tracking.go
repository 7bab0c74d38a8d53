package usecase

import (
	"context"
	"fmt"

	"worktrack/internal/modules/tracking/domain"
	trackingdto "worktrack/internal/modules/tracking/dto"
	trackingin "worktrack/internal/modules/tracking/port/in"
	"worktrack/internal/modules/tracking/service"
	apperrors "worktrack/internal/platform/errors"
)

type Interactor struct {
	orchestrator *service.Orchestrator
}

func NewInteractor(orchestrator *service.Orchestrator) trackingin.Usecase {
	return &Interactor{orchestrator: orchestrator}
}

func (i *Interactor) ProcessEvent(ctx context.Context, input trackingdto.EventInput) (trackingdto.StateOutput, error) {
	event, err := ToEvent(input)
	if err != nil {
		return trackingdto.StateOutput{}, err
	}
	state, err := i.orchestrator.ProcessEvent(ctx, event)
	if err != nil {
		return trackingdto.StateOutput{}, err
	}
	return ToStateOutput(state), nil
}

func (i *Interactor) RestoreState(ctx context.Context) (trackingdto.StateOutput, error) {
	state, err := i.orchestrator.RestoreState(ctx)
	if err != nil {
		return trackingdto.StateOutput{}, err
	}
	return ToStateOutput(state), nil
}

func (i *Interactor) Status(_ context.Context) (trackingdto.StatusOutput, error) {
	return trackingdto.StatusOutput{
		State: ToStateOutput(i.orchestrator.State()),
		Phase: i.orchestrator.Phase().String(),
	}, nil
}

func (i *Interactor) WatchState(ctx context.Context, fn func(trackingdto.StateOutput)) {
	updates, cancel := i.orchestrator.SubscribeState()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			fn(ToStateOutput(state))
		}
	}
}

func (i *Interactor) WatchPhase(ctx context.Context, fn func(string)) {
	updates, cancel := i.orchestrator.SubscribePhase()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case phase, ok := <-updates:
			if !ok {
				return
			}
			fn(phase.String())
		}
	}
}

// ToEvent validates a wire event and converts it to its domain variant.
func ToEvent(input trackingdto.EventInput) (domain.Event, error) {
	switch input.Type {
	case "geofence_entered", "geofence_exited":
		zone, err := domain.ParseZone(input.Zone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if input.Time.IsZero() {
			return nil, fmt.Errorf("%w: %s requires a time", apperrors.ErrInvalidInput, input.Type)
		}
		if input.Type == "geofence_entered" {
			return domain.GeofenceEntered{Zone: zone, Time: input.Time}, nil
		}
		return domain.GeofenceExited{Zone: zone, Time: input.Time}, nil
	case "beacon_detected":
		if input.Time.IsZero() {
			return nil, fmt.Errorf("%w: beacon_detected requires a time", apperrors.ErrInvalidInput)
		}
		return domain.BeaconDetected{BeaconID: input.BeaconID, Time: input.Time}, nil
	case "beacon_lost":
		if input.Time.IsZero() {
			return nil, fmt.Errorf("%w: beacon_lost requires a time", apperrors.ErrInvalidInput)
		}
		return domain.BeaconLost{Time: input.Time, LastSeen: input.LastSeen}, nil
	case "manual_start":
		typ := domain.SessionManual
		if input.SessionType != "" {
			parsed, err := domain.ParseSessionType(input.SessionType)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
			}
			typ = parsed
		}
		return domain.ManualStart{Type: typ, Time: input.Time}, nil
	case "manual_stop":
		return domain.ManualStop{}, nil
	case "pause_start":
		return domain.PauseStart{}, nil
	case "pause_end":
		return domain.PauseEnd{}, nil
	case "app_restarted":
		return domain.AppRestarted{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownEvent, input.Type)
	}
}

func ToStateOutput(state domain.State) trackingdto.StateOutput {
	switch s := state.(type) {
	case domain.Tracking:
		return trackingdto.StateOutput{
			Kind:        string(s.Kind()),
			SessionID:   s.SessionID,
			SessionType: string(s.Type),
			StartTime:   s.StartTime,
		}
	case domain.Paused:
		return trackingdto.StateOutput{
			Kind:        string(s.Kind()),
			SessionID:   s.SessionID,
			SessionType: string(s.Type),
			PauseID:     s.PauseID,
		}
	default:
		return trackingdto.StateOutput{Kind: string(domain.KindIdle)}
	}
}

package in

import (
	"context"

	"worktrack/internal/modules/tracking/dto"
)

type Usecase interface {
	ProcessEvent(ctx context.Context, input dto.EventInput) (dto.StateOutput, error)
	RestoreState(ctx context.Context) (dto.StateOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	// WatchState calls fn with the current state and every change until ctx
	// is done.
	WatchState(ctx context.Context, fn func(dto.StateOutput))
	WatchPhase(ctx context.Context, fn func(phase string))
}

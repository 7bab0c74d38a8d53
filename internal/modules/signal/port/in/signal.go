package in

import (
	"context"

	"worktrack/internal/modules/signal/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.SourceInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Run polls every runnable source until ctx is done.
	Run(ctx context.Context) error
}

package usecase

import (
	"context"

	"worktrack/internal/modules/signal/dto"
	signalin "worktrack/internal/modules/signal/port/in"
	"worktrack/internal/modules/signal/service"
)

type Interactor struct {
	svc *service.SignalService
}

func NewInteractor(svc *service.SignalService) signalin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.SourceInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Run(ctx context.Context) error {
	return i.svc.Run(ctx)
}

package usecase

import (
	"context"
	"strings"
	"time"

	presencein "worktrack/internal/modules/presence/port/in"
	"worktrack/internal/modules/presence/service"
)

type Interactor struct {
	debouncer *service.Debouncer
}

func NewInteractor(debouncer *service.Debouncer) presencein.Usecase {
	return &Interactor{debouncer: debouncer}
}

func (i *Interactor) Start(ctx context.Context) error {
	return i.debouncer.Start(ctx)
}

func (i *Interactor) Stop() {
	i.debouncer.Stop()
}

func (i *Interactor) BeaconSeen(ctx context.Context, beaconID string) error {
	return i.debouncer.BeaconSeen(ctx, strings.TrimSpace(beaconID))
}

func (i *Interactor) RegionExited(ctx context.Context) error {
	return i.debouncer.RegionExited(ctx)
}

func (i *Interactor) ScanInterval() time.Duration {
	return i.debouncer.ScanInterval()
}

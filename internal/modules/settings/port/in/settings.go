package in

import (
	"context"

	"worktrack/internal/modules/settings/domain"
)

type Usecase interface {
	Current() domain.Settings
	// Subscribe delivers the current settings immediately and every later
	// change. cancel releases the subscription.
	Subscribe() (updates <-chan domain.Settings, cancel func())
	Reload(ctx context.Context) error
	Save(ctx context.Context, settings domain.Settings) error
}

package out

import (
	"context"
	"time"

	"worktrack/internal/modules/reminder/domain"
)

type Ledger interface {
	HasTrackingOn(ctx context.Context, day time.Time) (bool, error)
	HasOpenSession(ctx context.Context) (bool, error)
}

type ConfigSource interface {
	ReminderConfig() domain.Config
}

type Notifier interface {
	Notify(ctx context.Context, reminder domain.Reminder) error
}

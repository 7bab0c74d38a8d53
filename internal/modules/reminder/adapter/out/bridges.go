package out

import (
	"context"
	"errors"
	"time"

	ledgerin "worktrack/internal/modules/ledger/port/in"
	"worktrack/internal/modules/reminder/domain"
	reminderout "worktrack/internal/modules/reminder/port/out"
	settingsin "worktrack/internal/modules/settings/port/in"
	apperrors "worktrack/internal/platform/errors"
)

type LedgerBridge struct {
	ledger ledgerin.Usecase
}

func NewLedgerBridge(ledger ledgerin.Usecase) reminderout.Ledger {
	return &LedgerBridge{ledger: ledger}
}

func (b *LedgerBridge) HasTrackingOn(ctx context.Context, day time.Time) (bool, error) {
	return b.ledger.HasTrackingOn(ctx, day)
}

func (b *LedgerBridge) HasOpenSession(ctx context.Context) (bool, error) {
	_, err := b.ledger.ActiveSession(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return false, nil
	}
	return err == nil, err
}

type SettingsConfigSource struct {
	settings settingsin.Usecase
	loc      *time.Location
}

func NewSettingsConfigSource(settings settingsin.Usecase, loc *time.Location) reminderout.ConfigSource {
	return &SettingsConfigSource{settings: settings, loc: loc}
}

func (s *SettingsConfigSource) ReminderConfig() domain.Config {
	current := s.settings.Current()
	return domain.Config{
		NoTracking:  current.Reminders.NoTracking,
		LateCutoff:  current.Reminders.LateCutoff,
		CommuteDays: current.CommuteDays,
		Location:    s.loc,
	}
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"worktrack/internal/modules/settings/domain"
	settingsin "worktrack/internal/modules/settings/port/in"
	settingsout "worktrack/internal/modules/settings/port/out"
	"worktrack/internal/platform/logging"
	"worktrack/internal/platform/observable"
)

var _ settingsin.Usecase = (*SettingsService)(nil)

// SettingsService keeps the settings in force. A stored file that fails
// validation never replaces the current value.
type SettingsService struct {
	store    settingsout.Store
	notifier settingsout.ChangeNotifier
	value    *observable.Value[domain.Settings]
	log      *zap.Logger
}

func NewSettingsService(store settingsout.Store, notifier settingsout.ChangeNotifier, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		store:    store,
		notifier: notifier,
		value:    observable.NewValue(domain.Default()),
		log:      logging.OrNop(logger).Named("settings"),
	}
}

func (s *SettingsService) Current() domain.Settings {
	return s.value.Get()
}

func (s *SettingsService) Subscribe() (<-chan domain.Settings, func()) {
	return s.value.Subscribe()
}

func (s *SettingsService) Reload(ctx context.Context) error {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	s.value.Set(loaded)
	return nil
}

func (s *SettingsService) Save(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.value.Set(settings)
	return nil
}

// Watch reloads on every change notification until ctx is done. Rejected
// files are logged and the previous settings stay in force.
func (s *SettingsService) Watch(ctx context.Context) error {
	if s.notifier == nil {
		<-ctx.Done()
		return nil
	}
	return s.notifier.Watch(ctx, func() {
		if err := s.Reload(ctx); err != nil {
			s.log.Warn("settings change rejected, keeping previous settings", zap.Error(err))
			return
		}
		s.log.Info("settings reloaded")
	})
}

package out

import (
	"time"

	"worktrack/internal/modules/presence/domain"
	presenceout "worktrack/internal/modules/presence/port/out"
	settingsin "worktrack/internal/modules/settings/port/in"
)

type SettingsConfigSource struct {
	settings settingsin.Usecase
	loc      *time.Location
}

func NewSettingsConfigSource(settings settingsin.Usecase, loc *time.Location) presenceout.ConfigSource {
	return &SettingsConfigSource{settings: settings, loc: loc}
}

func (s *SettingsConfigSource) PresenceConfig() domain.Config {
	current := s.settings.Current()
	return domain.Config{
		BeaconUUID:   current.Beacon.UUID,
		Window:       current.Windows.Work,
		Timeout:      current.Beacon.Timeout,
		ScanInterval: current.Beacon.ScanInterval,
		Location:     s.loc,
	}
}

func (s *SettingsConfigSource) WorkWindowContains(t time.Time) bool {
	return s.settings.Current().Policy(s.loc).InWorkWindow(t)
}

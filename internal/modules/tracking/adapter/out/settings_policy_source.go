package out

import (
	"time"

	settingsin "worktrack/internal/modules/settings/port/in"
	"worktrack/internal/modules/tracking/domain"
	trackingout "worktrack/internal/modules/tracking/port/out"
)

// SettingsPolicySource reads the policy from the live settings on every
// call, so edits apply to the next event.
type SettingsPolicySource struct {
	settings settingsin.Usecase
	loc      *time.Location
}

func NewSettingsPolicySource(settings settingsin.Usecase, loc *time.Location) trackingout.PolicySource {
	return &SettingsPolicySource{settings: settings, loc: loc}
}

func (s *SettingsPolicySource) Policy() domain.Policy {
	return s.settings.Current().Policy(s.loc)
}

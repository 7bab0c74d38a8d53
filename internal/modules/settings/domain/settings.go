package domain

import (
	"errors"
	"fmt"
	"time"

	trackingdomain "worktrack/internal/modules/tracking/domain"
	apperrors "worktrack/internal/platform/errors"
)

type Windows struct {
	Outbound trackingdomain.TimeWindow
	Return   trackingdomain.TimeWindow
	Work     trackingdomain.TimeWindow
}

type Beacon struct {
	UUID         string
	Timeout      time.Duration
	ScanInterval time.Duration
}

type Reminders struct {
	NoTracking trackingdomain.TimeOfDay
	LateCutoff trackingdomain.TimeOfDay
}

// Settings are the user-editable tracking preferences.
type Settings struct {
	CommuteDays       trackingdomain.WeekdaySet
	Windows           Windows
	Beacon            Beacon
	Reminders         Reminders
	WeeklyTargetHours float64
}

func Default() Settings {
	return Settings{
		CommuteDays: trackingdomain.Workweek,
		Windows: Windows{
			Outbound: trackingdomain.MustWindow(trackingdomain.At(6, 0), trackingdomain.At(10, 0)),
			Return:   trackingdomain.MustWindow(trackingdomain.At(15, 0), trackingdomain.At(20, 0)),
			Work:     trackingdomain.MustWindow(trackingdomain.At(6, 0), trackingdomain.At(22, 0)),
		},
		Beacon: Beacon{
			Timeout:      10 * time.Minute,
			ScanInterval: 60 * time.Second,
		},
		Reminders: Reminders{
			NoTracking: trackingdomain.DefaultNoTrackingReminder,
			LateCutoff: trackingdomain.DefaultLateTrackingCutoff,
		},
		WeeklyTargetHours: 40,
	}
}

func (s Settings) Validate() error {
	var errs []error
	for name, w := range map[string]trackingdomain.TimeWindow{
		"outbound": s.Windows.Outbound,
		"return":   s.Windows.Return,
		"work":     s.Windows.Work,
	} {
		if err := w.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s window: %w", name, err))
		}
	}
	if s.Beacon.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: beacon timeout must be positive", apperrors.ErrInvalidInput))
	}
	if s.Beacon.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: beacon scan interval must be positive", apperrors.ErrInvalidInput))
	}
	if !s.Reminders.NoTracking.Valid() || !s.Reminders.LateCutoff.Valid() {
		errs = append(errs, fmt.Errorf("%w: reminder time out of range", apperrors.ErrInvalidInput))
	}
	if s.WeeklyTargetHours < 0 || s.WeeklyTargetHours > 168 {
		errs = append(errs, fmt.Errorf("%w: weekly target hours must be within 0-168", apperrors.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// Policy projects the settings onto the gating policy, evaluated in loc.
func (s Settings) Policy(loc *time.Location) trackingdomain.Policy {
	return trackingdomain.Policy{
		CommuteDays:    s.CommuteDays,
		OutboundWindow: s.Windows.Outbound,
		ReturnWindow:   s.Windows.Return,
		WorkWindow:     s.Windows.Work,
		Location:       loc,
	}
}

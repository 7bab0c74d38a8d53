package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "worktrack/internal/platform/errors"
)

// TimeOfDay is a wall-clock time in minutes since midnight. Policy works
// at minute granularity: an instant belongs to the minute it falls in.
type TimeOfDay int

const minutesPerDay = 24 * 60

func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf returns the time of day of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: time of day %q must be HH:MM", apperrors.ErrInvalidInput, raw)
	}
	return TimeOfDayOf(parsed), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeWindow is an inclusive [Start, End] range within one day.
type TimeWindow struct {
	Start TimeOfDay `json:"start" yaml:"start"`
	End   TimeOfDay `json:"end"   yaml:"end"`
}

// NewTimeWindow fails unless start is strictly before end.
func NewTimeWindow(start, end TimeOfDay) (TimeWindow, error) {
	w := TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// MustWindow is NewTimeWindow for constants known to be valid.
func MustWindow(start, end TimeOfDay) TimeWindow {
	w, err := NewTimeWindow(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

func (w TimeWindow) Validate() error {
	if !w.Start.Valid() || !w.End.Valid() {
		return fmt.Errorf("%w: %s-%s out of range", apperrors.ErrInvalidWindow, w.Start, w.End)
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w: start %s must be before end %s", apperrors.ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	DefaultNoTrackingReminder = At(10, 0)
	DefaultLateTrackingCutoff = At(21, 0)
)

// WeekdaySet is a set of weekdays, one bit per time.Weekday.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// Workweek is Monday through Friday.
var Workweek = NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %q", raw)
}

func (s WeekdaySet) Names() []string {
	days := s.Days()
	sort.Slice(days, func(i, j int) bool { return isoIndex(days[i]) < isoIndex(days[j]) })
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

func isoIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// IsCommuteDay reports whether date falls on one of the commute days, in
// date's own location.
func IsCommuteDay(date time.Time, commuteDays WeekdaySet) bool {
	return commuteDays.Contains(date.Weekday())
}

// IsInWindow reports whether t lies inside w, both bounds inclusive.
func IsInWindow(t TimeOfDay, w TimeWindow) bool {
	return t >= w.Start && t <= w.End
}

func ShouldShowNoTrackingReminder(now, reminderTime TimeOfDay, isCommuteDay, hasTrackingToday bool) bool {
	return isCommuteDay && !hasTrackingToday && now >= reminderTime
}

func ShouldShowLateTrackingReminder(now, cutoffTime TimeOfDay, hasTrackingToday bool) bool {
	return hasTrackingToday && now >= cutoffTime
}

// Policy is the configuration the automatic transitions are gated by.
type Policy struct {
	CommuteDays    WeekdaySet
	OutboundWindow TimeWindow
	ReturnWindow   TimeWindow
	WorkWindow     TimeWindow
	Location       *time.Location
}

// Local converts t into the policy's zone.
func (p Policy) Local(t time.Time) time.Time {
	if p.Location == nil {
		return t
	}
	return t.In(p.Location)
}

func (p Policy) IsCommuteDay(t time.Time) bool {
	return IsCommuteDay(p.Local(t), p.CommuteDays)
}

func (p Policy) InOutboundWindow(t time.Time) bool {
	return IsInWindow(TimeOfDayOf(p.Local(t)), p.OutboundWindow)
}

func (p Policy) InReturnWindow(t time.Time) bool {
	return IsInWindow(TimeOfDayOf(p.Local(t)), p.ReturnWindow)
}

func (p Policy) InWorkWindow(t time.Time) bool {
	return IsInWindow(TimeOfDayOf(p.Local(t)), p.WorkWindow)
}

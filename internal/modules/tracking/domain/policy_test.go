package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"worktrack/internal/modules/tracking/domain"
	apperrors "worktrack/internal/platform/errors"
)

func TestIsInWindowBoundsAreInclusive(t *testing.T) {
	t.Parallel()
	w := domain.MustWindow(domain.At(6, 0), domain.At(10, 0))
	cases := []struct {
		at   domain.TimeOfDay
		want bool
	}{
		{domain.At(5, 59), false},
		{domain.At(6, 0), true},
		{domain.At(8, 30), true},
		{domain.At(10, 0), true},
		{domain.At(10, 1), false},
	}
	for _, tc := range cases {
		if got := domain.IsInWindow(tc.at, w); got != tc.want {
			t.Fatalf("IsInWindow(%s, %s) = %t, want %t", tc.at, w, got, tc.want)
		}
	}
}

func TestTimeOfDayOfTruncatesToMinute(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 2, 10, 0, 59, 999, time.UTC)
	if got := domain.TimeOfDayOf(at); got != domain.At(10, 0) {
		t.Fatalf("expected 10:00, got %s", got)
	}
	w := domain.MustWindow(domain.At(6, 0), domain.At(10, 0))
	if !domain.IsInWindow(domain.TimeOfDayOf(at), w) {
		t.Fatalf("10:00:59 must still be inside a window ending at 10:00")
	}
}

func TestNewTimeWindowRejectsEmptyAndInverted(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ start, end domain.TimeOfDay }{
		{domain.At(10, 0), domain.At(10, 0)},
		{domain.At(12, 0), domain.At(9, 0)},
		{domain.At(9, 0), domain.TimeOfDay(24 * 60)},
	} {
		if _, err := domain.NewTimeWindow(tc.start, tc.end); !errors.Is(err, apperrors.ErrInvalidWindow) {
			t.Fatalf("window %s-%s: expected ErrInvalidWindow, got %v", tc.start, tc.end, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	got, err := domain.ParseTimeOfDay(" 07:45 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != domain.At(7, 45) {
		t.Fatalf("expected 07:45, got %s", got)
	}
	for _, raw := range []string{"7", "24:00", "07:60", "seven"} {
		if _, err := domain.ParseTimeOfDay(raw); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("parse %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestCommuteDayUsesPolicyLocation(t *testing.T) {
	t.Parallel()
	berlin := time.FixedZone("CET", 3600)
	p := domain.Policy{CommuteDays: domain.NewWeekdaySet(time.Monday), Location: berlin}
	// Sunday 23:30 UTC is already Monday in CET.
	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	if !p.IsCommuteDay(at) {
		t.Fatalf("expected Monday in policy zone to be a commute day")
	}
	if domain.IsCommuteDay(at, p.CommuteDays) {
		t.Fatalf("expected Sunday in UTC not to be a commute day")
	}
}

func TestReminderPredicates(t *testing.T) {
	t.Parallel()
	cutoff := domain.DefaultLateTrackingCutoff
	if !domain.ShouldShowNoTrackingReminder(domain.At(10, 0), domain.DefaultNoTrackingReminder, true, false) {
		t.Fatalf("expected no-tracking reminder at 10:00 on an untracked commute day")
	}
	if domain.ShouldShowNoTrackingReminder(domain.At(11, 0), domain.DefaultNoTrackingReminder, false, false) {
		t.Fatalf("no-tracking reminder must not fire on a non-commute day")
	}
	if domain.ShouldShowNoTrackingReminder(domain.At(11, 0), domain.DefaultNoTrackingReminder, true, true) {
		t.Fatalf("no-tracking reminder must not fire once tracked")
	}
	if !domain.ShouldShowLateTrackingReminder(cutoff, cutoff, true) {
		t.Fatalf("expected late reminder at the cutoff")
	}
	if domain.ShouldShowLateTrackingReminder(cutoff-1, cutoff, true) {
		t.Fatalf("late reminder must not fire before the cutoff")
	}
}

func TestWeekdaySetNamesAreISOOrdered(t *testing.T) {
	t.Parallel()
	s := domain.NewWeekdaySet(time.Sunday, time.Wednesday, time.Monday)
	got := s.Names()
	want := []string{"monday", "wednesday", "sunday"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWindowMembershipProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	minute := gen.IntRange(0, 24*60-1)

	properties.Property("a window contains its bounds and nothing outside them", prop.ForAll(
		func(a, b, probe int) bool {
			if a == b {
				return true
			}
			start, end := domain.TimeOfDay(min(a, b)), domain.TimeOfDay(max(a, b))
			w, err := domain.NewTimeWindow(start, end)
			if err != nil {
				return false
			}
			p := domain.TimeOfDay(probe)
			inside := p >= start && p <= end
			return domain.IsInWindow(start, w) && domain.IsInWindow(end, w) && domain.IsInWindow(p, w) == inside
		},
		minute, minute, minute,
	))

	properties.Property("time of day round-trips through its text form", prop.ForAll(
		func(m int) bool {
			tod := domain.TimeOfDay(m)
			b, err := tod.MarshalText()
			if err != nil {
				return false
			}
			var back domain.TimeOfDay
			return back.UnmarshalText(b) == nil && back == tod
		},
		minute,
	))

	properties.TestingRun(t)
}

package domain

import "time"

const SchemaVersion = 1

// Session is one ledger entry. EndedAt is zero while the session is open.
type Session struct {
	ID           string
	Type         string
	AutoDetected bool
	StartedAt    time.Time
	EndedAt      time.Time
	Pauses       []Pause
}

type Pause struct {
	ID        string
	SessionID string
	StartedAt time.Time
	EndedAt   time.Time
}

type OfficeVisit struct {
	ID        string
	SessionID string
	EnteredAt time.Time
	ExitedAt  time.Time
}

func (s Session) Open() bool {
	return s.EndedAt.IsZero()
}

func (s Session) OpenPause() (Pause, bool) {
	for _, p := range s.Pauses {
		if p.EndedAt.IsZero() {
			return p, true
		}
	}
	return Pause{}, false
}

// PausedDuration sums pause time, counting an open pause up to now.
func (s Session) PausedDuration(now time.Time) time.Duration {
	var total time.Duration
	for _, p := range s.Pauses {
		end := p.EndedAt
		if end.IsZero() {
			end = now
		}
		if end.After(p.StartedAt) {
			total += end.Sub(p.StartedAt)
		}
	}
	return total
}

// WorkedDuration is wall time between start and end (or now) minus pauses.
func (s Session) WorkedDuration(now time.Time) time.Duration {
	end := s.EndedAt
	if end.IsZero() {
		end = now
	}
	worked := end.Sub(s.StartedAt) - s.PausedDuration(end)
	if worked < 0 {
		return 0
	}
	return worked
}

// DayBounds returns [start, end) of the calendar day containing t, in t's
// location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

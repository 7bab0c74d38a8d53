package domain

import (
	"time"

	trackingdomain "worktrack/internal/modules/tracking/domain"
)

// Detected is a debounced beacon presence.
type Detected struct {
	BeaconID string
	Time     time.Time
}

// Lost is a beacon absence that outlasted the timeout. LastSeen is the
// last raw sighting, zero when none was recorded.
type Lost struct {
	Time     time.Time
	LastSeen time.Time
}

// Config is read once when monitoring starts.
type Config struct {
	BeaconUUID   string
	Window       trackingdomain.TimeWindow
	Timeout      time.Duration
	ScanInterval time.Duration
	Location     *time.Location
}

// InWindow reports whether t falls in the scanning window.
func (c Config) InWindow(t time.Time) bool {
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return trackingdomain.IsInWindow(trackingdomain.TimeOfDayOf(t), c.Window)
}

// Accepts reports whether a sighting of beaconID belongs to the configured
// beacon. An empty id or an unconfigured UUID matches.
func (c Config) Accepts(beaconID string) bool {
	return c.BeaconUUID == "" || beaconID == "" || beaconID == c.BeaconUUID
}

// TrackerState is the part of the tracking state the gate decides on.
type TrackerState struct {
	Kind        trackingdomain.StateKind
	SessionType trackingdomain.SessionType
}

func (s TrackerState) Idle() bool {
	return s.Kind == trackingdomain.KindIdle || s.Kind == ""
}

func (s TrackerState) HomeOfficeActive() bool {
	return !s.Idle() && s.SessionType == trackingdomain.SessionHomeOffice
}

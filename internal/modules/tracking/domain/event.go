package domain

import "time"

// Event is an input to the tracking machine.
type Event interface {
	Name() string
	isEvent()
}

type GeofenceEntered struct {
	Zone Zone
	Time time.Time
}

type GeofenceExited struct {
	Zone Zone
	Time time.Time
}

type BeaconDetected struct {
	BeaconID string
	Time     time.Time
}

// BeaconLost carries the time the loss was declared and, when known, the
// last time the beacon was actually seen. A zero LastSeen means unknown.
type BeaconLost struct {
	Time     time.Time
	LastSeen time.Time
}

type ManualStart struct {
	Type SessionType
	Time time.Time
}

type ManualStop struct{}

type PauseStart struct{}

type PauseEnd struct{}

type AppRestarted struct{}

func (GeofenceEntered) Name() string { return "geofence_entered" }
func (GeofenceExited) Name() string  { return "geofence_exited" }
func (BeaconDetected) Name() string  { return "beacon_detected" }
func (BeaconLost) Name() string      { return "beacon_lost" }
func (ManualStart) Name() string     { return "manual_start" }
func (ManualStop) Name() string      { return "manual_stop" }
func (PauseStart) Name() string      { return "pause_start" }
func (PauseEnd) Name() string        { return "pause_end" }
func (AppRestarted) Name() string    { return "app_restarted" }

func (GeofenceEntered) isEvent() {}
func (GeofenceExited) isEvent()  {}
func (BeaconDetected) isEvent()  {}
func (BeaconLost) isEvent()      {}
func (ManualStart) isEvent()     {}
func (ManualStop) isEvent()      {}
func (PauseStart) isEvent()      {}
func (PauseEnd) isEvent()        {}
func (AppRestarted) isEvent()    {}

// EndTime is the session end a loss implies: the last sighting when known,
// otherwise the moment the loss was declared.
func (e BeaconLost) EndTime() time.Time {
	if !e.LastSeen.IsZero() {
		return e.LastSeen
	}
	return e.Time
}

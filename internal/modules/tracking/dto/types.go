package dto

import "time"

// EventInput is the flat wire form of a tracking event. Type is one of the
// event names (geofence_entered, beacon_lost, manual_start, ...).
type EventInput struct {
	Type        string    `json:"type"`
	Zone        string    `json:"zone,omitempty"`
	SessionType string    `json:"session_type,omitempty"`
	BeaconID    string    `json:"beacon_id,omitempty"`
	Time        time.Time `json:"time,omitempty"`
	LastSeen    time.Time `json:"last_seen,omitempty"`
}

type StateOutput struct {
	Kind        string    `json:"kind"`
	SessionID   string    `json:"session_id,omitempty"`
	SessionType string    `json:"session_type,omitempty"`
	PauseID     string    `json:"pause_id,omitempty"`
	StartTime   time.Time `json:"start_time,omitempty"`
}

type StatusOutput struct {
	State StateOutput `json:"state"`
	Phase string      `json:"phase"`
}

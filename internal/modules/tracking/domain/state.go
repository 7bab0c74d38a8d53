package domain

import "time"

// StateKind is the discriminator of a State, also used as the persisted
// state_type value.
type StateKind string

const (
	KindIdle     StateKind = "IDLE"
	KindTracking StateKind = "TRACKING"
	KindPaused   StateKind = "PAUSED"
)

// State is the primary machine's state: one of Idle, Tracking or Paused.
type State interface {
	Kind() StateKind
	isState()
}

type Idle struct{}

// Tracking means exactly one session is open and running.
type Tracking struct {
	SessionID string
	Type      SessionType
	StartTime time.Time
}

// Paused means the session is open but an open pause record exists.
type Paused struct {
	SessionID string
	Type      SessionType
	PauseID   string
	// Auto is set when a geofence opened the pause rather than the user.
	Auto bool
}

func (Idle) Kind() StateKind     { return KindIdle }
func (Tracking) Kind() StateKind { return KindTracking }
func (Paused) Kind() StateKind   { return KindPaused }

func (Idle) isState()     {}
func (Tracking) isState() {}
func (Paused) isState()   {}

// ActiveSession returns the open session's id and type, if any.
func ActiveSession(s State) (id string, typ SessionType, ok bool) {
	switch st := s.(type) {
	case Tracking:
		return st.SessionID, st.Type, true
	case Paused:
		return st.SessionID, st.Type, true
	default:
		return "", "", false
	}
}

func IsIdle(s State) bool {
	_, ok := s.(Idle)
	return ok || s == nil
}

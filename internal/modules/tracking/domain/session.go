package domain

import "fmt"

// SessionType classifies how a work session came about.
type SessionType string

const (
	SessionHomeOffice    SessionType = "HOME_OFFICE"
	SessionCommuteOffice SessionType = "COMMUTE_OFFICE"
	SessionManual        SessionType = "MANUAL"
)

func ParseSessionType(raw string) (SessionType, error) {
	switch t := SessionType(raw); t {
	case SessionHomeOffice, SessionCommuteOffice, SessionManual:
		return t, nil
	default:
		return "", fmt.Errorf("unknown session type: %q", raw)
	}
}

// Zone is the type of a geofenced area.
type Zone string

const (
	ZoneHomeStation   Zone = "HOME_STATION"
	ZoneOffice        Zone = "OFFICE"
	ZoneOfficeStation Zone = "OFFICE_STATION"
)

func ParseZone(raw string) (Zone, error) {
	switch z := Zone(raw); z {
	case ZoneHomeStation, ZoneOffice, ZoneOfficeStation:
		return z, nil
	default:
		return "", fmt.Errorf("unknown zone: %q", raw)
	}
}

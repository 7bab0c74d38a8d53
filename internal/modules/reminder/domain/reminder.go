package domain

import (
	"time"

	trackingdomain "worktrack/internal/modules/tracking/domain"
)

type Kind string

const (
	KindNoTracking   Kind = "no_tracking"
	KindLateTracking Kind = "late_tracking"
)

type Reminder struct {
	Kind    Kind      `json:"kind"`
	Day     string    `json:"day"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

type Config struct {
	NoTracking  trackingdomain.TimeOfDay
	LateCutoff  trackingdomain.TimeOfDay
	CommuteDays trackingdomain.WeekdaySet
	Location    *time.Location
}

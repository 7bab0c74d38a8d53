package dto

import "time"

type StartSessionInput struct {
	Type         string
	AutoDetected bool
	At           time.Time
}

type SessionOutput struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	AutoDetected  bool       `json:"auto_detected"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	OpenPauseID   string     `json:"open_pause_id,omitempty"`
	PausedMinutes int        `json:"paused_minutes"`
	WorkedMinutes int        `json:"worked_minutes"`
}

type ListSessionsInput struct {
	From  time.Time
	To    time.Time
	Limit int
}

type ExportNotesInput struct {
	From time.Time
	To   time.Time
}

type ExportNotesOutput struct {
	Paths []string `json:"paths"`
}

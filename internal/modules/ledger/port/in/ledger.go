package in

import (
	"context"
	"time"

	"worktrack/internal/modules/ledger/dto"
)

type Usecase interface {
	StartSession(ctx context.Context, input dto.StartSessionInput) (dto.SessionOutput, error)
	StopSession(ctx context.Context, sessionID string, at time.Time) error
	StartPause(ctx context.Context, sessionID string, at time.Time) (string, error)
	StopPause(ctx context.Context, sessionID string, at time.Time) error
	ActiveSession(ctx context.Context) (dto.SessionOutput, error)
	RecordOfficeEntry(ctx context.Context, sessionID string, at time.Time) error
	RecordOfficeExit(ctx context.Context, sessionID string, at time.Time) error
	HasCompletedOfficeVisitOn(ctx context.Context, day time.Time) (bool, error)
	HasTrackingOn(ctx context.Context, day time.Time) (bool, error)
	ListSessions(ctx context.Context, input dto.ListSessionsInput) ([]dto.SessionOutput, error)
	ExportNotes(ctx context.Context, input dto.ExportNotesInput) (dto.ExportNotesOutput, error)
}

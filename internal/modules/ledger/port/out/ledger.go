package out

import (
	"context"
	"time"

	"worktrack/internal/modules/ledger/domain"
)

type SessionStore interface {
	InsertSession(ctx context.Context, session domain.Session) error
	EndSession(ctx context.Context, sessionID string, endedAt time.Time) error
	// OpenSession returns apperrors.ErrNoActiveSession when every session
	// is closed.
	OpenSession(ctx context.Context) (domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	InsertPause(ctx context.Context, pause domain.Pause) error
	EndPause(ctx context.Context, pauseID string, endedAt time.Time) error
	ListSessions(ctx context.Context, from, to time.Time, limit int) ([]domain.Session, error)
	CountSessionsStarted(ctx context.Context, from, to time.Time) (int, error)
}

type VisitStore interface {
	OpenVisit(ctx context.Context, sessionID string) (domain.OfficeVisit, bool, error)
	InsertVisit(ctx context.Context, visit domain.OfficeVisit) error
	EndVisit(ctx context.Context, visitID string, exitedAt time.Time) error
	CountVisitsExited(ctx context.Context, from, to time.Time) (int, error)
}

type NoteStore interface {
	SaveDay(ctx context.Context, day time.Time, sessions []domain.Session) (string, error)
}

package out

import (
	"context"
	"time"

	"worktrack/internal/modules/tracking/domain"
)

// Ledger is the session ledger the orchestrator commands. Every time
// argument is the instant the change takes effect.
type Ledger interface {
	StartSession(ctx context.Context, typ domain.SessionType, autoDetected bool, at time.Time) (domain.LedgerSession, error)
	StopSession(ctx context.Context, sessionID string, endTime time.Time) error
	StartPause(ctx context.Context, sessionID string, at time.Time) (string, error)
	StopPause(ctx context.Context, sessionID string, at time.Time) error
	ActiveSession(ctx context.Context) (domain.LedgerSession, bool, error)
	RecordOfficeEntry(ctx context.Context, sessionID string, at time.Time) error
	RecordOfficeExit(ctx context.Context, sessionID string, at time.Time) error
	HasCompletedOfficeVisitToday(ctx context.Context, day time.Time) (bool, error)
}

// StateStore is a durable key-value store. Apply writes set and removes
// clear as one atomic change.
type StateStore interface {
	Load(ctx context.Context, keys []string) (map[string]string, error)
	Apply(ctx context.Context, set map[string]string, clear []string) error
}

// PolicySource yields the policy in force right now. Implementations
// follow settings changes at runtime.
type PolicySource interface {
	Policy() domain.Policy
}

package out

import (
	"context"
	"errors"
	"time"

	ledgerdto "worktrack/internal/modules/ledger/dto"
	ledgerin "worktrack/internal/modules/ledger/port/in"
	"worktrack/internal/modules/tracking/domain"
	trackingout "worktrack/internal/modules/tracking/port/out"
	apperrors "worktrack/internal/platform/errors"
)

type LedgerBridge struct {
	ledger ledgerin.Usecase
}

func NewLedgerBridge(ledger ledgerin.Usecase) trackingout.Ledger {
	return &LedgerBridge{ledger: ledger}
}

func (b *LedgerBridge) StartSession(ctx context.Context, typ domain.SessionType, autoDetected bool, at time.Time) (domain.LedgerSession, error) {
	out, err := b.ledger.StartSession(ctx, ledgerdto.StartSessionInput{Type: string(typ), AutoDetected: autoDetected, At: at})
	if err != nil {
		return domain.LedgerSession{}, err
	}
	return toLedgerSession(out), nil
}

func (b *LedgerBridge) StopSession(ctx context.Context, sessionID string, endTime time.Time) error {
	return b.ledger.StopSession(ctx, sessionID, endTime)
}

func (b *LedgerBridge) StartPause(ctx context.Context, sessionID string, at time.Time) (string, error) {
	return b.ledger.StartPause(ctx, sessionID, at)
}

func (b *LedgerBridge) StopPause(ctx context.Context, sessionID string, at time.Time) error {
	return b.ledger.StopPause(ctx, sessionID, at)
}

func (b *LedgerBridge) ActiveSession(ctx context.Context) (domain.LedgerSession, bool, error) {
	out, err := b.ledger.ActiveSession(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.LedgerSession{}, false, nil
	}
	if err != nil {
		return domain.LedgerSession{}, false, err
	}
	return toLedgerSession(out), true, nil
}

func (b *LedgerBridge) RecordOfficeEntry(ctx context.Context, sessionID string, at time.Time) error {
	return b.ledger.RecordOfficeEntry(ctx, sessionID, at)
}

func (b *LedgerBridge) RecordOfficeExit(ctx context.Context, sessionID string, at time.Time) error {
	return b.ledger.RecordOfficeExit(ctx, sessionID, at)
}

func (b *LedgerBridge) HasCompletedOfficeVisitToday(ctx context.Context, day time.Time) (bool, error) {
	return b.ledger.HasCompletedOfficeVisitOn(ctx, day)
}

func toLedgerSession(out ledgerdto.SessionOutput) domain.LedgerSession {
	return domain.LedgerSession{
		ID:          out.ID,
		Type:        domain.SessionType(out.Type),
		StartTime:   out.StartedAt,
		OpenPauseID: out.OpenPauseID,
	}
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"worktrack/internal/modules/ledger/domain"
	ledgerdto "worktrack/internal/modules/ledger/dto"
	ledgerin "worktrack/internal/modules/ledger/port/in"
	ledgerout "worktrack/internal/modules/ledger/port/out"
	"worktrack/internal/modules/ledger/service"
	apperrors "worktrack/internal/platform/errors"
)

// maxExportDays bounds one note export request.
const maxExportDays = 366

type Interactor struct {
	svc   *service.LedgerService
	notes ledgerout.NoteStore
}

func NewInteractor(svc *service.LedgerService, notes ledgerout.NoteStore) ledgerin.Usecase {
	return &Interactor{svc: svc, notes: notes}
}

func (i *Interactor) StartSession(ctx context.Context, input ledgerdto.StartSessionInput) (ledgerdto.SessionOutput, error) {
	session, err := i.svc.StartSession(ctx, input.Type, input.AutoDetected, input.At)
	if err != nil {
		return ledgerdto.SessionOutput{}, err
	}
	return i.toOutput(session), nil
}

func (i *Interactor) StopSession(ctx context.Context, sessionID string, at time.Time) error {
	return i.svc.StopSession(ctx, sessionID, at)
}

func (i *Interactor) StartPause(ctx context.Context, sessionID string, at time.Time) (string, error) {
	return i.svc.StartPause(ctx, sessionID, at)
}

func (i *Interactor) StopPause(ctx context.Context, sessionID string, at time.Time) error {
	return i.svc.StopPause(ctx, sessionID, at)
}

func (i *Interactor) ActiveSession(ctx context.Context) (ledgerdto.SessionOutput, error) {
	session, err := i.svc.ActiveSession(ctx)
	if err != nil {
		return ledgerdto.SessionOutput{}, err
	}
	return i.toOutput(session), nil
}

func (i *Interactor) RecordOfficeEntry(ctx context.Context, sessionID string, at time.Time) error {
	return i.svc.RecordOfficeEntry(ctx, sessionID, at)
}

func (i *Interactor) RecordOfficeExit(ctx context.Context, sessionID string, at time.Time) error {
	return i.svc.RecordOfficeExit(ctx, sessionID, at)
}

func (i *Interactor) HasCompletedOfficeVisitOn(ctx context.Context, day time.Time) (bool, error) {
	return i.svc.HasCompletedOfficeVisitOn(ctx, day)
}

func (i *Interactor) HasTrackingOn(ctx context.Context, day time.Time) (bool, error) {
	return i.svc.HasTrackingOn(ctx, day)
}

func (i *Interactor) ListSessions(ctx context.Context, input ledgerdto.ListSessionsInput) ([]ledgerdto.SessionOutput, error) {
	sessions, err := i.svc.ListSessions(ctx, input.From, input.To, input.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]ledgerdto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, i.toOutput(session))
	}
	return out, nil
}

// ExportNotes writes one day note per calendar day in [From, To] that has
// at least one session. Days are taken in From's location.
func (i *Interactor) ExportNotes(ctx context.Context, input ledgerdto.ExportNotesInput) (ledgerdto.ExportNotesOutput, error) {
	if i.notes == nil {
		return ledgerdto.ExportNotesOutput{}, fmt.Errorf("note store is not configured")
	}
	from, to := input.From, input.To
	if from.IsZero() {
		from = i.svc.Now()
	}
	if to.IsZero() {
		to = from
	}
	if to.Before(from) {
		return ledgerdto.ExportNotesOutput{}, fmt.Errorf("%w: export range ends before it starts", apperrors.ErrInvalidInput)
	}
	day, _ := domain.DayBounds(from)
	_, end := domain.DayBounds(to.In(from.Location()))

	out := ledgerdto.ExportNotesOutput{Paths: []string{}}
	for n := 0; day.Before(end); n++ {
		if n >= maxExportDays {
			return out, fmt.Errorf("%w: export range exceeds %d days", apperrors.ErrInvalidInput, maxExportDays)
		}
		next := day.AddDate(0, 0, 1)
		sessions, err := i.svc.ListSessions(ctx, day, next, 0)
		if err != nil {
			return out, err
		}
		if len(sessions) > 0 {
			path, err := i.notes.SaveDay(ctx, day, sessions)
			if err != nil {
				return out, err
			}
			out.Paths = append(out.Paths, path)
		}
		day = next
	}
	return out, nil
}

func (i *Interactor) toOutput(session domain.Session) ledgerdto.SessionOutput {
	now := i.svc.Now()
	out := ledgerdto.SessionOutput{
		ID:            session.ID,
		Type:          session.Type,
		AutoDetected:  session.AutoDetected,
		StartedAt:     session.StartedAt,
		PausedMinutes: int(session.PausedDuration(now).Minutes()),
		WorkedMinutes: int(session.WorkedDuration(now).Minutes()),
	}
	if !session.Open() {
		ended := session.EndedAt
		out.EndedAt = &ended
		out.PausedMinutes = int(session.PausedDuration(ended).Minutes())
	}
	if pause, ok := session.OpenPause(); ok {
		out.OpenPauseID = pause.ID
	}
	return out
}

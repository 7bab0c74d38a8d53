package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"worktrack/internal/modules/ledger/domain"
	ledgerout "worktrack/internal/modules/ledger/port/out"
	trackingdomain "worktrack/internal/modules/tracking/domain"
	"worktrack/internal/platform/clock"
	apperrors "worktrack/internal/platform/errors"
	"worktrack/internal/platform/id"
)

type LedgerService struct {
	clock    clock.Clock
	idGen    id.Generator
	sessions ledgerout.SessionStore
	visits   ledgerout.VisitStore
}

func NewLedgerService(clock clock.Clock, idGen id.Generator, sessions ledgerout.SessionStore, visits ledgerout.VisitStore) *LedgerService {
	return &LedgerService{clock: clock, idGen: idGen, sessions: sessions, visits: visits}
}

func (s *LedgerService) Now() time.Time {
	return s.clock.Now()
}

// StartSession opens a session. A second open session is refused with
// ErrActiveSessionExists.
func (s *LedgerService) StartSession(ctx context.Context, typ string, autoDetected bool, at time.Time) (domain.Session, error) {
	if _, err := trackingdomain.ParseSessionType(typ); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	open, err := s.sessions.OpenSession(ctx)
	switch {
	case err == nil:
		return domain.Session{}, fmt.Errorf("session %s is open: %w", open.ID, apperrors.ErrActiveSessionExists)
	case !errors.Is(err, apperrors.ErrNoActiveSession):
		return domain.Session{}, err
	}
	session := domain.Session{
		ID:           s.idGen.New(),
		Type:         typ,
		AutoDetected: autoDetected,
		StartedAt:    s.orNow(at),
	}
	if err := s.sessions.InsertSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// StopSession closes the session and any pause still open on it. An end
// time before the start is clamped to the start.
func (s *LedgerService) StopSession(ctx context.Context, sessionID string, at time.Time) error {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return err
	}
	end := s.orNow(at)
	if end.Before(session.StartedAt) {
		end = session.StartedAt
	}
	if pause, ok := session.OpenPause(); ok {
		if err := s.sessions.EndPause(ctx, pause.ID, latest(end, pause.StartedAt)); err != nil {
			return err
		}
	}
	return s.sessions.EndSession(ctx, sessionID, end)
}

func (s *LedgerService) StartPause(ctx context.Context, sessionID string, at time.Time) (string, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if pause, ok := session.OpenPause(); ok {
		return "", fmt.Errorf("%w: session %s already paused by %s", apperrors.ErrInvalidInput, sessionID, pause.ID)
	}
	pause := domain.Pause{
		ID:        s.idGen.New(),
		SessionID: sessionID,
		StartedAt: latest(s.orNow(at), session.StartedAt),
	}
	if err := s.sessions.InsertPause(ctx, pause); err != nil {
		return "", err
	}
	return pause.ID, nil
}

func (s *LedgerService) StopPause(ctx context.Context, sessionID string, at time.Time) error {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return err
	}
	pause, ok := session.OpenPause()
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNoOpenPause)
	}
	return s.sessions.EndPause(ctx, pause.ID, latest(s.orNow(at), pause.StartedAt))
}

func (s *LedgerService) ActiveSession(ctx context.Context) (domain.Session, error) {
	return s.sessions.OpenSession(ctx)
}

// RecordOfficeEntry opens an office visit unless one is already open.
func (s *LedgerService) RecordOfficeEntry(ctx context.Context, sessionID string, at time.Time) error {
	if _, err := s.openSession(ctx, sessionID); err != nil {
		return err
	}
	_, open, err := s.visits.OpenVisit(ctx, sessionID)
	if err != nil || open {
		return err
	}
	at = s.orNow(at)
	return s.visits.InsertVisit(ctx, domain.OfficeVisit{ID: s.idGen.New(), SessionID: sessionID, EnteredAt: at})
}

// RecordOfficeExit closes the open visit. An exit with no recorded entry
// (the entry geofence was missed) is stored as a zero-length visit so the
// office still counts as visited.
func (s *LedgerService) RecordOfficeExit(ctx context.Context, sessionID string, at time.Time) error {
	if _, err := s.openSession(ctx, sessionID); err != nil {
		return err
	}
	at = s.orNow(at)
	visit, open, err := s.visits.OpenVisit(ctx, sessionID)
	if err != nil {
		return err
	}
	if !open {
		return s.visits.InsertVisit(ctx, domain.OfficeVisit{ID: s.idGen.New(), SessionID: sessionID, EnteredAt: at, ExitedAt: at})
	}
	return s.visits.EndVisit(ctx, visit.ID, latest(at, visit.EnteredAt))
}

func (s *LedgerService) HasCompletedOfficeVisitOn(ctx context.Context, day time.Time) (bool, error) {
	from, to := domain.DayBounds(day)
	n, err := s.visits.CountVisitsExited(ctx, from, to)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *LedgerService) HasTrackingOn(ctx context.Context, day time.Time) (bool, error) {
	from, to := domain.DayBounds(day)
	n, err := s.sessions.CountSessionsStarted(ctx, from, to)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *LedgerService) ListSessions(ctx context.Context, from, to time.Time, limit int) ([]domain.Session, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, fmt.Errorf("%w: range start must be before end", apperrors.ErrInvalidInput)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", apperrors.ErrInvalidInput)
	}
	return s.sessions.ListSessions(ctx, from, to, limit)
}

func (s *LedgerService) openSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.Open() {
		return domain.Session{}, fmt.Errorf("session %s is closed: %w", sessionID, apperrors.ErrNoActiveSession)
	}
	return session, nil
}

func (s *LedgerService) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.clock.Now()
	}
	return t
}

func latest(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

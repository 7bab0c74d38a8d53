package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"worktrack/internal/modules/ledger/domain"
	apperrors "worktrack/internal/platform/errors"
	"worktrack/internal/platform/tx"
)

// timeLayout is fixed width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteLedgerStore keeps sessions, pauses and office visits. Every query
// goes through tx.Executor so writes join a transaction opened by the
// caller.
type SQLiteLedgerStore struct {
	db *sql.DB
}

func NewSQLiteLedgerStore(ctx context.Context, db *sql.DB) (*SQLiteLedgerStore, error) {
	store := &SQLiteLedgerStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteLedgerStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  auto_detected INTEGER NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS sessions_single_open ON sessions((ended_at IS NULL)) WHERE ended_at IS NULL;
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions(started_at);
CREATE TABLE IF NOT EXISTS pauses (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES sessions(id),
  started_at TEXT NOT NULL,
  ended_at TEXT
);
CREATE INDEX IF NOT EXISTS pauses_session ON pauses(session_id);
CREATE TABLE IF NOT EXISTS office_visits (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES sessions(id),
  entered_at TEXT NOT NULL,
  exited_at TEXT
);
CREATE INDEX IF NOT EXISTS office_visits_exited_at ON office_visits(exited_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create ledger tables: %w", err)
	}
	return nil
}

func (s *SQLiteLedgerStore) InsertSession(ctx context.Context, session domain.Session) error {
	const stmt = `INSERT INTO sessions (id, type, auto_detected, started_at, ended_at) VALUES (?, ?, ?, ?, ?)`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		session.ID,
		session.Type,
		session.AutoDetected,
		formatTime(session.StartedAt),
		nullTime(session.EndedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("insert session: %w", apperrors.ErrActiveSessionExists)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteLedgerStore) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(endedAt), sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return expectRow(res, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNoActiveSession))
}

func (s *SQLiteLedgerStore) OpenSession(ctx context.Context) (domain.Session, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, type, auto_detected, started_at, ended_at FROM sessions WHERE ended_at IS NULL LIMIT 1`)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("query open session: %w", err)
	}
	return s.withPauses(ctx, session)
}

func (s *SQLiteLedgerStore) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, type, auto_detected, started_at, ended_at FROM sessions WHERE id = ?`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("query session: %w", err)
	}
	return s.withPauses(ctx, session)
}

func (s *SQLiteLedgerStore) InsertPause(ctx context.Context, pause domain.Pause) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO pauses (id, session_id, started_at, ended_at) VALUES (?, ?, ?, ?)`,
		pause.ID, pause.SessionID, formatTime(pause.StartedAt), nullTime(pause.EndedAt))
	if err != nil {
		return fmt.Errorf("insert pause: %w", err)
	}
	return nil
}

func (s *SQLiteLedgerStore) EndPause(ctx context.Context, pauseID string, endedAt time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE pauses SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(endedAt), pauseID)
	if err != nil {
		return fmt.Errorf("end pause: %w", err)
	}
	return expectRow(res, fmt.Errorf("pause %s: %w", pauseID, apperrors.ErrNoOpenPause))
}

// ListSessions returns sessions started in [from, to), newest first. Zero
// bounds are open; limit <= 0 means no limit.
func (s *SQLiteLedgerStore) ListSessions(ctx context.Context, from, to time.Time, limit int) ([]domain.Session, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, type, auto_detected, started_at, ended_at FROM sessions WHERE 1=1`)
	args := []any{}
	if !from.IsZero() {
		query.WriteString(` AND started_at >= ?`)
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		query.WriteString(` AND started_at < ?`)
		args = append(args, formatTime(to))
	}
	query.WriteString(` ORDER BY started_at DESC`)
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	// Pauses are loaded after the cursor is released: the pool holds a
	// single connection.
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close session rows: %w", err)
	}
	for idx := range sessions {
		withPauses, err := s.withPauses(ctx, sessions[idx])
		if err != nil {
			return nil, err
		}
		sessions[idx] = withPauses
	}
	return sessions, nil
}

func (s *SQLiteLedgerStore) CountSessionsStarted(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE started_at >= ? AND started_at < ?`,
		formatTime(from), formatTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *SQLiteLedgerStore) OpenVisit(ctx context.Context, sessionID string) (domain.OfficeVisit, bool, error) {
	var (
		visit     domain.OfficeVisit
		enteredAt string
	)
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, session_id, entered_at FROM office_visits WHERE session_id = ? AND exited_at IS NULL ORDER BY entered_at DESC LIMIT 1`,
		sessionID).Scan(&visit.ID, &visit.SessionID, &enteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OfficeVisit{}, false, nil
	}
	if err != nil {
		return domain.OfficeVisit{}, false, fmt.Errorf("query open visit: %w", err)
	}
	if visit.EnteredAt, err = parseTime(enteredAt); err != nil {
		return domain.OfficeVisit{}, false, err
	}
	return visit, true, nil
}

func (s *SQLiteLedgerStore) InsertVisit(ctx context.Context, visit domain.OfficeVisit) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO office_visits (id, session_id, entered_at, exited_at) VALUES (?, ?, ?, ?)`,
		visit.ID, visit.SessionID, formatTime(visit.EnteredAt), nullTime(visit.ExitedAt))
	if err != nil {
		return fmt.Errorf("insert office visit: %w", err)
	}
	return nil
}

func (s *SQLiteLedgerStore) EndVisit(ctx context.Context, visitID string, exitedAt time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE office_visits SET exited_at = ? WHERE id = ? AND exited_at IS NULL`,
		formatTime(exitedAt), visitID)
	if err != nil {
		return fmt.Errorf("end office visit: %w", err)
	}
	return expectRow(res, fmt.Errorf("office visit %s: %w", visitID, apperrors.ErrNotFound))
}

func (s *SQLiteLedgerStore) CountVisitsExited(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM office_visits WHERE exited_at >= ? AND exited_at < ?`,
		formatTime(from), formatTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count office visits: %w", err)
	}
	return n, nil
}

func (s *SQLiteLedgerStore) withPauses(ctx context.Context, session domain.Session) (domain.Session, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, session_id, started_at, ended_at FROM pauses WHERE session_id = ? ORDER BY started_at`,
		session.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("query pauses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pause     domain.Pause
			startedAt string
			endedAt   sql.NullString
		)
		if err := rows.Scan(&pause.ID, &pause.SessionID, &startedAt, &endedAt); err != nil {
			return domain.Session{}, fmt.Errorf("scan pause: %w", err)
		}
		if pause.StartedAt, err = parseTime(startedAt); err != nil {
			return domain.Session{}, err
		}
		if pause.EndedAt, err = parseNullTime(endedAt); err != nil {
			return domain.Session{}, err
		}
		session.Pauses = append(session.Pauses, pause)
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("iterate pauses: %w", err)
	}
	return session, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.Session, error) {
	var (
		session   domain.Session
		startedAt string
		endedAt   sql.NullString
	)
	if err := row.Scan(&session.ID, &session.Type, &session.AutoDetected, &startedAt, &endedAt); err != nil {
		return domain.Session{}, err
	}
	var err error
	if session.StartedAt, err = parseTime(startedAt); err != nil {
		return domain.Session{}, err
	}
	if session.EndedAt, err = parseNullTime(endedAt); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func expectRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

func parseNullTime(raw sql.NullString) (time.Time, error) {
	if !raw.Valid {
		return time.Time{}, nil
	}
	return parseTime(raw.String)
}

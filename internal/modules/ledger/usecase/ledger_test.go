package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	ledgeroutadapter "worktrack/internal/modules/ledger/adapter/out"
	ledgerdto "worktrack/internal/modules/ledger/dto"
	ledgerin "worktrack/internal/modules/ledger/port/in"
	"worktrack/internal/modules/ledger/service"
	"worktrack/internal/modules/ledger/usecase"
	"worktrack/internal/platform/clock"
	apperrors "worktrack/internal/platform/errors"
	"worktrack/internal/platform/id"
	"worktrack/internal/platform/sqlite"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, notesDir string) (ledgerin.Usecase, *clock.Fake) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := ledgeroutadapter.NewSQLiteLedgerStore(ctx, db)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	clk := clock.NewFake(monday.Add(18 * time.Hour))
	svc := service.NewLedgerService(clk, id.UUID{}, store, store)
	return usecase.NewInteractor(svc, ledgeroutadapter.NewMarkdownNoteStore(notesDir, clk)), clk
}

func track(t *testing.T, uc ledgerin.Usecase, typ string, start, end time.Time) ledgerdto.SessionOutput {
	t.Helper()
	ctx := context.Background()
	session, err := uc.StartSession(ctx, ledgerdto.StartSessionInput{Type: typ, At: start})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !end.IsZero() {
		if err := uc.StopSession(ctx, session.ID, end); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}
	return session
}

func TestSessionOutputMinutes(t *testing.T) {
	t.Parallel()
	uc, _ := newLedger(t, t.TempDir())
	ctx := context.Background()
	session := track(t, uc, "MANUAL", monday.Add(9*time.Hour), time.Time{})
	if _, err := uc.StartPause(ctx, session.ID, monday.Add(17*time.Hour)); err != nil {
		t.Fatalf("pause: %v", err)
	}

	active, err := uc.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.EndedAt != nil || active.OpenPauseID == "" {
		t.Fatalf("expected open paused session, got %#v", active)
	}
	if active.WorkedMinutes != 8*60 || active.PausedMinutes != 60 {
		t.Fatalf("unexpected minutes worked=%d paused=%d", active.WorkedMinutes, active.PausedMinutes)
	}

	if err := uc.StopSession(ctx, session.ID, monday.Add(17*time.Hour+30*time.Minute)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	listed, err := uc.ListSessions(ctx, ledgerdto.ListSessionsInput{})
	if err != nil || len(listed) != 1 {
		t.Fatalf("list: %v %v", listed, err)
	}
	if listed[0].EndedAt == nil || listed[0].PausedMinutes != 30 || listed[0].WorkedMinutes != 8*60 {
		t.Fatalf("unexpected closed session %#v", listed[0])
	}
	if _, err := uc.ActiveSession(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestExportNotesWritesOnlyDaysWithSessions(t *testing.T) {
	t.Parallel()
	notes := t.TempDir()
	uc, _ := newLedger(t, notes)
	track(t, uc, "COMMUTE_OFFICE", monday.Add(8*time.Hour), monday.Add(17*time.Hour))
	wednesday := monday.AddDate(0, 0, 2)
	track(t, uc, "HOME_OFFICE", wednesday.Add(9*time.Hour), wednesday.Add(12*time.Hour))

	out, err := uc.ExportNotes(context.Background(), ledgerdto.ExportNotesInput{From: monday, To: wednesday})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []string{
		filepath.Join(notes, "2026", "03", "2026-03-02.md"),
		filepath.Join(notes, "2026", "03", "2026-03-04.md"),
	}
	if len(out.Paths) != len(want) || out.Paths[0] != want[0] || out.Paths[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, out.Paths)
	}
	for _, path := range want {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing note %s: %v", path, err)
		}
	}
}

func TestExportNotesDefaultsToToday(t *testing.T) {
	t.Parallel()
	uc, _ := newLedger(t, t.TempDir())
	track(t, uc, "MANUAL", monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	out, err := uc.ExportNotes(context.Background(), ledgerdto.ExportNotesInput{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Paths) != 1 {
		t.Fatalf("expected today's note, got %v", out.Paths)
	}
}

func TestExportNotesRejectsBadRanges(t *testing.T) {
	t.Parallel()
	uc, _ := newLedger(t, t.TempDir())
	ctx := context.Background()
	if _, err := uc.ExportNotes(ctx, ledgerdto.ExportNotesInput{From: monday, To: monday.AddDate(0, 0, -1)}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected reversed range to be rejected, got %v", err)
	}
	if _, err := uc.ExportNotes(ctx, ledgerdto.ExportNotesInput{From: monday, To: monday.AddDate(2, 0, 0)}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected oversized range to be rejected, got %v", err)
	}
}

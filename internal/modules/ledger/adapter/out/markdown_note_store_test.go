package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ledgerout "worktrack/internal/modules/ledger/adapter/out"
	"worktrack/internal/modules/ledger/domain"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/markdown"
)

func TestSaveDayWritesFrontmatterAndTable(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	store := ledgerout.NewMarkdownNoteStore(dir, clock.NewFake(day.Add(20*time.Hour)))

	sessions := []domain.Session{
		{
			ID: "b", Type: "HOME_OFFICE", AutoDetected: true,
			StartedAt: day.Add(13 * time.Hour), EndedAt: day.Add(15 * time.Hour),
		},
		{
			ID: "a", Type: "COMMUTE_OFFICE", AutoDetected: true,
			StartedAt: day.Add(8 * time.Hour), EndedAt: day.Add(12 * time.Hour),
			Pauses: []domain.Pause{{ID: "p", SessionID: "a", StartedAt: day.Add(10 * time.Hour), EndedAt: day.Add(10*time.Hour + 30*time.Minute)}},
		},
	}
	path, err := store.SaveDay(context.Background(), day, sessions)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(dir, "2026", "03", "2026-03-02.md"); path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	note, err := markdown.Parse(string(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta, body := note.Meta, note.Body
	if meta["date"] != "2026-03-02" || meta["sessions"] != 2 || meta["worked_minutes"] != 330 {
		t.Fatalf("unexpected frontmatter %v", meta)
	}
	first := strings.Index(body, "| 08:00 | 12:00 | COMMUTE_OFFICE | 3h30m | 0h30m |")
	second := strings.Index(body, "| 13:00 | 15:00 | HOME_OFFICE | 2h00m | 0h00m |")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("sessions table missing or unordered:\n%s", body)
	}
}

func TestSaveDayKeepsUserContent(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	store := ledgerout.NewMarkdownNoteStore(t.TempDir(), clock.NewFake(day.Add(12*time.Hour)))
	ctx := context.Background()

	open := []domain.Session{{ID: "a", Type: "MANUAL", StartedAt: day.Add(9 * time.Hour)}}
	path, err := store.SaveDay(ctx, day, open)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "| 09:00 | open | MANUAL | 3h00m |") {
		t.Fatalf("open session not rendered up to now:\n%s", raw)
	}

	edited := strings.Replace(string(raw), "---\n", "---\nmood: good\n", 1) + "\nStandup ran long.\n"
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}

	closed := []domain.Session{{ID: "a", Type: "MANUAL", StartedAt: day.Add(9 * time.Hour), EndedAt: day.Add(10 * time.Hour)}}
	if _, err := store.SaveDay(ctx, day, closed); err != nil {
		t.Fatalf("second save: %v", err)
	}
	raw, _ = os.ReadFile(path)
	note, err := markdown.Parse(string(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta, body := note.Meta, note.Body
	if meta["mood"] != "good" || meta["worked_minutes"] != 60 {
		t.Fatalf("frontmatter not merged: %v", meta)
	}
	if !strings.Contains(body, "Standup ran long.") {
		t.Fatalf("user text lost:\n%s", body)
	}
	if strings.Contains(body, "| open |") || strings.Count(body, "worktrack:sessions:start") != 1 {
		t.Fatalf("managed block not replaced:\n%s", body)
	}
}

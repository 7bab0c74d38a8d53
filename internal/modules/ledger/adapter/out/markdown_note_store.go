package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"worktrack/internal/modules/ledger/domain"
	ledgerout "worktrack/internal/modules/ledger/port/out"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/markdown"
)

const sessionsBlock = "sessions"

// MarkdownNoteStore writes one markdown note per day. Regenerating a note
// replaces only the managed sessions block and the worktrack frontmatter
// keys, leaving anything the user added in place.
type MarkdownNoteStore struct {
	dir   string
	clock clock.Clock
}

func NewMarkdownNoteStore(dir string, clock clock.Clock) ledgerout.NoteStore {
	return &MarkdownNoteStore{dir: dir, clock: clock}
}

func (s *MarkdownNoteStore) SaveDay(_ context.Context, day time.Time, sessions []domain.Session) (string, error) {
	dir := filepath.Join(s.dir, day.Format("2006"), day.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	path := filepath.Join(dir, day.Format("2006-01-02")+".md")

	note := markdown.Note{
		Meta: map[string]any{},
		Body: fmt.Sprintf("# %s\n", day.Format("Monday, 2 January 2006")),
	}
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		note, err = markdown.Parse(string(existing))
		if err != nil {
			return "", fmt.Errorf("read existing note %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("read existing note: %w", err)
	}

	ordered := append([]domain.Session(nil), sessions...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StartedAt.Before(ordered[j].StartedAt) })

	var worked time.Duration
	tags := []string{}
	seen := map[string]bool{}
	lines := []string{"| Start | End | Type | Worked | Paused |", "|---|---|---|---|---|"}
	for _, session := range ordered {
		end := session.EndedAt
		endText := "open"
		if end.IsZero() {
			end = s.clock.Now()
		} else {
			endText = end.In(day.Location()).Format("15:04")
		}
		worked += session.WorkedDuration(end)
		tag := markdown.Tag(session.Type)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			session.StartedAt.In(day.Location()).Format("15:04"),
			endText,
			session.Type,
			formatMinutes(session.WorkedDuration(end)),
			formatMinutes(session.PausedDuration(end)),
		))
	}

	note.Meta["schema_version"] = domain.SchemaVersion
	note.Meta["date"] = day.Format("2006-01-02")
	note.Meta["sessions"] = len(ordered)
	note.Meta["worked_minutes"] = int(worked.Minutes())
	note.Meta["tags"] = tags

	note.SetBlock(sessionsBlock, strings.Join(lines, "\n"))
	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write day note: %w", err)
	}
	return path, nil
}

func formatMinutes(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

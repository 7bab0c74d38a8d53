package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	trackingdto "worktrack/internal/modules/tracking/dto"
)

type fakePort struct {
	sent []trackingdto.EventInput
}

func (p *fakePort) Tracking(context.Context) (trackingdto.StatusOutput, error) {
	return trackingdto.StatusOutput{State: trackingdto.StateOutput{Kind: "PAUSED", SessionID: "s-1"}}, nil
}

func (p *fakePort) SendEvent(_ context.Context, input trackingdto.EventInput) (trackingdto.StateOutput, error) {
	p.sent = append(p.sent, input)
	return trackingdto.StateOutput{Kind: "TRACKING", SessionID: "s-1"}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestPauseKeyTogglesByState(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := NewModel(port, nil)

	m, _ = update(t, m, m.loadStatus()())
	if m.status.State.Kind != "PAUSED" {
		t.Fatalf("status not loaded: %+v", m.status)
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m, _ = update(t, m, cmd())
	if len(port.sent) != 1 || port.sent[0].Type != "pause_end" {
		t.Fatalf("expected pause_end while paused, got %+v", port.sent)
	}
	if m.status.State.Kind != "TRACKING" {
		t.Fatalf("expected action result applied, got %+v", m.status.State)
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	cmd()
	if port.sent[1].Type != "pause_start" {
		t.Fatalf("expected pause_start while tracking, got %+v", port.sent)
	}
}

func TestEventsUpdateStateAndFeed(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakePort{}, nil)

	m, _ = update(t, m, eventMsg{raw: []byte(`{"type":"state","ts":"2026-03-02T08:00:00Z","state":{"kind":"TRACKING","session_type":"COMMUTE_OFFICE"}}`)})
	m, _ = update(t, m, eventMsg{raw: []byte(`{"type":"phase","ts":"2026-03-02T08:00:00Z","phase":"OUTBOUND"}`)})
	m, _ = update(t, m, eventMsg{raw: []byte(`{"type":"heartbeat","ts":"2026-03-02T08:00:10Z"}`)})

	if m.status.State.Kind != "TRACKING" || m.status.Phase != "OUTBOUND" {
		t.Fatalf("events not applied: %+v", m.status)
	}
	if len(m.lines) != 2 {
		t.Fatalf("heartbeats must not reach the feed, got %q", m.lines)
	}
	if !strings.Contains(m.View(), "OUTBOUND") {
		t.Fatal("view does not show the commute phase")
	}
}

func TestFeedKeepsLatestLines(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakePort{}, nil)
	for i := 0; i < maxFeed+5; i++ {
		m, _ = update(t, m, eventMsg{raw: []byte(fmt.Sprintf(`{"type":"custom-%d","ts":"x"}`, i))})
	}
	if len(m.lines) != maxFeed {
		t.Fatalf("expected %d lines, got %d", maxFeed, len(m.lines))
	}
	if !strings.HasSuffix(m.lines[len(m.lines)-1], fmt.Sprintf("custom-%d", maxFeed+4)) {
		t.Fatalf("newest line missing: %q", m.lines[len(m.lines)-1])
	}
}

func TestFeedCloseIsReported(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakePort{}, nil)
	m, _ = update(t, m, feedClosedMsg{err: fmt.Errorf("EOF")})
	if !m.closed || !strings.Contains(m.err, "stream closed") {
		t.Fatalf("close not reported: closed=%v err=%q", m.closed, m.err)
	}
}

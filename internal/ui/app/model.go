package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackingdto "worktrack/internal/modules/tracking/dto"
	"worktrack/internal/ui/theme"
)

const maxFeed = 12

// ─── ports ───────────────────────────────────────────────────────────────────

// TrackingPort is what the watch screen needs from the daemon.
type TrackingPort interface {
	Tracking(ctx context.Context) (trackingdto.StatusOutput, error)
	SendEvent(ctx context.Context, input trackingdto.EventInput) (trackingdto.StateOutput, error)
}

// Feed yields raw JSON events from the daemon's stream. It returns an
// error once the stream is closed.
type Feed interface {
	Next() ([]byte, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type statusLoadedMsg struct {
	status trackingdto.StatusOutput
	err    error
}

type eventMsg struct {
	raw []byte
}

type feedClosedMsg struct{ err error }

type actionDoneMsg struct {
	action string
	state  trackingdto.StateOutput
	err    error
}

type tickMsg time.Time

type wireEvent struct {
	Type     string                   `json:"type"`
	TS       string                   `json:"ts"`
	State    *trackingdto.StateOutput `json:"state,omitempty"`
	Phase    string                   `json:"phase,omitempty"`
	Reminder *struct {
		Message string `json:"message"`
	} `json:"reminder,omitempty"`
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the live watch screen: current state, commute phase and a feed
// of daemon events. s/x/p start, stop and toggle pause.
type Model struct {
	port   TrackingPort
	feed   Feed
	status trackingdto.StatusOutput
	lines  []string
	err    string
	closed bool
	now    time.Time
	width  int
}

func NewModel(port TrackingPort, feed Feed) Model {
	return Model{port: port, feed: feed, now: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatus(), m.waitForEvent(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m, m.send("start", trackingdto.EventInput{Type: "manual_start"})
		case "x":
			return m, m.send("stop", trackingdto.EventInput{Type: "manual_stop"})
		case "p":
			if m.status.State.Kind == "PAUSED" {
				return m, m.send("resume", trackingdto.EventInput{Type: "pause_end"})
			}
			return m, m.send("pause", trackingdto.EventInput{Type: "pause_start"})
		}

	case statusLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.status = msg.status

	case eventMsg:
		m.apply(msg.raw)
		return m, m.waitForEvent()

	case feedClosedMsg:
		m.closed = true
		if msg.err != nil {
			m.err = "stream closed: " + msg.err.Error()
		}

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.action + ": " + msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.status.State = msg.state

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	state := m.status.State
	header := theme.Title.Render("worktrack") + "  " + theme.StateStyle(state.Kind).Render(orDash(state.Kind))

	var body strings.Builder
	if state.SessionID != "" {
		fmt.Fprintf(&body, "%s %s\n", theme.Muted.Render("session"), state.SessionType)
	}
	if !state.StartTime.IsZero() {
		fmt.Fprintf(&body, "%s %s\n", theme.Muted.Render("running"), elapsed(m.now.Sub(state.StartTime)))
	}
	if m.status.Phase != "" && m.status.Phase != "NONE" {
		fmt.Fprintf(&body, "%s %s\n", theme.Muted.Render("phase  "), theme.PhaseStyle(m.status.Phase).Render(m.status.Phase))
	}

	feed := strings.Join(m.lines, "\n")
	if feed == "" {
		feed = theme.Muted.Render("waiting for events…")
	}
	pane := theme.Pane
	if !m.closed {
		pane = theme.PaneActive
	}
	footer := theme.Muted.Render("s start · x stop · p pause/resume · q quit")
	if m.err != "" {
		footer = theme.Hot.Render(m.err) + "\n" + footer
	}
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		body.String(),
		pane.Render(feed),
		footer,
	))
}

// apply folds a daemon event into the model and appends it to the feed.
func (m *Model) apply(raw []byte) {
	var ev wireEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		m.push(string(raw))
		return
	}
	at := ev.TS
	if t, err := time.Parse(time.RFC3339Nano, ev.TS); err == nil {
		at = t.Local().Format("15:04:05")
	}
	switch ev.Type {
	case "state":
		if ev.State != nil {
			m.status.State = *ev.State
			m.push(fmt.Sprintf("%s  state  %s", at, ev.State.Kind))
		}
	case "phase":
		m.status.Phase = ev.Phase
		m.push(fmt.Sprintf("%s  phase  %s", at, ev.Phase))
	case "reminder":
		if ev.Reminder != nil {
			m.push(fmt.Sprintf("%s  %s", at, theme.Hot.Render(ev.Reminder.Message)))
		}
	case "heartbeat":
	default:
		m.push(fmt.Sprintf("%s  %s", at, ev.Type))
	}
}

func (m *Model) push(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxFeed {
		m.lines = m.lines[len(m.lines)-maxFeed:]
	}
}

func (m Model) loadStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := m.port.Tracking(ctx)
		return statusLoadedMsg{status: status, err: err}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return func() tea.Msg {
		raw, err := m.feed.Next()
		if err != nil {
			return feedClosedMsg{err: err}
		}
		return eventMsg{raw: raw}
	}
}

func (m Model) send(action string, input trackingdto.EventInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		state, err := m.port.SendEvent(ctx, input)
		return actionDoneMsg{action: action, state: state, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"worktrack/internal/app"
	ledgerdto "worktrack/internal/modules/ledger/dto"
	signaldto "worktrack/internal/modules/signal/dto"
	trackingdto "worktrack/internal/modules/tracking/dto"
	"worktrack/internal/ui/theme"
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func RenderStatus(w io.Writer, status app.StatusResponse, now time.Time) {
	fmt.Fprintln(w, theme.Title.Render("worktrack"))
	row(w, "state", theme.StateStyle(status.Tracking.State.Kind).Render(status.Tracking.State.Kind))
	if status.Tracking.State.SessionID != "" {
		row(w, "session", status.Tracking.State.SessionID)
		row(w, "type", status.Tracking.State.SessionType)
	}
	if !status.Tracking.State.StartTime.IsZero() {
		row(w, "running for", FormatDuration(now.Sub(status.Tracking.State.StartTime)))
	}
	if status.Tracking.Phase != "" && status.Tracking.Phase != "NONE" {
		row(w, "commute phase", theme.PhaseStyle(status.Tracking.Phase).Render(status.Tracking.Phase))
	}
	row(w, "commute days", strings.Join(status.Settings.CommuteDays, " "))
	row(w, "windows", fmt.Sprintf("out %s  back %s  work %s",
		status.Settings.OutboundWindow, status.Settings.ReturnWindow, status.Settings.WorkWindow))
	row(w, "uptime", FormatDuration(time.Duration(status.UptimeSeconds)*time.Second))
	row(w, "observers", fmt.Sprintf("%d", status.Clients))
}

func RenderState(w io.Writer, state trackingdto.StateOutput) {
	line := theme.StateStyle(state.Kind).Render(state.Kind)
	if state.SessionID != "" {
		line += theme.Muted.Render(fmt.Sprintf("  %s %s", state.SessionType, state.SessionID))
	}
	fmt.Fprintln(w, line)
}

func RenderSessions(w io.Writer, sessions []ledgerdto.SessionOutput, loc *time.Location) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, theme.Muted.Render("no sessions"))
		return
	}
	total := 0
	for _, s := range sessions {
		end := "running"
		if s.EndedAt != nil {
			end = s.EndedAt.In(loc).Format("15:04")
		}
		auto := ""
		if s.AutoDetected {
			auto = theme.Muted.Render(" auto")
		}
		fmt.Fprintf(w, "%s  %s-%-7s  %-11s %6s  paused %s%s\n",
			s.StartedAt.In(loc).Format("2006-01-02"),
			s.StartedAt.In(loc).Format("15:04"),
			end,
			s.Type,
			FormatMinutes(s.WorkedMinutes),
			FormatMinutes(s.PausedMinutes),
			auto)
		total += s.WorkedMinutes
	}
	fmt.Fprintln(w, theme.Title.Render("total "+FormatMinutes(total)))
}

func RenderSignals(w io.Writer, sources []signaldto.SourceInfo) {
	if len(sources) == 0 {
		fmt.Fprintln(w, theme.Muted.Render("no signal sources registered"))
		return
	}
	for _, s := range sources {
		enabled := theme.OK.Render("enabled")
		if !s.Enabled {
			enabled = theme.Muted.Render("disabled")
		}
		fmt.Fprintf(w, "%s %s  %s  [%s]\n", theme.Title.Render(s.Name), s.Version, enabled, strings.Join(s.Capabilities, ","))
	}
}

func RenderDoctor(w io.Writer, results []signaldto.DoctorResult) {
	for _, r := range results {
		verdict := theme.OK.Render("ok")
		if r.Error != "" {
			verdict = theme.Bad.Render(r.Error)
		}
		fmt.Fprintf(w, "%s  binary=%t checksum=%t lifecycle=%t  %s\n",
			theme.Title.Render(r.Name), r.BinaryReachable, r.ChecksumValid, r.LifecycleOK, verdict)
	}
}

func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, theme.Label.Render(label)+value)
}

// FormatDuration renders d compactly, like "2h 14m" or "45s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

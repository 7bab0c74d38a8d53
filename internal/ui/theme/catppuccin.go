// Package theme holds the Catppuccin Mocha palette and the styles shared by
// the CLI output and the watch screen.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Label = lipgloss.NewStyle().Foreground(Subtext0).Width(18)
	OK    = lipgloss.NewStyle().Foreground(Green)
	Bad   = lipgloss.NewStyle().Foreground(Red)
)

// StateStyle colours a tracking state name.
func StateStyle(kind string) lipgloss.Style {
	switch kind {
	case "TRACKING":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "PAUSED":
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	default:
		return Muted
	}
}

// PhaseStyle colours a commute phase name.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "OUTBOUND", "RETURN":
		return Hot
	case "IN_OFFICE":
		return lipgloss.NewStyle().Foreground(Lavender).Bold(true)
	case "COMPLETED":
		return OK
	default:
		return Muted
	}
}

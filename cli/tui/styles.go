// Package tui provides the opt-in live dashboard for flowpilot run.
//
// Dashboard rules:
//   - opt-in only (--dashboard flag)
//   - read-only: it renders the same TickRow payloads the performance log
//     receives and never feeds back into the control loop
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for dashboard components.
var (
	// TitleStyle for the dashboard header.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for summary field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	// ValueStyle for summary field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// AppliedStyle marks ticks whose decision was applied.
	AppliedStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// SkippedStyle marks the skipped-tick counter.
	SkippedStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// FooterStyle for the key hint line.
	FooterStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

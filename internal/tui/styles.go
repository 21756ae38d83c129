package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	fgColor        = lipgloss.Color("#F9FAFB") // Light

	// Layout styles
	AppStyle    = lipgloss.NewStyle().Padding(1, 2)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)

	// List panel (left side)
	ListPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1)

	// Detail panel (right side)
	DetailPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor).Padding(1, 2)

	// Event list item styles
	SelectedItemStyle = lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true).Padding(0, 1)
	NormalItemStyle   = lipgloss.NewStyle().Foreground(fgColor).Padding(0, 1)
	DateStyle         = lipgloss.NewStyle().Foreground(secondaryColor).Width(24)
	OngoingDateStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Width(24)
	DurationStyle     = lipgloss.NewStyle().Foreground(mutedColor).Width(8)

	// Detail panel styles
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Width(14)
	ValueStyle = lipgloss.NewStyle().Foreground(fgColor)
	LinkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true)

	// Today badges in the header
	OOOTodayStyle = lipgloss.NewStyle().Background(secondaryColor).Foreground(fgColor).Bold(true).Padding(0, 1)
	InOfficeStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	// Ongoing indicator
	OngoingStyle = lipgloss.NewStyle().Background(secondaryColor).Foreground(fgColor).Bold(true).Padding(0, 1)

	// Help bar
	HelpStyle    = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	// Calendar badge
	CalendarBadgeStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theakshaypant/oooasis/internal/core"
	"github.com/theakshaypant/oooasis/internal/ooo"
	"github.com/theakshaypant/oooasis/internal/util"
)

// KeyMap defines the keybindings for the TUI
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	Quit       key.Binding
	Help       key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "down"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("ctrl+u", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("ctrl+d", "scroll down"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// Panel focus for compact mode
type PanelFocus int

const (
	FocusList PanelFocus = iota
	FocusDetail
)

// Model is the Bubble Tea model for the OOO overview
type Model struct {
	reconciler    *ooo.Reconciler
	maxResults    int
	calendar      core.Calendar
	entries       []ooo.CheckEntry
	today         ooo.TodayResult
	selectedIdx   int
	width         int
	height        int
	listWidth     int
	detailWidth   int
	contentHeight int
	keys          KeyMap
	loading       bool
	err           error
	listView      viewport.Model
	detailView    viewport.Model
	viewportReady bool
	compactMode   bool       // True when terminal is too narrow for side-by-side
	focusedPanel  PanelFocus // Which panel is shown in compact mode
	showHelp      bool       // Whether the help overlay is visible
}

// NewModel creates a new TUI model
func NewModel(rec *ooo.Reconciler, maxResults int) Model {
	return Model{
		reconciler: rec,
		maxResults: maxResults,
		keys:       DefaultKeyMap,
		loading:    true,
	}
}

// Messages
type oooLoadedMsg struct {
	calendar core.Calendar
	entries  []ooo.CheckEntry
	today    ooo.TodayResult
	err      error
}

// Commands
func (m Model) loadOOO() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		check, err := m.reconciler.Check(ctx, m.maxResults)
		if err != nil {
			return oooLoadedMsg{err: err}
		}
		today, err := m.reconciler.IsOOOToday(ctx, "")
		if err != nil {
			return oooLoadedMsg{err: err}
		}
		return oooLoadedMsg{
			calendar: check.Calendar,
			entries:  check.Entries,
			today:    today,
		}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.loadOOO()
}

// calculateLayout calculates responsive layout dimensions
func (m *Model) calculateLayout() {
	minHeight := 10

	width := m.width
	height := m.height

	if height < minHeight {
		height = minHeight
	}

	// Header: ~2 lines, Help: ~2 lines, Padding: ~2 lines
	m.contentHeight = height - 6
	if m.contentHeight < 5 {
		m.contentHeight = 5
	}

	// Compact mode threshold - if too narrow for side-by-side
	compactThreshold := 70
	m.compactMode = width < compactThreshold

	if m.compactMode {
		// Single panel mode - use full width
		m.listWidth = width - 4
		m.detailWidth = width - 4
		if m.listWidth < 20 {
			m.listWidth = 20
		}
		if m.detailWidth < 20 {
			m.detailWidth = 20
		}
	} else {
		// Side-by-side mode: the list carries fixed-width date ranges, so it
		// gets the larger share on narrow terminals
		if width < 110 {
			m.listWidth = width * 45 / 100
		} else {
			m.listWidth = width * 40 / 100
			if m.listWidth > 60 {
				m.listWidth = 60
			}
		}
		if m.listWidth < 30 {
			m.listWidth = 30
		}

		m.detailWidth = width - m.listWidth - 5
		if m.detailWidth < 30 {
			m.detailWidth = 30
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.calculateLayout()

		listViewportHeight := m.contentHeight - 4
		if listViewportHeight < 1 {
			listViewportHeight = 1
		}
		listViewportWidth := m.listWidth - 4
		if listViewportWidth < 10 {
			listViewportWidth = 10
		}

		detailViewportHeight := m.contentHeight - 4
		if detailViewportHeight < 1 {
			detailViewportHeight = 1
		}
		detailViewportWidth := m.detailWidth - 4
		if detailViewportWidth < 10 {
			detailViewportWidth = 10
		}

		if !m.viewportReady {
			m.listView = viewport.New(listViewportWidth, listViewportHeight)
			m.listView.Style = lipgloss.NewStyle()
			m.detailView = viewport.New(detailViewportWidth, detailViewportHeight)
			m.detailView.Style = lipgloss.NewStyle()
			m.viewportReady = true
		} else {
			m.listView.Width = listViewportWidth
			m.listView.Height = listViewportHeight
			m.detailView.Width = detailViewportWidth
			m.detailView.Height = detailViewportHeight
		}
		m.updateListContent()
		m.updateDetailContent()
		return m, nil

	case oooLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.calendar = msg.calendar
			m.entries = msg.entries
			m.today = msg.today
			if m.selectedIdx >= len(m.entries) {
				m.selectedIdx = 0
			}
			m.updateListContent()
			m.updateDetailContent()
			m.listView.GotoTop()
		}
		return m, nil

	case tea.KeyMsg:
		// When help overlay is shown, any key dismisses it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateListContent()
				m.scrollListToSelection()
				m.updateDetailContent()
				m.detailView.GotoTop()
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.selectedIdx < len(m.entries)-1 {
				m.selectedIdx++
				m.updateListContent()
				m.scrollListToSelection()
				m.updateDetailContent()
				m.detailView.GotoTop()
			}
			return m, nil

		case key.Matches(msg, m.keys.ScrollUp):
			if m.compactMode && m.focusedPanel == FocusList {
				m.listView.ViewUp()
			} else {
				m.detailView.ViewUp()
			}
			return m, nil

		case key.Matches(msg, m.keys.ScrollDown):
			if m.compactMode && m.focusedPanel == FocusList {
				m.listView.ViewDown()
			} else {
				m.detailView.ViewDown()
			}
			return m, nil

		case key.Matches(msg, m.keys.Tab):
			if m.focusedPanel == FocusList {
				m.focusedPanel = FocusDetail
			} else {
				m.focusedPanel = FocusList
			}
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.loadOOO()
		}
	}
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var content string
	if m.loading {
		content = lipgloss.NewStyle().
			Width(m.width-4).
			Height(m.contentHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Loading out of office events...")
	} else if m.err != nil {
		content = lipgloss.NewStyle().
			Width(m.width - 4).
			Height(m.contentHeight).
			Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.compactMode {
		// Single panel mode
		if m.showHelp {
			content = m.renderHelpPanel()
		} else if m.focusedPanel == FocusList {
			content = m.renderListPanel()
		} else {
			content = m.renderDetailPanel()
		}
	} else {
		// Side-by-side mode — help replaces the detail panel
		listPanel := m.renderListPanel()
		var rightPanel string
		if m.showHelp {
			rightPanel = m.renderHelpPanel()
		} else {
			rightPanel = m.renderDetailPanel()
		}
		content = lipgloss.JoinHorizontal(lipgloss.Top, listPanel, " ", rightPanel)
	}

	help := m.renderHelp()

	return AppStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, header, content, help),
	)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("🌴 oooasis")

	calName := m.calendar.Name
	if calName == "" {
		calName = "…"
	}
	cal := CalendarBadgeStyle.Render(calName)

	badge := ""
	if !m.loading && m.err == nil {
		badge = "  " + m.renderTodayBadge()
	}

	// In compact mode, show which panel is focused
	panelIndicator := ""
	if m.compactMode {
		label := " [Events]"
		if m.focusedPanel == FocusDetail {
			label = " [Details]"
		}
		panelIndicator = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Render(label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", cal, badge, panelIndicator)
}

func (m Model) renderTodayBadge() string {
	switch m.today.Reason {
	case ooo.TodayWeekend:
		return OOOTodayStyle.Render(fmt.Sprintf("🏖️ %s is off (weekend)", m.today.Person))
	case ooo.TodayEvent:
		return OOOTodayStyle.Render(fmt.Sprintf("🌴 %s is OOO today", m.today.Person))
	default:
		return InOfficeStyle.Render(fmt.Sprintf("☀️ %s is in today", m.today.Person))
	}
}

// updateListContent updates the list viewport with current entries
func (m *Model) updateListContent() {
	if !m.viewportReady {
		return
	}

	var items []string
	if len(m.entries) == 0 {
		items = append(items, NormalItemStyle.Render("No upcoming out of office events"))
	} else {
		for i, entry := range m.entries {
			items = append(items, m.renderListItem(entry, i == m.selectedIdx, m.listView.Width))
		}
	}

	m.listView.SetContent(strings.Join(items, "\n"))
}

// scrollListToSelection scrolls the list viewport to keep the selected item visible
func (m *Model) scrollListToSelection() {
	if !m.viewportReady || len(m.entries) == 0 {
		return
	}

	selectedTop := m.selectedIdx
	selectedBottom := selectedTop + 1

	viewTop := m.listView.YOffset
	viewBottom := viewTop + m.listView.Height

	if selectedTop < viewTop {
		m.listView.SetYOffset(selectedTop)
	}
	if selectedBottom > viewBottom {
		m.listView.SetYOffset(selectedBottom - m.listView.Height)
	}
}

func (m Model) renderListPanel() string {
	if len(m.entries) == 0 {
		return ListPanelStyle.Width(m.listWidth).Height(m.contentHeight).Render(
			lipgloss.NewStyle().
				Foreground(mutedColor).
				Render("No upcoming out of office events"),
		)
	}

	scrollInfo := ""
	if m.viewportReady && m.listView.TotalLineCount() > m.listView.Height {
		scrollInfo = lipgloss.NewStyle().
			Foreground(mutedColor).
			Render(fmt.Sprintf(" (%d/%d)", m.selectedIdx+1, len(m.entries)))
	}

	header := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		Render("Upcoming") + scrollInfo

	content := m.listView.View()

	return ListPanelStyle.Width(m.listWidth).Height(m.contentHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, content),
	)
}

func (m Model) renderListItem(entry ooo.CheckEntry, selected bool, maxWidth int) string {
	dates := core.FormatDate(entry.Start)
	if !entry.Start.Equal(entry.End) {
		dates += " → " + core.FormatDate(entry.End)
	}

	ongoing := entryOngoing(entry, time.Now())

	var dateStyled string
	if ongoing {
		dateStyled = OngoingDateStyle.Render(dates)
	} else {
		dateStyled = DateStyle.Render(dates)
	}

	// Date range (24) + duration (6) + spaces
	titleWidth := maxWidth - 33
	if titleWidth < 8 {
		titleWidth = 8
	}
	title := util.TruncateText(entry.Summary, titleWidth)

	duration := DurationStyle.Render(formatDays(entryDays(entry)))

	line := fmt.Sprintf("%s %s %s", dateStyled, duration, title)
	if ongoing {
		line += " 🌴"
	}

	if selected {
		return SelectedItemStyle.Render(line)
	}
	return NormalItemStyle.Render(line)
}

// updateDetailContent updates the viewport with the selected entry's details
func (m *Model) updateDetailContent() {
	if len(m.entries) == 0 || !m.viewportReady {
		return
	}

	entry := m.entries[m.selectedIdx]
	width := m.detailView.Width
	var lines []string

	lines = append(lines, TitleStyle.Render(ansi.Wordwrap(entry.Summary, width, "")))
	lines = append(lines, "")

	lines = append(lines, renderField("📅 Calendar", m.calendar.Name))
	lines = append(lines, renderField("🗓  From", entry.Start.Format("Mon, Jan 2 2006")))
	lines = append(lines, renderField("🗓  To", entry.End.Format("Mon, Jan 2 2006")))
	lines = append(lines, renderField("⏱  Length", formatDays(entryDays(entry))))
	if entry.EventType != "" {
		lines = append(lines, renderField("🏷  Type", entry.EventType))
	}

	now := time.Now()
	today := core.DateOf(now)
	lines = append(lines, "")
	if entryOngoing(entry, now) {
		left := int(entry.End.Sub(today).Hours()/24) + 1
		lines = append(lines, OngoingStyle.Render(fmt.Sprintf("🌴 ONGOING • %s left", formatDays(left))))
	} else if entry.Start.After(today) {
		until := int(entry.Start.Sub(today).Hours() / 24)
		lines = append(lines, lipgloss.NewStyle().
			Foreground(accentColor).
			Render(fmt.Sprintf("⏳ Starts in %s", formatDays(until))))
	} else {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			Render("✓ Ended"))
	}

	if entry.URL != "" {
		labelWidth := lipgloss.Width(LabelStyle.Render("🔗 Open")) + 1
		displayURL := util.TruncateText(entry.URL, width-labelWidth)
		lines = append(lines, renderField("🔗 Open", util.MakeHyperlink(entry.URL, LinkStyle.Render(displayURL))))
	}

	if entry.EventID != "" {
		lines = append(lines, "")
		lines = append(lines, CalendarBadgeStyle.Render(util.TruncateText("id: "+entry.EventID, width)))
	}

	m.detailView.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderDetailPanel() string {
	if len(m.entries) == 0 {
		return DetailPanelStyle.Width(m.detailWidth).Height(m.contentHeight).Render(
			lipgloss.NewStyle().
				Foreground(mutedColor).
				Render("No event selected"),
		)
	}

	scrollInfo := ""
	if m.viewportReady && m.detailView.TotalLineCount() > m.detailView.Height {
		scrollPct := int(m.detailView.ScrollPercent() * 100)
		scrollInfo = lipgloss.NewStyle().
			Foreground(mutedColor).
			Render(fmt.Sprintf(" (%d%%)", scrollPct))
	}

	header := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		Render("Details") + scrollInfo

	content := m.detailView.View()

	return DetailPanelStyle.Width(m.detailWidth).Height(m.contentHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", content),
	)
}

func (m Model) renderHelp() string {
	keys := []string{
		HelpKeyStyle.Render("↑/↓") + " nav",
		HelpKeyStyle.Render("tab") + " panel",
		HelpKeyStyle.Render("r") + " refresh",
		HelpKeyStyle.Render("q") + " quit",
	}

	fullLine := strings.Join(keys, "  •  ")

	maxWidth := m.width - 4
	if lipgloss.Width(fullLine) > maxWidth {
		return HelpStyle.Render(HelpKeyStyle.Render("?") + " help")
	}

	return HelpStyle.Render(fullLine)
}

func (m Model) renderHelpPanel() string {
	header := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		Render("Keyboard Shortcuts")

	lines := []string{
		"",
		HelpKeyStyle.Render("  ↑ / k      ") + " Move up",
		HelpKeyStyle.Render("  ↓ / j      ") + " Move down",
		HelpKeyStyle.Render("  ctrl+u/d   ") + " Scroll detail panel",
		HelpKeyStyle.Render("  tab        ") + " Switch panel",
		HelpKeyStyle.Render("  r          ") + " Refresh",
		HelpKeyStyle.Render("  q / ctrl+c ") + " Quit",
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("  Press any key to close"),
	}

	body := strings.Join(lines, "\n")

	panelWidth := m.detailWidth
	if m.compactMode {
		panelWidth = m.listWidth
	}

	return DetailPanelStyle.Width(panelWidth).Height(m.contentHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, body),
	)
}

// Helper functions
func renderField(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

// entryDays returns the inclusive length of the entry in days.
func entryDays(entry ooo.CheckEntry) int {
	return int(entry.End.Sub(entry.Start).Hours()/24) + 1
}

func entryOngoing(entry ooo.CheckEntry, now time.Time) bool {
	today := core.DateOf(now)
	return !today.Before(entry.Start) && !today.After(entry.End)
}

func formatDays(days int) string {
	if days < 0 {
		days = 0
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

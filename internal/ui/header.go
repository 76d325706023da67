package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/apifolio/folio/internal/state"
)

// renderHeader renders the status bar: logo, live health, view and theme.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render("folio")}

	switch {
	case m.health == nil:
		parts = append(parts, styles.FaintText.Render("health: n/a"))
	case m.probe.LastCheck.IsZero():
		parts = append(parts, styles.WarningText.Render("Checking API..."))
	case m.probe.Status == state.StatusOnline:
		parts = append(parts,
			styles.SuccessText.Render("● ONLINE"),
			styles.Text.Render(fmt.Sprintf("%dms", m.probe.ResponseTimeMs)),
			styles.MutedText.Render(fmt.Sprintf("%.1f%% uptime", m.probe.UptimePercent)),
		)
	default:
		parts = append(parts,
			styles.DangerText.Render("● OFFLINE"),
			styles.MutedText.Render(fmt.Sprintf("%.1f%% uptime", m.probe.UptimePercent)),
		)
	}
	if !m.probe.LastCheck.IsZero() {
		parts = append(parts, styles.FaintText.Render(m.probe.LastCheck.Format("15:04:05")))
	}
	if m.snapshot.IsLoading {
		parts = append(parts, styles.WarningText.Render("loading"))
	}
	parts = append(parts,
		styles.AccentText.Render(m.currentView.String()),
		styles.MutedText.Render(string(m.snapshot.Theme)),
	)

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderFooter shows the store error, the last notice, or key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var content string
	switch {
	case m.snapshot.Error != nil:
		content = styles.DangerText.Render("Error: " + *m.snapshot.Error)
	case m.notice != "":
		content = styles.Text.Render(m.notice)
	default:
		hints := []string{"j/k move", "enter select", "f filter", "tab views", "T theme", "r check", "? help", "e quit"}
		content = strings.Join(hints, " • ")
	}
	return styles.Footer.Width(m.width).Render(content)
}

func (m Model) renderMain() string {
	var body string
	switch m.currentView {
	case ViewDetail:
		body = m.renderDetail()
	case ViewLogs:
		body = m.renderLogs()
	default:
		body = m.renderProjects()
	}
	body = lipgloss.NewStyle().Width(m.width).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderProjects renders one card per API with a status badge.
func (m Model) renderProjects() string {
	styles := m.theme.Styles()
	visible := m.visibleAPIs()

	var filter string
	if m.category != "" {
		filter = styles.AccentText.Render("Category: "+m.category) + "\n"
	}
	if len(visible) == 0 {
		if m.category != "" {
			return filter + styles.MutedText.Render("No APIs in this category.")
		}
		return styles.MutedText.Render("No APIs in the catalog.")
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}

	cards := make([]string, 0, len(visible))
	for i, api := range visible {
		style := styles.Card
		if i == m.cursor {
			style = styles.SelectedCard
		}

		title := api.Name
		if title == "" {
			title = api.ID
		}
		if m.snapshot.SelectedAPI != nil && *m.snapshot.SelectedAPI == api.ID {
			title = "★ " + title
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			styles.StatusStyle(api.Status).Render(strings.ToUpper(string(api.Status))),
			" ",
			title,
		)

		var meta []string
		if p, ok := m.catalog.Lookup(api.ID); ok && p.Category != "" {
			meta = append(meta, p.Category)
		}
		if api.ResponseTimeMs > 0 {
			meta = append(meta, fmt.Sprintf("%dms", api.ResponseTimeMs))
		}
		if api.UptimePercent > 0 {
			meta = append(meta, fmt.Sprintf("%.1f%%", api.UptimePercent))
		}
		if len(meta) > 0 {
			line += "\n" + styles.MutedText.Render(strings.Join(meta, " · "))
		}
		cards = append(cards, style.Width(width).Render(line))
	}
	return filter + lipgloss.JoinVertical(lipgloss.Left, cards...)
}

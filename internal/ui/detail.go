package ui

import (
	"fmt"
	"strings"
)

// renderDetail shows the selected project's catalog entry.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()

	api, ok := m.snapshot.Selected()
	if !ok {
		return styles.MutedText.Render("No API selected. Press enter on a project.")
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(api.Name))
	b.WriteString("  ")
	b.WriteString(styles.StatusStyle(api.Status).Render(strings.ToUpper(string(api.Status))))
	b.WriteString("\n\n")

	p, ok := m.catalog.Lookup(api.ID)
	if !ok {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("No catalog entry for %q.", api.ID)))
		return b.String()
	}

	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.MutedText.Width(16).Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Category", p.Category)
	if p.ResponseTimeMs > 0 {
		field("Response time", fmt.Sprintf("%dms", p.ResponseTimeMs))
	}
	field("Tech", strings.Join(p.Tech, ", "))
	field("Docs", p.Documentation)
	field("GitHub", p.GitHub)

	if len(p.Features) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Features"))
		b.WriteString("\n")
		for _, f := range p.Features {
			b.WriteString("  • ")
			b.WriteString(f)
			b.WriteString("\n")
		}
	}
	return b.String()
}

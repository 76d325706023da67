package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apifolio/folio/internal/logtail"
)

// readLogs loads the tail of the log file off the UI goroutine.
func (m Model) readLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, logLines)
		return logsMsg{lines: lines, err: err}
	}
}

func (m *Model) setLogs(msg logsMsg) {
	m.logErr = msg.err
	if msg.err != nil {
		return
	}
	styles := m.theme.Styles()
	rendered := make([]string, 0, len(msg.lines))
	for _, e := range logtail.ParseLines(msg.lines) {
		line := e.Format()
		switch e.Level {
		case "ERROR":
			line = styles.DangerText.Render(line)
		case "WARN":
			line = styles.WarningText.Render(line)
		case "DEBUG":
			line = styles.FaintText.Render(line)
		}
		rendered = append(rendered, line)
	}
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(strings.Join(rendered, "\n"))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	switch {
	case m.logErr != nil:
		return styles.DangerText.Render("Cannot read log: " + m.logErr.Error())
	case m.logPath == "":
		return styles.MutedText.Render("No log file configured.")
	case m.logViewport.TotalLineCount() == 0:
		return styles.MutedText.Render("Log is empty: " + m.logPath)
	}
	return m.logViewport.View()
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/salat/internal/logtail"
)

const (
	logTailLines  = 200
	logPaneHeight = 10
)

type logLinesMsg []string

type logErrorMsg struct{ err error }

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 1), logPaneHeight)
}

// refreshLogs reads the log tail in the background.
func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(logtail.FormatLines(lines))
	}
}

func (m *Model) handleLogLines(lines logLinesMsg) {
	content := strings.Join(lines, "\n")
	if content == "" {
		content = "(log is empty)"
	}
	m.logViewport.SetContent(content)
	m.logViewport.GotoBottom()
}

func (m Model) renderLogs() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Width(m.width)
	title := m.theme.Styles().AccentText.Render("log  " + truncate(m.logPath, max(m.width-8, 10)))
	return box.Render(title + "\n" + m.logViewport.View())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderList renders the prayer rows with the selection highlighted.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	prayers := m.snapshot.Prayers

	if len(prayers) == 0 {
		msg := "No prayer times"
		if m.snapshot.Loading {
			msg = "Fetching prayer times…"
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(height).
			Padding(1, 2).
			Render(styles.MutedText.Render(msg))
	}

	twelve := m.prefs.Uses12HourClock()
	rows := make([]string, 0, len(prayers))
	for i, entry := range prayers {
		mark := "[ ]"
		markStyle := styles.FaintText
		if entry.Checked {
			mark = "[x]"
			markStyle = styles.SuccessText
		}
		text := fmt.Sprintf("%-10s %s", entry.Name, formatTime(entry.Time, twelve))

		if i == m.selectedRow {
			row := m.theme.Styles().Selected.Width(max(m.width-4, 0)).
				Render(mark + "  " + text)
			rows = append(rows, row)
			continue
		}
		rows = append(rows, markStyle.Render(mark)+"  "+styles.Text.Render(text))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))
}

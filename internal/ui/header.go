package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/salat/internal/prayer"
)

// renderHeader renders the two header lines: the day with the location and
// the completion count with loading and error state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	day := m.snapshot.CurrentDay
	label := "…"
	if !day.IsZero() {
		label = dayLabel(day, m.now())
	}

	top := []string{
		bg.Render("salat", styles.Logo),
		bg.Render(label, styles.Text.Bold(true)),
	}
	if loc := m.snapshot.Location; loc != nil {
		top = append(top, bg.Render(loc.String(), styles.FaintText))
	}

	bottom := []string{
		bg.Render(fmt.Sprintf("Completed Prayers: %d/%d", m.snapshot.Completed(), prayer.Count), styles.MutedText),
	}
	if m.snapshot.Loading {
		bottom = append(bottom, bg.Render(m.spinner.View()+" Loading", styles.WarningText))
	}
	if m.snapshot.HasError() {
		bottom = append(bottom, bg.Render(truncate(m.snapshot.ErrorMsg, max(m.width-40, 10)), styles.DangerText))
	}

	line := styles.Header.Width(m.width)
	return lipgloss.JoinVertical(lipgloss.Left,
		line.Render(bg.Join(top, sep)),
		line.Render(bg.Join(bottom, sep)),
	)
}

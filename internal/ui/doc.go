// Package ui provides the salat terminal interface built on Bubble Tea.
//
// # Overview
//
// The interface shows one day of prayers: a two line header with the day
// ("Today" or the long date), the resolved location, the completion count
// and any error, then the five prayers with their times and check marks.
// A footer lists the most used keys.
//
// The Model never calls the network itself. Every action (toggle, day
// navigation, reload) runs as a tea.Cmd against the Session, and the view
// is rebuilt from state.Snapshot on a poll tick and after each action. A
// spinner runs while the snapshot reports Loading.
//
// # Files
//
//   - app.go: Model, Update loop, commands and Run
//   - header.go, list.go: rendering of the day
//   - logs.go: optional log pane fed by logtail
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: palettes and Lipgloss helpers
//   - format.go: 12h/24h time and day label formatting
//
// # Key Bindings
//
//   - j/k or arrows: Move the selection
//   - space/enter: Mark the selected prayer as prayed (or not)
//   - h/l or left/right: Previous/next day
//   - r: Reload the day (the only retry after a failed fetch besides navigation)
//   - c: Switch between 24h and 12h clock (saved to prefs)
//   - T: Cycle theme (saved to prefs)
//   - L: Toggle the log pane
//   - ?: Help overlay
//   - q or Ctrl+C: Quit
package ui

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/prefs"
	"github.com/five82/salat/internal/state"
)

// Session is the part of the sync session the UI drives.
type Session interface {
	PreviousDay() error
	NextDay() error
	Reload() error
	Toggle(id int) error
	Snapshot() state.Snapshot
}

// Options configures the UI.
type Options struct {
	Session   Session
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	Now       func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	session   Session
	prefsPath string
	logPath   string
	pollTick  time.Duration
	now       func() time.Time

	prefs   prefs.Prefs
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int
	ready  bool

	snapshot    state.Snapshot
	selectedRow int

	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 250 * time.Millisecond
	}

	p := opts.Prefs
	if p == (prefs.Prefs{}) {
		p = prefs.Defaults()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		session:   opts.Session,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		now:       now,
		prefs:     p,
		theme:     GetTheme(p.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.logViewport.Width = max(m.width-2, 1)
		m.help.Width = m.width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			log.Debug().Err(msg.err).Str("action", msg.action).Msg("ui action returned error")
		}
		if m.session == nil {
			return m, nil
		}
		return m, fetchSnapshotCmd(m.session)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case logErrorMsg:
		log.Debug().Err(msg.err).Msg("log pane refresh failed")
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.showLogs = false
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleClock):
		if m.prefs.Uses12HourClock() {
			m.prefs.Clock = prefs.Clock24
		} else {
			m.prefs.Clock = prefs.Clock12
		}
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(m.snapshot.Prayers)-1 {
			m.selectedRow++
		}
		return m, nil
	}

	if m.session == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.selectedRow >= len(m.snapshot.Prayers) {
			return m, nil
		}
		id := m.snapshot.Prayers[m.selectedRow].ID
		return m, m.action("toggle", func() error { return m.session.Toggle(id) })

	case key.Matches(msg, m.keys.PrevDay):
		return m, m.action("previous", m.session.PreviousDay)

	case key.Matches(msg, m.keys.NextDay):
		return m, m.action("next", m.session.NextDay)

	case key.Matches(msg, m.keys.Reload):
		return m, m.action("reload", m.session.Reload)
	}

	return m, nil
}

// action runs fn off the update loop and fetches a snapshot right away so
// the loading state shows while fn is still running.
func (m Model) action(name string, fn func() error) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return actionDoneMsg{action: name, err: fn()} },
		fetchSnapshotCmd(m.session),
	)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		log.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	if snap.CurrentDay != m.snapshot.CurrentDay {
		m.selectedRow = 0
	}
	m.snapshot = snap
	if m.selectedRow >= len(snap.Prayers) {
		m.selectedRow = max(len(snap.Prayers)-1, 0)
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session))
	}
	if m.showLogs {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	listHeight := m.height - 3
	if m.showLogs {
		listHeight -= logPaneHeight + 2
	}
	b.WriteString(m.renderList(max(listHeight, 1)))
	b.WriteString("\n")

	if m.showLogs {
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
	}

	b.WriteString(m.theme.Styles().Footer.Width(m.width).Render(m.help.View(m.keys)))
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionDoneMsg struct {
	action string
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(s.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

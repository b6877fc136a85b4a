package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"talkboard/log"
	"talkboard/panel"
	"talkboard/render"
	"talkboard/speech"
)

// TUI message types
type outcomeMsg speech.Outcome

const maxVisibleShortcuts = 5

type tuiModel struct {
	ctx        context.Context
	ctl        *panel.Controller
	thresholds render.Thresholds
	input      textinput.Model
	drawerOpen bool
	selected   int
	status     string
	width      int
	height     int
}

var (
	drawerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("241"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	listenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func newTUIModel(ctx context.Context, ctl *panel.Controller, th render.Thresholds) tuiModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = ctl.Strings().InputPlaceholder
	in.SetValue(ctl.Board().State().CurrentText)
	in.CursorEnd()
	in.Focus()
	return tuiModel{
		ctx:        ctx,
		ctl:        ctl,
		thresholds: th,
		input:      in,
		drawerOpen: true,
	}
}

func NewTUIProgram(ctx context.Context, ctl *panel.Controller, th render.Thresholds) *tea.Program {
	return tea.NewProgram(newTUIModel(ctx, ctl, th), tea.WithAltScreen(), tea.WithContext(ctx))
}

// runTUI blocks until the user quits or ctx is cancelled.
func runTUI(ctx context.Context, ctl *panel.Controller, th render.Thresholds) error {
	_, err := NewTUIProgram(ctx, ctl, th).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// waitForOutcome blocks until the capture reports a finished attempt.
func waitForOutcome(c *speech.Capture) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(<-c.Outcomes())
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForOutcome(m.ctl.Capture()))
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)

	case outcomeMsg:
		o := speech.Outcome(msg)
		m.ctl.HandleOutcome(o)
		if o.Err != nil && !errors.Is(o.Err, speech.ErrNoSpeech) {
			m.status = o.Err.Error()
		} else {
			m.status = ""
		}
		m.sync()
		return m, waitForOutcome(m.ctl.Capture())

	case tea.KeyMsg:
		return m.handleKey(msg)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if !m.drawerOpen {
			return m, tea.Quit
		}
		m.drawerOpen = false
	case "tab":
		m.drawerOpen = !m.drawerOpen
	case "ctrl+s":
		m.ctl.SaveShortcut()
		m.selected = 0
	case "ctrl+l":
		m.ctl.Clear()
	case "ctrl+r":
		m.ctl.Rotate()
	case "ctrl+t":
		if err := m.ctl.NextTheme(); err != nil {
			log.Warnf("theme: %v", err)
		}
	case "ctrl+g":
		m.ctl.NextLanguage()
		m.selected = 0
		m.input.Placeholder = m.ctl.Strings().InputPlaceholder
	case "ctrl+o":
		if err := m.ctl.Speak(m.ctx); err != nil && !errors.Is(err, speech.ErrUnsupported) {
			m.status = err.Error()
		}
	case "up", "down", "enter", "ctrl+d":
		// the list is only operable while it is visible
		if m.drawerOpen {
			m.shortcutKey(msg.String())
		}
	case "ctrl+y":
		if err := m.ctl.CopyPhrase(); err != nil {
			log.Warnf("%v", err)
			m.status = err.Error()
		} else {
			m.status = m.ctl.Strings().Copy + " ✓"
		}
	default:
		if !m.drawerOpen {
			return m, nil
		}
		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.ctl.SetText(v)
		}
		m.sync()
		return m, cmd
	}
	m.sync()
	return m, nil
}

func (m *tuiModel) shortcutKey(k string) {
	list := m.ctl.Board().Shortcuts()
	switch k {
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(list)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(list) {
			m.ctl.ShowShortcut(list[m.selected].ID)
		}
	case "ctrl+d":
		if m.selected < len(list) {
			m.ctl.DeleteShortcut(list[m.selected].ID)
		}
	}
}

// sync pulls external phrase changes into the input field and keeps the
// shortcut cursor on the list.
func (m *tuiModel) sync() {
	s := m.ctl.Board().State()
	if m.input.Value() != s.CurrentText {
		m.input.SetValue(s.CurrentText)
		m.input.CursorEnd()
	}
	if n := len(s.ActiveShortcuts()); m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var drawer string
	if m.drawerOpen {
		drawer = drawerStyle.Width(m.width).Render(m.drawerView())
	}
	rows := m.height - lipgloss.Height(drawer)
	if drawer == "" {
		rows = m.height
	}
	if rows < 1 {
		return drawer
	}

	vp := render.TerminalViewport(m.width, rows)
	boardView := render.Terminal(render.ComputeState(m.ctl.Board().State(), vp, m.thresholds))
	if drawer == "" {
		return boardView
	}
	return lipgloss.JoinVertical(lipgloss.Left, boardView, drawer)
}

func (m tuiModel) drawerView() string {
	state := m.ctl.Board().State()
	s := m.ctl.Strings()

	var lines []string
	header := titleStyle.Render(s.Title) + dimStyle.Render(fmt.Sprintf("  %s: %s  %s: %s",
		s.Language, state.Language.Label(), s.Colors, m.ctl.ThemeLabel()))
	if state.IsRotated {
		header += dimStyle.Render("  ⟳ " + s.Rotate)
	}
	lines = append(lines, header, m.input.View())

	voice := m.ctl.VoiceLabel()
	switch m.ctl.Voice() {
	case panel.VoiceListening:
		voice = listenStyle.Render("● " + voice)
	case panel.VoiceError:
		voice = errorStyle.Render("⚠ " + voice)
	default:
		voice = dimStyle.Render("○ " + voice)
	}
	if m.status != "" {
		voice += "  " + dimStyle.Render(m.status)
	}
	lines = append(lines, voice, dimStyle.Render(s.Shortcuts))

	shortcuts := state.ActiveShortcuts()
	if len(shortcuts) == 0 {
		lines = append(lines, dimStyle.Render("  "+s.NoShortcuts))
	}
	start := max(0, min(m.selected-maxVisibleShortcuts/2, len(shortcuts)-maxVisibleShortcuts))
	for i := start; i < len(shortcuts) && i < start+maxVisibleShortcuts; i++ {
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("▶ "+shortcuts[i].Text))
		} else {
			lines = append(lines, "  "+shortcuts[i].Text)
		}
	}

	help := fmt.Sprintf("tab %s · ^s %s · ^l %s · ^r %s · ^t %s · ^g %s · ^o %s · ^y %s",
		s.ToolsLabel, s.AddShortcut, s.Clear, s.Rotate, s.Colors, s.Language, s.VoicePrompt, s.Copy)
	lines = append(lines, dimStyle.Render(help))
	return strings.Join(lines, "\n")
}

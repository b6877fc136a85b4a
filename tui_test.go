package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"talkboard/board"
	"talkboard/config"
	"talkboard/locale"
	"talkboard/panel"
	"talkboard/render"
	"talkboard/speech"
)

func newTestModel(t *testing.T, rec speech.Recognizer) (tuiModel, *string) {
	t.Helper()
	tbl := locale.Default()
	b := board.New(board.Defaults(tbl, board.DefaultText))
	var copied string
	ctl := panel.New(b, speech.NewCapture(rec), tbl, config.DefaultThemes(), func(s string) error {
		copied = s
		return nil
	})
	m := newTUIModel(context.Background(), ctl, render.DefaultThresholds)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	return m, &copied
}

func update(t *testing.T, m tuiModel, msg tea.Msg) tuiModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(tuiModel)
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(t *testing.T, m tuiModel, s string) tuiModel {
	t.Helper()
	for _, r := range s {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTypingEditsPhrase(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.input.Value() != "Hello" {
		t.Fatalf("input = %q, want the current phrase", m.input.Value())
	}
	m = typeText(t, m, "!")
	if got := m.ctl.Board().State().CurrentText; got != "Hello!" {
		t.Errorf("CurrentText = %q, want Hello!", got)
	}
}

func TestTypingIgnoredWithDrawerClosed(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, key(tea.KeyTab))
	if m.drawerOpen {
		t.Fatal("tab did not close the drawer")
	}
	m = typeText(t, m, "x")
	if got := m.ctl.Board().State().CurrentText; got != "Hello" {
		t.Errorf("CurrentText = %q, want unchanged", got)
	}
}

func TestShortcutKeysIgnoredWithDrawerClosed(t *testing.T) {
	m, _ := newTestModel(t, nil)
	before := m.ctl.Board().Shortcuts()
	m = update(t, m, key(tea.KeyTab))

	for _, k := range []tea.KeyType{tea.KeyDown, tea.KeyEnter, tea.KeyCtrlD, tea.KeyUp} {
		m = update(t, m, key(k))
	}
	if got := m.ctl.Board().Shortcuts(); len(got) != len(before) {
		t.Errorf("%d shortcuts after keys with the drawer closed, want %d", len(got), len(before))
	}
	if got := m.ctl.Board().State().CurrentText; got != "Hello" {
		t.Errorf("CurrentText = %q, want unchanged", got)
	}
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0", m.selected)
	}
}

func TestSaveClearAndShowShortcut(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, key(tea.KeyCtrlL))
	if m.input.Value() != "" || m.ctl.Board().State().CurrentText != "" {
		t.Fatalf("ctrl+l left %q / %q", m.input.Value(), m.ctl.Board().State().CurrentText)
	}
	m = typeText(t, m, "Water please")
	m = update(t, m, key(tea.KeyCtrlS))

	list := m.ctl.Board().Shortcuts()
	if list[0].Text != "Water please" {
		t.Fatalf("first shortcut = %q", list[0].Text)
	}

	m = update(t, m, key(tea.KeyDown))
	m = update(t, m, key(tea.KeyEnter))
	if got := m.ctl.Board().State().CurrentText; got != list[1].Text {
		t.Errorf("CurrentText = %q, want %q", got, list[1].Text)
	}
	if m.input.Value() != list[1].Text {
		t.Errorf("input = %q, not synced with the board", m.input.Value())
	}

	m = update(t, m, key(tea.KeyUp))
	m = update(t, m, key(tea.KeyCtrlD))
	if got := m.ctl.Board().Shortcuts(); len(got) != len(list)-1 || got[0].ID != list[1].ID {
		t.Errorf("ctrl+d did not delete the selected shortcut")
	}
}

func TestRotateThemeLanguage(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, key(tea.KeyCtrlR))
	if !m.ctl.Board().State().IsRotated {
		t.Error("ctrl+r did not rotate")
	}
	m = update(t, m, key(tea.KeyCtrlT))
	if m.ctl.ThemeLabel() != "Modern" {
		t.Errorf("theme = %q, want Modern", m.ctl.ThemeLabel())
	}
	m = update(t, m, key(tea.KeyCtrlG))
	if m.ctl.Board().State().Language != locale.Japanese {
		t.Errorf("language = %q, want ja", m.ctl.Board().State().Language)
	}
	if m.input.Placeholder != locale.Default().Strings(locale.Japanese).InputPlaceholder {
		t.Errorf("placeholder = %q, not localized", m.input.Placeholder)
	}
	if !strings.Contains(m.View(), "日本語") {
		t.Error("drawer does not show the language label")
	}
}

func TestSpeechOutcomeUpdatesInput(t *testing.T) {
	rec := speech.NewFakeRecognizer()
	m, _ := newTestModel(t, rec)
	m = update(t, m, key(tea.KeyCtrlO))
	if m.ctl.Capture().State() != speech.Listening {
		t.Fatalf("state = %v, want listening", m.ctl.Capture().State())
	}
	rec.Session(0).Resolve("Good morning")
	o := <-m.ctl.Capture().Outcomes()

	next, cmd := m.Update(outcomeMsg(o))
	m = next.(tuiModel)
	if cmd == nil {
		t.Error("outcome handling must keep waiting for outcomes")
	}
	if m.input.Value() != "Good morning" || m.ctl.Board().State().CurrentText != "Good morning" {
		t.Errorf("input %q, board %q", m.input.Value(), m.ctl.Board().State().CurrentText)
	}
}

func TestSpeakTwiceCancels(t *testing.T) {
	rec := speech.NewFakeRecognizer()
	m, _ := newTestModel(t, rec)
	m = update(t, m, key(tea.KeyCtrlO))
	m = update(t, m, key(tea.KeyCtrlO))
	if m.ctl.Capture().State() != speech.Idle {
		t.Errorf("state = %v, want idle", m.ctl.Capture().State())
	}
	if !rec.Session(0).Cancelled() {
		t.Error("second ctrl+o did not cancel the attempt")
	}
}

func TestCopyStatus(t *testing.T) {
	m, copied := newTestModel(t, nil)
	m = update(t, m, key(tea.KeyCtrlY))
	if *copied != "Hello" {
		t.Errorf("copied %q", *copied)
	}
	if !strings.Contains(m.status, "Copy") {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, nil)

	next, cmd := m.Update(key(tea.KeyEsc))
	m = next.(tuiModel)
	if isQuit(cmd) || m.drawerOpen {
		t.Fatal("esc with the drawer open should only close it")
	}
	if _, cmd = m.Update(key(tea.KeyEsc)); !isQuit(cmd) {
		t.Error("esc with the drawer closed should quit")
	}
	if _, cmd = m.Update(key(tea.KeyCtrlC)); !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
}

func TestViewFillsWindow(t *testing.T) {
	tbl := locale.Default()
	ctl := panel.New(board.New(board.Defaults(tbl, "Hi")), nil, tbl, nil, nil)
	m := newTUIModel(context.Background(), ctl, render.DefaultThresholds)
	if m.View() != "Loading..." {
		t.Errorf("View before size = %q", m.View())
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if h := lipgloss.Height(m.View()); h != 40 {
		t.Errorf("view height with drawer = %d, want 40", h)
	}
	if !strings.Contains(m.View(), "N/A") {
		t.Error("drawer should mark speech as unavailable")
	}

	m = update(t, m, key(tea.KeyTab))
	if h := lipgloss.Height(m.View()); h != 40 {
		t.Errorf("view height without drawer = %d, want 40", h)
	}
}

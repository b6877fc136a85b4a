// Package panel binds operator gestures to the board and to speech capture.
// The terminal UI, the desktop window and the script driver all go through
// a Controller so they behave the same.
package panel

import (
	"context"
	"errors"
	"fmt"

	"talkboard/board"
	"talkboard/config"
	"talkboard/locale"
	"talkboard/speech"
)

// Voice is the drawer's speech indicator.
type Voice int

const (
	VoicePrompt Voice = iota
	VoiceListening
	VoiceError
	VoiceUnsupported
)

type Controller struct {
	board   *board.Board
	capture *speech.Capture
	table   *locale.Table
	themes  []config.Theme
	copyFn  func(string) error
}

// New returns a controller. copyFn writes to the system clipboard; nil
// disables copying.
func New(b *board.Board, c *speech.Capture, tbl *locale.Table, themes []config.Theme, copyFn func(string) error) *Controller {
	if c == nil {
		c = speech.NewCapture(nil)
	}
	if len(themes) == 0 {
		themes = config.DefaultThemes()
	}
	return &Controller{board: b, capture: c, table: tbl, themes: themes, copyFn: copyFn}
}

func (c *Controller) Board() *board.Board { return c.board }

func (c *Controller) Capture() *speech.Capture { return c.capture }

func (c *Controller) Themes() []config.Theme { return c.themes }

// Strings are the labels for the active language.
func (c *Controller) Strings() locale.Strings {
	return c.table.Strings(c.board.State().Language)
}

func (c *Controller) SetText(text string) { c.board.SetText(text) }

func (c *Controller) Clear() { c.board.SetText("") }

func (c *Controller) Rotate() { c.board.ToggleRotation() }

// SaveShortcut stores the phrase currently on the board. Blank phrases are
// ignored.
func (c *Controller) SaveShortcut() {
	c.board.AddShortcut(c.board.State().CurrentText)
}

// ShowShortcut puts the shortcut's text on the board. Unknown ids are ignored.
func (c *Controller) ShowShortcut(id string) {
	for _, sc := range c.board.Shortcuts() {
		if sc.ID == id {
			c.board.SetText(sc.Text)
			return
		}
	}
}

func (c *Controller) DeleteShortcut(id string) { c.board.RemoveShortcut(id) }

// ThemeIndex returns the preset matching the board's colors, or -1.
func (c *Controller) ThemeIndex() int {
	s := c.board.State()
	for i, th := range c.themes {
		bg, err1 := board.ParseColor(th.Bg)
		fg, err2 := board.ParseColor(th.Text)
		if err1 == nil && err2 == nil && bg == s.BgColor && fg == s.TextColor {
			return i
		}
	}
	return -1
}

// ThemeLabel names the current preset, or shows the raw colors.
func (c *Controller) ThemeLabel() string {
	if i := c.ThemeIndex(); i >= 0 {
		return c.themes[i].Label
	}
	s := c.board.State()
	return fmt.Sprintf("%s/%s", s.BgColor, s.TextColor)
}

func (c *Controller) ApplyTheme(i int) error {
	if i < 0 || i >= len(c.themes) {
		return fmt.Errorf("theme %d out of range", i)
	}
	th := c.themes[i]
	bg, err := board.ParseColor(th.Bg)
	if err != nil {
		return err
	}
	fg, err := board.ParseColor(th.Text)
	if err != nil {
		return err
	}
	_, err = c.board.SetColors(bg, fg)
	return err
}

// NextTheme advances to the following preset, wrapping around.
func (c *Controller) NextTheme() error {
	return c.ApplyTheme((c.ThemeIndex() + 1) % len(c.themes))
}

func (c *Controller) SetLanguage(l locale.Lang) error {
	_, err := c.board.SetLanguage(l)
	return err
}

func (c *Controller) NextLanguage() {
	c.board.SetLanguage(c.board.State().Language.Next())
}

// Speak toggles recognition in the active language.
func (c *Controller) Speak(ctx context.Context) error {
	return c.capture.Activate(ctx, c.board.State().Language)
}

// HandleOutcome applies a finished recognition attempt. A transcript
// replaces the phrase; an error only changes the voice indicator.
func (c *Controller) HandleOutcome(o speech.Outcome) {
	if o.Err == nil {
		c.board.SetText(o.Text)
	}
}

func (c *Controller) Voice() Voice {
	if !c.capture.Supported() {
		return VoiceUnsupported
	}
	switch c.capture.State() {
	case speech.Listening:
		return VoiceListening
	case speech.Failed:
		return VoiceError
	}
	return VoicePrompt
}

// VoiceLabel is the localized indicator text.
func (c *Controller) VoiceLabel() string {
	s := c.Strings()
	switch c.Voice() {
	case VoiceListening:
		return s.VoiceListening
	case VoiceError:
		return s.VoiceError
	case VoiceUnsupported:
		return s.VoiceUnsupported
	}
	return s.VoicePrompt
}

// CopyPhrase writes the current phrase to the clipboard.
func (c *Controller) CopyPhrase() error {
	if c.copyFn == nil {
		return errors.New("clipboard unavailable")
	}
	if err := c.copyFn(c.board.State().CurrentText); err != nil {
		return fmt.Errorf("copying phrase: %w", err)
	}
	return nil
}

// Package board holds the communication board's single source of truth: the
// phrase on screen, its colors, the rotation flag, the active language and a
// shortcut list per language.
package board

import (
	"errors"
	"fmt"
	"strings"

	"talkboard/locale"
)

const DefaultText = "Hello"

var (
	ErrInvalidColor    = errors.New("invalid color")
	ErrUnknownLanguage = errors.New("unknown language")
)

// Color is a "#rrggbb" hex triple.
type Color string

const (
	Black Color = "#000000"
	White Color = "#ffffff"
)

// ParseColor accepts "#rgb" or "#rrggbb" (any case) and returns the long lowercase form.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	hex := s[1:]
	for _, c := range hex {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	switch len(hex) {
	case 6:
		return Color(s), nil
	case 3:
		return Color("#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// RGB splits a valid color into its components. Invalid colors yield black.
func (c Color) RGB() (r, g, b uint8) {
	var v [3]uint8
	if len(c) != 7 {
		return 0, 0, 0
	}
	for i := range v {
		v[i] = hexByte(c[1+2*i])<<4 | hexByte(c[2+2*i])
	}
	return v[0], v[1], v[2]
}

func hexByte(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

type Shortcut struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// State is an immutable snapshot of the board. Operations on Board never
// modify a State that has already been handed out.
type State struct {
	CurrentText string                     `json:"currentText"`
	BgColor     Color                      `json:"bgColor"`
	TextColor   Color                      `json:"textColor"`
	IsRotated   bool                       `json:"isRotated"`
	Language    locale.Lang                `json:"language"`
	Shortcuts   map[locale.Lang][]Shortcut `json:"shortcuts"`
}

// Defaults builds a fresh state seeded from tbl's default phrases.
func Defaults(tbl *locale.Table, text string) State {
	s := State{
		CurrentText: text,
		BgColor:     Black,
		TextColor:   White,
		Language:    locale.English,
		Shortcuts:   make(map[locale.Lang][]Shortcut, len(locale.All)),
	}
	for _, l := range locale.All {
		phrases := tbl.DefaultShortcuts(l)
		list := make([]Shortcut, len(phrases))
		for i, p := range phrases {
			list[i] = Shortcut{ID: fmt.Sprintf("init-%s-%d", l, i), Text: p}
		}
		s.Shortcuts[l] = list
	}
	return s
}

// ActiveShortcuts is the list for the current language.
func (s State) ActiveShortcuts() []Shortcut {
	return s.Shortcuts[s.Language]
}

// ShortcutCount sums every language's list.
func (s State) ShortcutCount() int {
	n := 0
	for _, l := range s.Shortcuts {
		n += len(l)
	}
	return n
}

// Equal compares two states field by field, treating nil and empty lists alike.
func (s State) Equal(o State) bool {
	if s.CurrentText != o.CurrentText || s.BgColor != o.BgColor || s.TextColor != o.TextColor ||
		s.IsRotated != o.IsRotated || s.Language != o.Language {
		return false
	}
	for _, l := range locale.All {
		a, b := s.Shortcuts[l], o.Shortcuts[l]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// with returns a shallow copy whose shortcut map can be replaced without
// touching s. Lists themselves are shared until a caller replaces one.
func (s State) with() State {
	n := s
	n.Shortcuts = make(map[locale.Lang][]Shortcut, len(s.Shortcuts))
	for l, list := range s.Shortcuts {
		n.Shortcuts[l] = list
	}
	return n
}

// normalize fills in anything a decoded or hand-built state may be missing.
func (s State) normalize(fallback State) State {
	n := s.with()
	for _, l := range locale.All {
		if n.Shortcuts[l] == nil {
			n.Shortcuts[l] = []Shortcut{}
		}
	}
	for l := range n.Shortcuts {
		if !l.Valid() {
			delete(n.Shortcuts, l)
		}
	}
	if !n.Language.Valid() {
		n.Language = fallback.Language
	}
	if c, err := ParseColor(string(n.BgColor)); err == nil {
		n.BgColor = c
	} else {
		n.BgColor = fallback.BgColor
	}
	if c, err := ParseColor(string(n.TextColor)); err == nil {
		n.TextColor = c
	} else {
		n.TextColor = fallback.TextColor
	}
	return n
}

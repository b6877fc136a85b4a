// Package render turns the board's phrase into a full-screen presentation.
// Compute is pure: the same inputs always produce the same Layout, and the
// same Layout always rasterizes to the same pixels.
package render

import (
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"

	"talkboard/board"
)

// Bucket is a font-size class chosen from the phrase length.
type Bucket int

const (
	Huge Bucket = iota
	Large
	Medium
	Small
	Tiny
)

var bucketNames = [...]string{"huge", "large", "medium", "small", "tiny"}

func (b Bucket) String() string {
	if b < Huge || b > Tiny {
		return "unknown"
	}
	return bucketNames[b]
}

// Scale is the glyph magnification for the bucket; it strictly decreases
// from Huge to Tiny.
func (b Bucket) Scale() int {
	return int(Tiny-b) + 1
}

// Thresholds are the ascending rune counts at which the bucket steps down.
type Thresholds [4]int

var DefaultThresholds = Thresholds{5, 10, 20, 50}

// Valid reports whether the cut points are strictly ascending and positive.
func (t Thresholds) Valid() bool {
	prev := 0
	for _, v := range t {
		if v <= prev {
			return false
		}
		prev = v
	}
	return true
}

func (t Thresholds) Bucket(length int) Bucket {
	for i, limit := range t {
		if length < limit {
			return Bucket(i)
		}
	}
	return Tiny
}

// Viewport is the physical drawing area in pixels. A terminal cell holds
// two vertically stacked pixels.
type Viewport struct {
	Width  int
	Height int
}

type Layout struct {
	Text    string
	Bucket  Bucket
	Rotated bool
	// Width and Height are the effective area the text is laid out in. They
	// are the viewport swapped when rotated.
	Width    int
	Height   int
	Viewport Viewport
	Bg       board.Color
	Fg       board.Color
	// Plain is set when the bitmap face cannot draw the text; the caller
	// renders it as ordinary styled text instead.
	Plain bool
}

// Compute lays out text for the given viewport.
func Compute(text string, rotated bool, bg, fg board.Color, vp Viewport, th Thresholds) Layout {
	if !th.Valid() {
		th = DefaultThresholds
	}
	if text == "" {
		text = " "
	}
	l := Layout{
		Text:     text,
		Bucket:   th.Bucket(utf8.RuneCountInString(text)),
		Rotated:  rotated,
		Width:    vp.Width,
		Height:   vp.Height,
		Viewport: vp,
		Bg:       bg,
		Fg:       fg,
		Plain:    !drawable(text),
	}
	if rotated {
		l.Width, l.Height = vp.Height, vp.Width
	}
	return l
}

// ComputeState is Compute over a board snapshot.
func ComputeState(s board.State, vp Viewport, th Thresholds) Layout {
	return Compute(s.CurrentText, s.IsRotated, s.BgColor, s.TextColor, vp, th)
}

func drawable(text string) bool {
	face := basicfont.Face7x13
	for _, r := range text {
		if r == '\n' || r == ' ' {
			continue
		}
		if _, ok := face.GlyphAdvance(r); !ok {
			return false
		}
	}
	return true
}

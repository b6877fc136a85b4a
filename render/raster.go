package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"talkboard/board"
)

const (
	glyphW = 7
	glyphH = 13
)

// Raster is a two-tone bitmap of the board: On pixels take the text color.
type Raster struct {
	Width  int
	Height int
	On     []bool
	Bg     color.RGBA
	Fg     color.RGBA
	// Scale is the magnification actually used after fitting.
	Scale int
}

func (r *Raster) At(x, y int) bool {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return false
	}
	return r.On[y*r.Width+x]
}

func (r *Raster) set(x, y int) {
	r.On[y*r.Width+x] = true
}

// Image paints the raster with its colors.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := r.Bg
			if r.On[y*r.Width+x] {
				c = r.Fg
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func rgba(c board.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Rasterize draws the layout's text with the 7x13 bitmap face, magnified by
// the bucket scale (reduced until the text fits), centered, and rotated 90°
// clockwise when the layout is rotated. Plain layouts produce a blank raster.
func Rasterize(l Layout) *Raster {
	out := &Raster{
		Width:  max(l.Viewport.Width, 0),
		Height: max(l.Viewport.Height, 0),
		Bg:     rgba(l.Bg),
		Fg:     rgba(l.Fg),
	}
	out.On = make([]bool, out.Width*out.Height)
	if l.Plain || l.Width <= 0 || l.Height <= 0 {
		return out
	}

	scale := l.Bucket.Scale()
	var lines []string
	for ; scale >= 1; scale-- {
		lines = Wrap(l.Text, l.Width/(glyphW*scale))
		if len(lines)*glyphH*scale <= l.Height && longest(lines)*glyphW*scale <= l.Width {
			break
		}
	}
	if scale < 1 {
		scale = 1
	}
	out.Scale = scale

	mask := drawLines(lines)
	mw, mh := mask.Bounds().Dx(), mask.Bounds().Dy()
	offX := (l.Width - mw*scale) / 2
	offY := (l.Height - mh*scale) / 2

	for my := 0; my < mh; my++ {
		for mx := 0; mx < mw; mx++ {
			if mask.AlphaAt(mx, my).A < 0x80 {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					x, y := offX+mx*scale+dx, offY+my*scale+dy
					if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
						continue
					}
					if l.Rotated {
						// clockwise: effective (x, y) lands at (H-1-y, x)
						out.set(l.Height-1-y, x)
					} else {
						out.set(x, y)
					}
				}
			}
		}
	}
	return out
}

// drawLines renders each line centered in a block as wide as the longest one.
func drawLines(lines []string) *image.Alpha {
	w := longest(lines) * glyphW
	h := len(lines) * glyphH
	mask := image.NewAlpha(image.Rect(0, 0, max(w, 1), max(h, 1)))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		n := len([]rune(line))
		x := (w - n*glyphW) / 2
		d.Dot = fixed.P(x, i*glyphH+basicfont.Face7x13.Ascent)
		d.DrawString(line)
	}
	return mask
}

func longest(lines []string) int {
	n := 0
	for _, l := range lines {
		n = max(n, len([]rune(l)))
	}
	return n
}

// Wrap breaks text into lines of at most width runes, preferring spaces and
// honoring explicit newlines. Words longer than width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		rs := []rune(para)
		if len(rs) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(rs) > width {
			splitAt := width
			for i := width; i > 0; i-- {
				if rs[i] == ' ' {
					splitAt = i
					break
				}
			}
			lines = append(lines, string(rs[:splitAt]))
			rs = []rune(strings.TrimLeft(string(rs[splitAt:]), " "))
		}
		if len(rs) > 0 {
			lines = append(lines, string(rs))
		}
	}
	return lines
}

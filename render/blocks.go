package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell int

const (
	cellEmpty cell = iota // bg over bg
	cellUpper             // fg over bg
	cellLower             // bg over fg
	cellFull              // fg over fg
)

var cellGlyph = [...]string{" ", "▀", "▄", "█"}

// Blocks prints a raster as terminal rows, two pixels per cell. Runs of the
// same cell kind share one styled span.
func Blocks(r *Raster, l Layout) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(l.Fg))).
		Background(lipgloss.Color(string(l.Bg)))

	var sb strings.Builder
	rows := (r.Height + 1) / 2
	for row := 0; row < rows; row++ {
		var run strings.Builder
		for x := 0; x < r.Width; x++ {
			run.WriteString(cellGlyph[cellAt(r, x, row)])
		}
		sb.WriteString(style.Render(run.String()))
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func cellAt(r *Raster, x, row int) cell {
	top := r.At(x, row*2)
	bot := r.At(x, row*2+1)
	switch {
	case top && bot:
		return cellFull
	case top:
		return cellUpper
	case bot:
		return cellLower
	}
	return cellEmpty
}

// Plain renders layouts the bitmap face cannot draw as centered styled
// text. Rotated plain text is set vertically, one rune per row, columns
// running right to left.
func Plain(l Layout, cols, rows int) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(l.Fg))).
		Background(lipgloss.Color(string(l.Bg))).
		Bold(true)

	var body string
	if l.Rotated {
		body = style.Render(vertical(l.Text, rows))
	} else {
		body = style.Width(max(cols-4, 1)).Align(lipgloss.Center).Render(l.Text)
	}
	return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center,
		body,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(string(l.Bg))))
}

func vertical(text string, rows int) string {
	var runes []rune
	for _, r := range text {
		if r != '\n' {
			runes = append(runes, r)
		}
	}
	if rows < 1 {
		rows = 1
	}
	var columns [][]rune
	for len(runes) > 0 {
		n := min(rows, len(runes))
		columns = append(columns, runes[:n])
		runes = runes[n:]
	}
	var sb strings.Builder
	for y := 0; y < rows && len(columns) > 0; y++ {
		if y >= len(columns[0]) {
			break
		}
		for c := len(columns) - 1; c >= 0; c-- {
			if y < len(columns[c]) {
				r := columns[c][y]
				sb.WriteRune(r)
				if lipgloss.Width(string(r)) < 2 {
					sb.WriteByte(' ')
				}
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Terminal renders a layout computed for TerminalViewport(cols, rows),
// filling exactly that many cells.
func Terminal(l Layout) string {
	cols, rows := l.Viewport.Width, l.Viewport.Height/2
	if cols <= 0 || rows <= 0 {
		return ""
	}
	if l.Plain {
		return Plain(l, cols, rows)
	}
	return Blocks(Rasterize(l), l)
}

// TerminalViewport is the pixel viewport of a cols x rows cell area.
func TerminalViewport(cols, rows int) Viewport {
	return Viewport{Width: cols, Height: rows * 2}
}

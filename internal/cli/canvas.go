package cli

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/wbsgen/pkg/layout"
)

// cellGrid is a character canvas. A cell holding "" is the right half of
// a wide rune to its left.
type cellGrid struct {
	cols, rows int
	cells      [][]string
}

func newCellGrid(cols, rows int) *cellGrid {
	g := &cellGrid{cols: cols, rows: rows, cells: make([][]string, rows)}
	for y := range g.cells {
		g.cells[y] = make([]string, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = " "
		}
	}
	return g
}

func (g *cellGrid) set(x, y int, s string) {
	if x >= 0 && x < g.cols && y >= 0 && y < g.rows {
		g.cells[y][x] = s
	}
}

// text writes s from (x, y), clipped to width cells.
func (g *cellGrid) text(x, y, width int, s string) {
	s = runewidth.Truncate(s, width, "…")
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		g.set(x, y, string(r))
		if w == 2 {
			g.set(x+1, y, "")
		}
		x += w
	}
}

// box draws a rectangle spanning cells [x0, x1] × [y0, y1].
func (g *cellGrid) box(x0, y0, x1, y1 int, h, v, tl, tr, bl, br string) {
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, h)
		g.set(x, y1, h)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, v)
		g.set(x1, y, v)
	}
	g.set(x0, y0, tl)
	g.set(x1, y0, tr)
	g.set(x0, y1, bl)
	g.set(x1, y1, br)
}

func (g *cellGrid) lines() []string {
	out := make([]string, g.rows)
	for y, row := range g.cells {
		out[y] = strings.TrimRight(strings.Join(row, ""), " ")
	}
	return out
}

// drawChart rasterises geometry onto a cols × rows character canvas scaled
// to the configured canvas. The WBS block is dotted; boxes too small for a
// border are filled.
func drawChart(geoms []layout.Geometry, cfg layout.Config, cols, rows int) []string {
	if cols < 4 || rows < 4 || cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil
	}
	g := newCellGrid(cols, rows)
	sx := float64(cols-1) / cfg.CanvasWidth
	sy := float64(rows-1) / cfg.CanvasHeight
	cell := func(r layout.Rect) (x0, y0, x1, y1 int) {
		return int(math.Round(r.X * sx)), int(math.Round(r.Y * sy)),
			int(math.Round(r.Right() * sx)), int(math.Round(r.Bottom() * sy))
	}

	bx0, by0, bx1, by1 := cell(cfg.Block())
	g.box(bx0, by0, bx1, by1, "·", "·", "·", "·", "·", "·")

	for _, geom := range geoms {
		x0, y0, x1, y1 := cell(geom.Rect())
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			g.text(x0, y0, x1-x0+1, strings.Repeat("▪", x1-x0+1))
			continue
		}
		g.box(x0, y0, x1, y1, "─", "│", "┌", "┐", "└", "┘")
		if inner := x1 - x0 - 1; inner > 0 {
			g.text(x0+1, y0+(y1-y0)/2, inner, geom.Label())
		}
	}
	return g.lines()
}

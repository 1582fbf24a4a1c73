package render

import (
	"strings"

	"github.com/scottvr/phart/pkg/errors"
)

// canvas is the character arena one render call draws into. It is created
// with its final dimensions and never grows: a write outside the allocated
// grid is a sizing bug and surfaces as CANVAS_OUT_OF_BOUNDS rather than a
// reallocation. The canvas never escapes the render call that owns it.
type canvas struct {
	cells  [][]rune
	width  int
	height int
}

func newCanvas(width, height int) *canvas {
	cells := make([][]rune, height)
	for y := range cells {
		row := make([]rune, width)
		for x := range row {
			row[x] = ' '
		}
		cells[y] = row
	}
	return &canvas{cells: cells, width: width, height: height}
}

// set writes one cell, rejecting out-of-bounds coordinates.
func (c *canvas) set(x, y int, r rune) error {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return errors.New(errors.ErrCodeCanvasOutOfBounds,
			"write at (%d, %d) outside %dx%d canvas", x, y, c.width, c.height)
	}
	c.cells[y][x] = r
	return nil
}

// at returns the current cell content, or space for out-of-bounds reads.
func (c *canvas) at(x, y int) rune {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return ' '
	}
	return c.cells[y][x]
}

// String renders the grid as text: rows joined by newlines, trailing
// whitespace trimmed per row, trailing blank rows dropped.
func (c *canvas) String() string {
	rows := make([]string, c.height)
	for y, row := range c.cells {
		rows[y] = strings.TrimRight(string(row), " ")
	}
	return strings.TrimRight(strings.Join(rows, "\n"), "\n")
}

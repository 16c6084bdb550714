// Package canvas implements a rune matrix with the drawing primitives
// the roadmap panel needs: boxes, straight lines and clipped text.
//
// Coordinate system: origin (0,0) is top-left, X increases rightward,
// Y increases downward, all coordinates are character cells. The matrix
// is NOT safe for concurrent writes; all drawing happens on the UI
// event-loop goroutine.
package canvas

import (
	"errors"
	"strings"
)

// Common errors.
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// BoxStyle holds the runes used to draw a box border.
type BoxStyle struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

// DefaultBoxStyle draws rounded Unicode boxes, matching the rest of the UI.
var DefaultBoxStyle = BoxStyle{
	TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
	Horizontal: '─', Vertical: '│',
}

// HeavyBoxStyle is used for the selected node.
var HeavyBoxStyle = BoxStyle{
	TopLeft: '┏', TopRight: '┓', BottomLeft: '┗', BottomRight: '┛',
	Horizontal: '━', Vertical: '┃',
}

// Matrix is a fixed-size grid of runes.
type Matrix struct {
	cells  [][]rune
	width  int
	height int
}

// NewMatrix creates a matrix of the given size filled with spaces.
// Returns nil for non-positive dimensions.
func NewMatrix(width, height int) *Matrix {
	if width <= 0 || height <= 0 {
		return nil
	}

	cells := make([][]rune, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]rune, width)
		for x := 0; x < width; x++ {
			cells[y][x] = ' '
		}
	}

	return &Matrix{cells: cells, width: width, height: height}
}

// Size returns the width and height of the matrix.
func (m *Matrix) Size() (width, height int) {
	return m.width, m.height
}

// Set places a rune at the given position. Out-of-bounds writes are
// silently dropped: callers draw shapes that may be partially clipped
// by the panel edge.
func (m *Matrix) Set(x, y int, r rune) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.cells[y][x] = r
}

// Get returns the rune at the given position, or space when out of bounds.
func (m *Matrix) Get(x, y int) rune {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return ' '
	}
	return m.cells[y][x]
}

// Row returns the runes of one row. The slice aliases the matrix.
func (m *Matrix) Row(y int) []rune {
	if y < 0 || y >= m.height {
		return nil
	}
	return m.cells[y]
}

// DrawBox draws a box border with the given style. Boxes smaller than
// 2x2 are dropped.
func (m *Matrix) DrawBox(x, y, width, height int, style BoxStyle) {
	if width < 2 || height < 2 {
		return
	}

	m.Set(x, y, style.TopLeft)
	m.Set(x+width-1, y, style.TopRight)
	m.Set(x, y+height-1, style.BottomLeft)
	m.Set(x+width-1, y+height-1, style.BottomRight)

	for cx := x + 1; cx < x+width-1; cx++ {
		m.Set(cx, y, style.Horizontal)
		m.Set(cx, y+height-1, style.Horizontal)
	}
	for cy := y + 1; cy < y+height-1; cy++ {
		m.Set(x, cy, style.Vertical)
		m.Set(x+width-1, cy, style.Vertical)
	}
}

// DrawVLine draws a vertical line from (x, y1) to (x, y2) inclusive.
func (m *Matrix) DrawVLine(x, y1, y2 int, r rune) {
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		m.Set(x, y, r)
	}
}

// DrawHLine draws a horizontal line from (x1, y) to (x2, y) inclusive.
func (m *Matrix) DrawHLine(x1, x2, y int, r rune) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		m.Set(x, y, r)
	}
}

// String renders the matrix as newline-separated rows.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (m.width + 1))
	for y := 0; y < m.height; y++ {
		sb.WriteString(string(m.cells[y]))
		if y < m.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Package mask provides the raster solidity field the collision resolver
// samples. World space is y-up; cell (0, 0) covers [0, cell) x [0, cell).
package mask

import (
	"fmt"
	"math"
)

// SolidityMask answers whether a world-space point is impassable.
// Queries outside the mask report open space.
type SolidityMask interface {
	IsSolid(x, y float64) bool
}

// Empty is a mask with no solid cells
type Empty struct{}

// IsSolid always reports open space.
func (Empty) IsSolid(x, y float64) bool { return false }

// Grid is a cell bitmap anchored at the world origin
type Grid struct {
	width    int
	height   int
	cellSize float64
	cells    []bool
}

// NewGrid creates an all-open grid of width x height cells
func NewGrid(width, height int, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions: %dx%d", width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("invalid cell size: %v", cellSize)
	}
	return &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cells:    make([]bool, width*height),
	}, nil
}

// FromRows builds a grid from text rows listed top to bottom, the way a level
// reads on screen. '#' marks a solid cell; any other rune is open.
// The last row becomes cell row 0.
func FromRows(rows []string, cellSize float64) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("mask has no rows")
	}
	width := len(rows[0])
	g, err := NewGrid(width, len(rows), cellSize)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("mask row %d width mismatch: expected %d, got %d", i, width, len(row))
		}
		cy := len(rows) - 1 - i
		for cx, r := range row {
			if r == '#' {
				g.Set(cx, cy, true)
			}
		}
	}
	return g, nil
}

// Size returns the grid dimensions in cells
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// CellSize returns the world-space edge length of one cell
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Set marks a cell solid or open. Out-of-range cells are ignored.
func (g *Grid) Set(cx, cy int, solid bool) {
	if !g.inside(cx, cy) {
		return
	}
	g.cells[cy*g.width+cx] = solid
}

// Cell reports whether the cell at (cx, cy) is solid
func (g *Grid) Cell(cx, cy int) bool {
	if !g.inside(cx, cy) {
		return false
	}
	return g.cells[cy*g.width+cx]
}

// IsSolid quantises a world point to its cell.
func (g *Grid) IsSolid(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	cx := int(math.Floor(x / g.cellSize))
	cy := int(math.Floor(y / g.cellSize))
	return g.Cell(cx, cy)
}

// Rows renders the grid back into top-to-bottom text rows
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	for i := range rows {
		cy := g.height - 1 - i
		buf := make([]byte, g.width)
		for cx := 0; cx < g.width; cx++ {
			if g.Cell(cx, cy) {
				buf[cx] = '#'
			} else {
				buf[cx] = '.'
			}
		}
		rows[i] = string(buf)
	}
	return rows
}

func (g *Grid) inside(cx, cy int) bool {
	return cx >= 0 && cx < g.width && cy >= 0 && cy < g.height
}

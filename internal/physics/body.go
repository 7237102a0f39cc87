// Package physics advances dynamic bodies one frame at a time and constrains
// them against a solidity mask.
package physics

import (
	"errors"
	"fmt"

	"chosenoffset.com/ns2d/internal/core/geom"
)

// ErrInvalidBounds is returned when a body footprint has no area
var ErrInvalidBounds = errors.New("bounds must have positive width and height")

// Bounds are footprint offsets from a body's position anchor.
// Y1 is the lower edge.
type Bounds struct {
	X1, Y1, X2, Y2 float64
}

// NewBounds returns a width x height footprint anchored at its lower-left corner
func NewBounds(width, height float64) Bounds {
	return Bounds{X1: 0, Y1: 0, X2: width, Y2: height}
}

// CX returns the horizontal centre offset
func (b Bounds) CX() float64 { return b.X1 + (b.X2-b.X1)*0.5 }

// CY returns the vertical centre offset
func (b Bounds) CY() float64 { return b.Y1 + (b.Y2-b.Y1)*0.5 }

// Valid reports whether the footprint has positive area
func (b Bounds) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// At returns the footprint in world space for an anchor position
func (b Bounds) At(pos geom.Point) geom.Rect {
	return geom.Rect{
		Min: geom.Point{X: pos.X + b.X1, Y: pos.Y + b.Y1},
		Max: geom.Point{X: pos.X + b.X2, Y: pos.Y + b.Y2},
	}
}

// Motion is the per-body velocity and contact record
type Motion struct {
	VX, VY float64 // units per second
	VR     float64 // degrees per second

	// Contacts from the most recent resolver pass
	OnFloor bool
	OnWall  bool

	// Friction damps velocity by friction*dt per frame. Zero disables it.
	Friction float64
}

// Gravity controls whether and how strongly gravity pulls a body
type Gravity struct {
	Enabled  bool
	Strength float64
}

// Body bundles the state the integrator and resolver operate on
type Body struct {
	Pos      geom.Point
	Bounds   Bounds
	Motion   Motion
	Gravity  Gravity
	Rotation float64 // facing in degrees, unbounded
}

// NewBody creates a body at pos with gravity enabled at full strength.
// A footprint without area is a construction error.
func NewBody(pos geom.Point, bounds Bounds) (*Body, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("invalid body bounds %+v: %w", bounds, ErrInvalidBounds)
	}
	return &Body{
		Pos:     pos,
		Bounds:  bounds,
		Gravity: Gravity{Enabled: true, Strength: 1},
	}, nil
}

// Center returns the world-space centre of the footprint
func (b *Body) Center() geom.Point {
	return geom.Point{X: b.Pos.X + b.Bounds.CX(), Y: b.Pos.Y + b.Bounds.CY()}
}

// Footprint returns the world-space footprint
func (b *Body) Footprint() geom.Rect {
	return b.Bounds.At(b.Pos)
}

// Overlaps reports whether two bodies' footprints intersect
func Overlaps(a, b *Body) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Footprint().Overlaps(b.Footprint())
}

package game

import (
	"chosenoffset.com/ns2d/internal/core/geom"
)

// Camera tracks the viewport position for scrolling large levels.
type Camera struct {
	X, Y float64 // Camera position (lower-left corner of viewport in world coords)
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Particle is a short-lived exhaust effect
type Particle struct {
	Pos      geom.Point
	Rotation float64
	Effect   string
	TimeLeft float64
}

// marker is one resolver sample point kept for the debug overlay
type marker struct {
	Pos   geom.Point
	Solid bool
}

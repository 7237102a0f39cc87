package physics

import (
	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/world/mask"
)

// DebugSink receives every point the resolver samples
type DebugSink interface {
	Sample(p geom.Point, solid bool)
}

// Resolver clamps a body's per-frame displacement against a solidity mask.
// Each axis is tested with a single point at the leading edge midpoint, so
// fast bodies can tunnel through thin geometry.
type Resolver struct {
	mask  mask.SolidityMask
	debug DebugSink
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithDebugSink routes sample points to sink
func WithDebugSink(sink DebugSink) ResolverOption {
	return func(r *Resolver) {
		r.debug = sink
	}
}

// NewResolver creates a resolver over m. A nil mask behaves as open space.
func NewResolver(m mask.SolidityMask, opts ...ResolverOption) *Resolver {
	if m == nil {
		m = mask.Empty{}
	}
	r := &Resolver{mask: m}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetMask swaps the mask between frames
func (r *Resolver) SetMask(m mask.SolidityMask) {
	if m == nil {
		m = mask.Empty{}
	}
	r.mask = m
}

// Resolve moves b by its velocity for dt, zeroing any velocity component that
// would carry it into solid space, and recomputes its contact flags.
// Horizontal is resolved before vertical. A body at rest or a zero dt
// leaves b untouched.
func (r *Resolver) Resolve(b *Body, dt float64) {
	m := &b.Motion
	if dt == 0 || (m.VX == 0 && m.VY == 0) {
		return
	}

	bounds := b.Bounds
	px := b.Pos.X + m.VX*dt
	py := b.Pos.Y + m.VY*dt

	m.OnWall = false
	m.OnFloor = false

	midY := b.Pos.Y + bounds.CY()
	if (m.VX > 0 && r.collides(px+bounds.X2, midY)) ||
		(m.VX < 0 && r.collides(px+bounds.X1, midY)) {
		m.OnWall = true
		m.VX = 0
		px = b.Pos.X
	}

	midX := px + bounds.CX()
	if (m.VY > 0 && r.collides(midX, py+bounds.Y2)) ||
		(m.VY < 0 && r.collides(midX, py+bounds.Y1)) {
		if m.VY < 0 {
			m.OnFloor = true
		}
		m.OnWall = true
		m.VY = 0
		py = b.Pos.Y
	}

	b.Pos.X = px
	b.Pos.Y = py
}

func (r *Resolver) collides(x, y float64) bool {
	solid := r.mask.IsSolid(x, y)
	if r.debug != nil {
		r.debug.Sample(geom.Point{X: x, Y: y}, solid)
	}
	return solid
}

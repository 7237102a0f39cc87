package physics

import (
	"math"

	"chosenoffset.com/ns2d/internal/core/geom"
)

// DefaultGravityAccel is the downward acceleration in units/s² at strength 1
const DefaultGravityAccel = 400.0

// Integrator accumulates friction, gravity and rotation into a body before
// the resolver runs
type Integrator struct {
	GravityAccel float64
}

// NewIntegrator creates an integrator with the given gravity acceleration
func NewIntegrator(gravityAccel float64) *Integrator {
	return &Integrator{GravityAccel: gravityAccel}
}

// Integrate applies one frame of friction, gravity and angular velocity.
// Friction damps the velocity carried in from the previous frame before
// gravity is added.
func (in *Integrator) Integrate(b *Body, dt float64) {
	if dt == 0 {
		return
	}
	m := &b.Motion

	if m.Friction != 0 {
		k := math.Min(1, m.Friction*dt)
		m.VX -= m.VX * k
		m.VY -= m.VY * k
	}

	if b.Gravity.Enabled {
		m.VY -= in.GravityAccel * b.Gravity.Strength * dt
	}

	b.Rotation += m.VR * dt
}

// Push adds a velocity of magnitude along angleDeg (0 = +x, 90 = up)
func Push(b *Body, angleDeg, magnitude float64) {
	if magnitude == 0 {
		return
	}
	sin, cos := math.Sincos(geom.Radians(angleDeg))
	b.Motion.VX += cos * magnitude
	b.Motion.VY += sin * magnitude
}

// ClampVelocity limits the speed of b to [min, max] keeping its direction.
// A body at rest has no direction and is left alone.
func ClampVelocity(b *Body, min, max float64) {
	m := &b.Motion
	speed := math.Hypot(m.VX, m.VY)
	if speed == 0 {
		return
	}

	target := geom.Clamp(speed, min, max)
	if target == speed {
		return
	}
	scale := target / speed
	m.VX *= scale
	m.VY *= scale
}

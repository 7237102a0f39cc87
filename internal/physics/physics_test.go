package physics

import (
	"math"
	"testing"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/world/mask"
)

const frame = 1.0 / 60.0

type mockMask struct {
	solid map[geom.Coord]bool
	cell  float64
}

func newMockMask(cell float64) *mockMask {
	return &mockMask{solid: make(map[geom.Coord]bool), cell: cell}
}

func (m *mockMask) IsSolid(x, y float64) bool {
	return m.solid[geom.Coord{X: int(math.Floor(x / m.cell)), Y: int(math.Floor(y / m.cell))}]
}

func (m *mockMask) setSolid(cx, cy int) {
	m.solid[geom.Coord{X: cx, Y: cy}] = true
}

type recordingSink struct {
	samples []geom.Point
}

func (s *recordingSink) Sample(p geom.Point, solid bool) {
	s.samples = append(s.samples, p)
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newTestBody(t *testing.T, x, y float64) *Body {
	t.Helper()
	b, err := NewBody(geom.Point{X: x, Y: y}, NewBounds(10, 10))
	if err != nil {
		t.Fatalf("NewBody failed: %v", err)
	}
	return b
}

func TestNewBodyRejectsEmptyBounds(t *testing.T) {
	if _, err := NewBody(geom.Point{}, Bounds{X1: 5, X2: 5, Y1: 0, Y2: 4}); err == nil {
		t.Fatal("Expected error for zero-width bounds")
	}
}

func TestResolveAtRestIsNoOp(t *testing.T) {
	m := newMockMask(1)
	sink := &recordingSink{}
	r := NewResolver(m, WithDebugSink(sink))

	b := newTestBody(t, 3, 4)
	b.Motion.OnFloor = true
	b.Motion.OnWall = true

	r.Resolve(b, frame)

	if b.Pos != (geom.Point{X: 3, Y: 4}) {
		t.Errorf("Expected position unchanged, got %+v", b.Pos)
	}
	if !b.Motion.OnFloor || !b.Motion.OnWall {
		t.Error("Expected contacts untouched by a resting body")
	}
	if len(sink.samples) != 0 {
		t.Errorf("Expected no mask samples, got %d", len(sink.samples))
	}
}

func TestResolveZeroDtIsNoOp(t *testing.T) {
	m := newMockMask(10)
	// floor under the body and a wall flush against its right edge
	m.setSolid(1, 0)
	m.setSolid(2, 1)
	sink := &recordingSink{}
	r := NewResolver(m, WithDebugSink(sink))

	b := newTestBody(t, 10, 10)
	b.Motion.VX = 50
	b.Motion.OnFloor = true

	r.Resolve(b, 0)

	if b.Motion.VX != 50 {
		t.Errorf("Expected vx 50, got %v", b.Motion.VX)
	}
	if !b.Motion.OnFloor || b.Motion.OnWall {
		t.Errorf("Expected contacts untouched, got onFloor=%v onWall=%v", b.Motion.OnFloor, b.Motion.OnWall)
	}
	if b.Pos != (geom.Point{X: 10, Y: 10}) {
		t.Errorf("Expected position unchanged, got %+v", b.Pos)
	}
	if len(sink.samples) != 0 {
		t.Errorf("Expected no mask samples, got %d", len(sink.samples))
	}
}

func TestResolveRightWallStopsHorizontalMovement(t *testing.T) {
	m := newMockMask(10)
	// Wall column directly right of the body at its mid-height
	m.setSolid(2, 1)

	b := newTestBody(t, 9, 10)
	b.Motion.VX = 120

	NewResolver(m).Resolve(b, frame)

	if b.Motion.VX != 0 {
		t.Errorf("Expected vx 0, got %v", b.Motion.VX)
	}
	if !b.Motion.OnWall {
		t.Error("Expected onWall")
	}
	if b.Motion.OnFloor {
		t.Error("Expected no floor contact from a wall hit")
	}
	approxEqual(t, b.Pos.X, 9, 0, "position.x")
}

func TestResolveLeftWall(t *testing.T) {
	m := newMockMask(10)
	m.setSolid(0, 1)

	b := newTestBody(t, 10.5, 10)
	b.Motion.VX = -60

	NewResolver(m).Resolve(b, frame)

	if b.Motion.VX != 0 || !b.Motion.OnWall {
		t.Errorf("Expected left wall hit, got vx=%v onWall=%v", b.Motion.VX, b.Motion.OnWall)
	}
	approxEqual(t, b.Pos.X, 10.5, 0, "position.x")
}

func TestResolveFloorSetsBothContacts(t *testing.T) {
	m := newMockMask(10)
	m.setSolid(1, 0)

	b := newTestBody(t, 10, 10.5)
	b.Motion.VY = -60

	NewResolver(m).Resolve(b, frame)

	if b.Motion.VY != 0 {
		t.Errorf("Expected vy 0, got %v", b.Motion.VY)
	}
	if !b.Motion.OnFloor {
		t.Error("Expected onFloor")
	}
	if !b.Motion.OnWall {
		t.Error("Expected onWall alongside onFloor")
	}
	approxEqual(t, b.Pos.Y, 10.5, 0, "position.y")
}

func TestResolveCeilingIsNotFloor(t *testing.T) {
	m := newMockMask(10)
	m.setSolid(1, 2)

	b := newTestBody(t, 10, 9.5)
	b.Motion.VY = 60

	NewResolver(m).Resolve(b, frame)

	if b.Motion.VY != 0 || !b.Motion.OnWall {
		t.Errorf("Expected ceiling hit, got vy=%v onWall=%v", b.Motion.VY, b.Motion.OnWall)
	}
	if b.Motion.OnFloor {
		t.Error("Expected ceiling contact not to count as floor")
	}
}

func TestResolveFreeMovementClearsStaleContacts(t *testing.T) {
	b := newTestBody(t, 0, 0)
	b.Motion.VX = 60
	b.Motion.VY = -30
	b.Motion.OnFloor = true
	b.Motion.OnWall = true

	NewResolver(nil).Resolve(b, 0.5)

	if b.Motion.OnFloor || b.Motion.OnWall {
		t.Error("Expected contacts cleared after unobstructed movement")
	}
	approxEqual(t, b.Pos.X, 30, 1e-9, "position.x")
	approxEqual(t, b.Pos.Y, -15, 1e-9, "position.y")
}

func TestResolveSamplesLeadingEdgeMidpoints(t *testing.T) {
	sink := &recordingSink{}
	r := NewResolver(mask.Empty{}, WithDebugSink(sink))

	b, err := NewBody(geom.Point{X: 100, Y: 200}, Bounds{X1: 2, Y1: 0, X2: 12, Y2: 20})
	if err != nil {
		t.Fatalf("NewBody failed: %v", err)
	}
	b.Motion.VX = 60
	b.Motion.VY = -120

	r.Resolve(b, 0.1)

	if len(sink.samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(sink.samples))
	}
	// Horizontal: right edge of the proposed x, mid-height of the original y
	approxEqual(t, sink.samples[0].X, 106+12, 1e-9, "horizontal sample x")
	approxEqual(t, sink.samples[0].Y, 200+10, 1e-9, "horizontal sample y")
	// Vertical: mid-width of the proposed x, bottom edge of the proposed y
	approxEqual(t, sink.samples[1].X, 106+7, 1e-9, "vertical sample x")
	approxEqual(t, sink.samples[1].Y, 188, 1e-9, "vertical sample y")
}

func TestResolveCornerRevertsXBeforeVerticalTest(t *testing.T) {
	m := newMockMask(10)
	// Wall to the right and floor under the current column
	m.setSolid(2, 1)
	m.setSolid(1, 0)

	b := newTestBody(t, 9, 10.5)
	b.Motion.VX = 60
	b.Motion.VY = -60

	NewResolver(m).Resolve(b, frame)

	if !b.Motion.OnWall || !b.Motion.OnFloor {
		t.Errorf("Expected wall and floor contacts, got onWall=%v onFloor=%v", b.Motion.OnWall, b.Motion.OnFloor)
	}
	if b.Motion.VX != 0 || b.Motion.VY != 0 {
		t.Errorf("Expected both axes stopped, got (%v, %v)", b.Motion.VX, b.Motion.VY)
	}
}

func TestIntegrateGravity(t *testing.T) {
	in := NewIntegrator(DefaultGravityAccel)
	b := newTestBody(t, 0, 0)
	b.Gravity.Strength = 0.5

	in.Integrate(b, frame)
	approxEqual(t, b.Motion.VY, -DefaultGravityAccel*0.5*frame, 1e-12, "velocity.y")

	b.Gravity.Enabled = false
	b.Motion.VY = 0
	in.Integrate(b, frame)
	if b.Motion.VY != 0 {
		t.Errorf("Expected no gravity when disabled, got vy=%v", b.Motion.VY)
	}
}

func TestIntegrateFrictionDampsBeforeGravity(t *testing.T) {
	in := NewIntegrator(DefaultGravityAccel)
	b := newTestBody(t, 0, 0)
	b.Motion.Friction = 6
	b.Motion.VX = 100

	in.Integrate(b, 0.1)

	approxEqual(t, b.Motion.VX, 40, 1e-9, "velocity.x")
	approxEqual(t, b.Motion.VY, -DefaultGravityAccel*0.1, 1e-9, "velocity.y")

	// Friction never reverses direction
	b.Motion.Friction = 100
	b.Motion.VX = 100
	in.Integrate(b, 0.1)
	if b.Motion.VX != 0 {
		t.Errorf("Expected overdamped velocity to stop, got %v", b.Motion.VX)
	}
}

func TestIntegrateRotationIsUnbounded(t *testing.T) {
	in := NewIntegrator(0)
	b := newTestBody(t, 0, 0)
	b.Rotation = 350
	b.Motion.VR = 400

	in.Integrate(b, 0.5)

	approxEqual(t, b.Rotation, 550, 1e-9, "rotation")
}

func TestIntegrateZeroDtIsNoOp(t *testing.T) {
	in := NewIntegrator(DefaultGravityAccel)
	b := newTestBody(t, 0, 0)
	b.Motion.VX = 5
	b.Motion.Friction = 3
	b.Motion.VR = 90

	in.Integrate(b, 0)

	if b.Motion.VX != 5 || b.Motion.VY != 0 || b.Rotation != 0 {
		t.Errorf("Expected zero dt to leave state alone, got %+v rotation=%v", b.Motion, b.Rotation)
	}
}

func TestPush(t *testing.T) {
	b := newTestBody(t, 0, 0)

	Push(b, 90, 25)
	approxEqual(t, b.Motion.VX, 0, 1e-9, "velocity.x")
	approxEqual(t, b.Motion.VY, 25, 1e-9, "velocity.y")

	Push(b, 180, 10)
	approxEqual(t, b.Motion.VX, -10, 1e-9, "velocity.x")

	Push(b, 45, 0)
	approxEqual(t, b.Motion.VX, -10, 0, "velocity.x after zero push")
}

func TestClampVelocity(t *testing.T) {
	tests := []struct {
		name     string
		vx, vy   float64
		min, max float64
		want     float64
	}{
		{"above max", 300, 400, 0, 100, 100},
		{"below min", 3, 4, 20, 100, 20},
		{"within range", 30, 40, 0, 100, 50},
		{"negative direction", -60, -80, 0, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBody(t, 0, 0)
			b.Motion.VX = tt.vx
			b.Motion.VY = tt.vy
			before := math.Atan2(tt.vy, tt.vx)

			ClampVelocity(b, tt.min, tt.max)

			speed := math.Hypot(b.Motion.VX, b.Motion.VY)
			approxEqual(t, speed, tt.want, 1e-9, "speed")
			approxEqual(t, math.Atan2(b.Motion.VY, b.Motion.VX), before, 1e-9, "direction")
		})
	}
}

func TestClampVelocityAtRest(t *testing.T) {
	b := newTestBody(t, 0, 0)
	ClampVelocity(b, 10, 100)
	if b.Motion.VX != 0 || b.Motion.VY != 0 {
		t.Errorf("Expected resting body to stay at rest, got (%v, %v)", b.Motion.VX, b.Motion.VY)
	}
}

func TestOverlaps(t *testing.T) {
	a := newTestBody(t, 0, 0)
	b := newTestBody(t, 5, 5)
	c := newTestBody(t, 10, 0)

	if !Overlaps(a, b) {
		t.Error("Expected a and b to overlap")
	}
	if Overlaps(a, c) {
		t.Error("Expected edge-touching bodies not to overlap")
	}
	if Overlaps(a, nil) {
		t.Error("Expected nil body never to overlap")
	}
}

package control

import (
	"math"
	"testing"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/simulation"
)

const frame = 1.0 / 60.0

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newPlayer(t *testing.T, onFloor bool) (*entity.Entity, *Locomotion) {
	t.Helper()
	e, err := entity.DefaultLibrary().Spawn("player", geom.Point{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	e.Body.Motion.OnFloor = onFloor
	return e, NewLocomotion(simulation.DefaultConfig().Player, nil)
}

// drift moves the body by its velocity without collision so puff distance
// tracking sees motion, keeping the body airborne.
func drift(l *Locomotion, e *entity.Entity, in Input, frames int, sink intent.Sink) {
	for i := 0; i < frames; i++ {
		l.Update(e, in, frame, sink)
		e.Body.Pos.X += e.Body.Motion.VX * frame
		e.Body.Pos.Y += e.Body.Motion.VY * frame
	}
}

func count[T intent.Intent](items []intent.Intent) int {
	n := 0
	for _, it := range items {
		if _, ok := it.(T); ok {
			n++
		}
	}
	return n
}

func countDialog(items []intent.Intent, c intent.DialogCategory) int {
	n := 0
	for _, it := range items {
		if d, ok := it.(intent.Dialog); ok && d.Category == c {
			n++
		}
	}
	return n
}

func TestFrozenOverridesEverything(t *testing.T) {
	for _, onFloor := range []bool{true, false} {
		e, l := newPlayer(t, onFloor)
		e.Frozen = true
		e.Body.Motion.VX, e.Body.Motion.VY, e.Body.Motion.VR = 40, -80, 300
		e.Body.Gravity.Enabled = true

		var buf intent.Buffer
		mode := l.Update(e, Input{Left: true, Up: true, Fire: true, Pointer: true}, frame, &buf)

		if mode != ModeFrozen {
			t.Errorf("Expected frozen mode, got %s", mode)
		}
		m := e.Body.Motion
		if m.VX != 0 || m.VY != 0 || m.VR != 0 {
			t.Errorf("Expected all velocity zeroed, got vx=%v vy=%v vr=%v", m.VX, m.VY, m.VR)
		}
		if e.Body.Gravity.Enabled {
			t.Error("Expected gravity disabled while frozen")
		}
		if e.Anim != entity.AnimRespawning {
			t.Errorf("Expected anim %s, got %s", entity.AnimRespawning, e.Anim)
		}
		if count[intent.Fire](buf.Items()) != 0 {
			t.Error("Expected frozen player not to fire")
		}
	}
}

func TestFrozenSilencesJetpack(t *testing.T) {
	e, l := newPlayer(t, false)
	var buf intent.Buffer

	l.Update(e, Input{Up: true}, frame, &buf)
	if !l.Looping() {
		t.Fatal("Expected jetpack loop to start")
	}

	e.Frozen = true
	buf.Drain()
	l.Update(e, Input{Up: true}, frame, &buf)

	if count[intent.StopLoop](buf.Items()) != 1 {
		t.Errorf("Expected one stop-loop intent, got %d", count[intent.StopLoop](buf.Items()))
	}
	if l.Looping() {
		t.Error("Expected loop to be stopped")
	}
}

func TestGroundedForcesUpright(t *testing.T) {
	e, l := newPlayer(t, true)
	e.Body.Rotation = 123
	e.Body.Motion.VR = 400
	e.Body.Gravity.Enabled = false

	mode := l.Update(e, Input{Right: true}, frame, nil)

	if mode != ModeGrounded {
		t.Errorf("Expected grounded mode, got %s", mode)
	}
	if e.Body.Rotation != 0 || e.Body.Motion.VR != 0 {
		t.Errorf("Expected rotation and vr 0, got %v and %v", e.Body.Rotation, e.Body.Motion.VR)
	}
	if !e.Body.Gravity.Enabled {
		t.Error("Expected gravity enabled on the ground")
	}
}

func TestGroundedWalk(t *testing.T) {
	e, l := newPlayer(t, true)
	cfg := simulation.DefaultConfig().Player

	l.Update(e, Input{Left: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VX, -cfg.MovementFactor*frame, 1e-9, "velocity.x")
	if e.Anim != entity.AnimWalk {
		t.Errorf("Expected walk anim, got %s", e.Anim)
	}
	if !e.FlippedX {
		t.Error("Expected walking left to mirror the player")
	}

	l.Update(e, Input{}, frame, nil)
	if e.Anim != entity.AnimIdle {
		t.Errorf("Expected idle anim without input, got %s", e.Anim)
	}
	if !e.FlippedX {
		t.Error("Expected facing to persist without input")
	}

	l.Update(e, Input{Right: true}, frame, nil)
	if e.FlippedX {
		t.Error("Expected walking right to face right")
	}
}

func TestAnimEmittedOnChange(t *testing.T) {
	e, l := newPlayer(t, true)
	var buf intent.Buffer

	steps := []struct {
		in   Input
		want int
	}{
		{Input{Right: true}, 1},
		{Input{Right: true}, 0},
		{Input{Left: true}, 1},
		{Input{Left: true}, 0},
		{Input{}, 1},
		{Input{}, 0},
	}
	for i, step := range steps {
		e.Body.Motion.OnFloor = true
		l.Update(e, step.in, frame, &buf)
		if got := count[intent.Anim](buf.Drain()); got != step.want {
			t.Errorf("frame %d: Expected %d anim intents, got %d", i, step.want, got)
		}
	}
}

func TestJumpFiresOnPressOnly(t *testing.T) {
	e, l := newPlayer(t, true)
	cfg := simulation.DefaultConfig().Player

	l.Update(e, Input{Up: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VY, cfg.JumpFactor*frame, 1e-9, "velocity.y after press")

	// Still grounded and still holding: no second impulse
	l.Update(e, Input{Up: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VY, cfg.JumpFactor*frame, 1e-9, "velocity.y while held")

	l.Update(e, Input{}, frame, nil)
	l.Update(e, Input{Up: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VY, 2*cfg.JumpFactor*frame, 1e-9, "velocity.y after second press")
}

func TestGravityPerMode(t *testing.T) {
	tests := []struct {
		name    string
		onFloor bool
		in      Input
		mode    Mode
		gravity bool
	}{
		{"grounded", true, Input{Up: true}, ModeGrounded, true},
		{"coasting", false, Input{Left: true}, ModeAirborneNoThrust, true},
		{"thrusting", false, Input{Up: true}, ModeAirborneThrust, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, l := newPlayer(t, tt.onFloor)
			e.Body.Gravity.Enabled = !tt.gravity

			mode := l.Update(e, tt.in, frame, nil)

			if mode != tt.mode {
				t.Errorf("Expected mode %s, got %s", tt.mode, mode)
			}
			if e.Body.Gravity.Enabled != tt.gravity {
				t.Errorf("Expected gravity %v, got %v", tt.gravity, e.Body.Gravity.Enabled)
			}
		})
	}
}

func TestThrustPushesAlongFacing(t *testing.T) {
	e, l := newPlayer(t, false)
	cfg := simulation.DefaultConfig().Player

	l.Update(e, Input{Up: true}, frame, nil)

	approxEqual(t, e.Body.Motion.VX, 0, 1e-9, "velocity.x")
	approxEqual(t, e.Body.Motion.VY, cfg.JetpackThrust*frame, 1e-9, "velocity.y")
	if e.Anim != entity.AnimJetpack {
		t.Errorf("Expected jetpack anim, got %s", e.Anim)
	}

	// Facing 90 degrees counter-clockwise thrusts toward -x
	e2, l2 := newPlayer(t, false)
	e2.Body.Rotation = 90
	l2.Update(e2, Input{Up: true}, frame, nil)
	approxEqual(t, e2.Body.Motion.VX, -cfg.JetpackThrust*frame, 1e-9, "rotated velocity.x")
}

func TestThrustClampsSpeed(t *testing.T) {
	e, l := newPlayer(t, false)
	e.Body.Motion.VX = 500
	e.Body.Motion.VY = 500

	l.Update(e, Input{Up: true}, frame, nil)

	speed := math.Hypot(e.Body.Motion.VX, e.Body.Motion.VY)
	approxEqual(t, speed, simulation.DefaultConfig().Player.MaxThrustSpeed, 1e-9, "speed")
}

func TestAngularClampTighterWhileThrusting(t *testing.T) {
	cfg := simulation.DefaultConfig().Player

	e, l := newPlayer(t, false)
	e.Body.Motion.VR = 10000
	l.Update(e, Input{Up: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VR, cfg.TurnRateThrust*2, 1e-9, "vr while thrusting")

	e, l = newPlayer(t, false)
	e.Body.Motion.VR = -10000
	l.Update(e, Input{Left: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VR, -cfg.TurnRateFree*2, 1e-9, "vr while coasting")
}

func TestTurnInput(t *testing.T) {
	cfg := simulation.DefaultConfig().Player

	e, l := newPlayer(t, false)
	l.Update(e, Input{Left: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VR, cfg.TurnRateFree*frame*cfg.TurnGain, 1e-9, "coasting turn")

	e, l = newPlayer(t, false)
	l.Update(e, Input{Right: true, Up: true}, frame, nil)
	approxEqual(t, e.Body.Motion.VR, -cfg.TurnRateThrust*frame*cfg.TurnGain, 1e-9, "thrusting turn")
}

func TestSelfRightingBands(t *testing.T) {
	nudge := simulation.DefaultConfig().Player.TurnRateFree * frame

	tests := []struct {
		rotation float64
		want     float64
	}{
		{0, -2 * nudge},
		{45, -2 * nudge},
		{135, -nudge},
		{180, 0},
		{225, nudge},
		{315, 2 * nudge},
		{-45, 2 * nudge},
		{405, -2 * nudge},
	}

	for _, tt := range tests {
		e, l := newPlayer(t, false)
		e.Body.Rotation = tt.rotation

		l.Update(e, Input{}, frame, nil)

		approxEqual(t, e.Body.Motion.VR, tt.want, 1e-9, "vr")
	}
}

func TestNoSelfRightingWhileThrusting(t *testing.T) {
	e, l := newPlayer(t, false)
	e.Body.Rotation = 45

	l.Update(e, Input{Up: true}, frame, nil)

	if e.Body.Motion.VR != 0 {
		t.Errorf("Expected no correction while thrusting, got vr=%v", e.Body.Motion.VR)
	}
}

func TestRollingDialogAfterOneSecond(t *testing.T) {
	e, l := newPlayer(t, false)
	var buf intent.Buffer

	drift(l, e, Input{Left: true}, 50, &buf)
	if n := countDialog(buf.Items(), intent.JetpackRolling); n != 0 {
		t.Fatalf("Expected no rolling dialog before one second, got %d", n)
	}

	drift(l, e, Input{Left: true}, 100, &buf)
	if n := countDialog(buf.Items(), intent.JetpackRolling); n != 1 {
		t.Errorf("Expected exactly one rolling dialog, got %d", n)
	}
}

func TestRollingResetsWhenTurnReleased(t *testing.T) {
	e, l := newPlayer(t, false)
	var buf intent.Buffer

	for i := 0; i < 5; i++ {
		drift(l, e, Input{Left: true}, 40, &buf)
		drift(l, e, Input{}, 1, &buf)
	}

	if n := countDialog(buf.Items(), intent.JetpackRolling); n != 0 {
		t.Errorf("Expected interrupted turning never to trigger dialog, got %d", n)
	}
}

func TestUsageDialogOncePerCooldown(t *testing.T) {
	e, l := newPlayer(t, false)
	var buf intent.Buffer

	// 2.1 seconds of continuous thrust
	drift(l, e, Input{Up: true}, 126, &buf)
	if n := countDialog(buf.Items(), intent.JetpackUsage); n != 1 {
		t.Fatalf("Expected one usage dialog after 2.1s, got %d", n)
	}

	// keep thrusting well inside the cooldown
	drift(l, e, Input{Up: true}, 600, &buf)
	if n := countDialog(buf.Items(), intent.JetpackUsage); n != 1 {
		t.Fatalf("Expected no repeat inside cooldown, got %d", n)
	}

	// release until the cooldown has run out, then re-engage
	drift(l, e, Input{}, 20*60, &buf)
	e.Body.Motion.VX, e.Body.Motion.VY = 0, 0
	drift(l, e, Input{Up: true}, 126, &buf)
	if n := countDialog(buf.Items(), intent.JetpackUsage); n != 2 {
		t.Errorf("Expected a second usage dialog after cooldown, got %d", n)
	}
}

func TestStopLoopFiresOnce(t *testing.T) {
	e, l := newPlayer(t, false)
	var buf intent.Buffer

	drift(l, e, Input{Up: true}, 30, &buf)
	if n := count[intent.Loop](buf.Items()); n != 1 {
		t.Fatalf("Expected loop to start once, got %d", n)
	}
	if n := count[intent.Sound](buf.Items()); n != 1 {
		t.Fatalf("Expected one start sound, got %d", n)
	}

	buf.Drain()
	drift(l, e, Input{}, 1, &buf)
	if n := count[intent.StopLoop](buf.Items()); n != 1 {
		t.Fatalf("Expected one stop-loop on release, got %d", n)
	}

	buf.Drain()
	drift(l, e, Input{}, 1, &buf)
	if n := count[intent.StopLoop](buf.Items()); n != 0 {
		t.Errorf("Expected no further stop-loop, got %d", n)
	}
}

func TestPuffParticles(t *testing.T) {
	cfg := simulation.DefaultConfig().Player
	e, l := newPlayer(t, false)
	center := e.Body.Center()
	var buf intent.Buffer

	l.Update(e, Input{Up: true}, frame, &buf)

	var particles []intent.Particle
	for _, it := range buf.Items() {
		if p, ok := it.(intent.Particle); ok {
			particles = append(particles, p)
		}
	}
	if len(particles) != 2 {
		t.Fatalf("Expected 2 particles, got %d", len(particles))
	}
	if particles[0].Effect != EffectPuff || particles[1].Effect != EffectGasburn {
		t.Errorf("Expected puff then gasburn, got %s then %s", particles[0].Effect, particles[1].Effect)
	}
	approxEqual(t, particles[0].Pos.X, center.X-cfg.PuffOffsetX, 1e-9, "puff x")
	approxEqual(t, particles[0].Pos.Y, center.Y, 1e-9, "puff y")
	approxEqual(t, particles[1].Pos.Y, center.Y+cfg.GasOffsetY, 1e-9, "gasburn y")
	approxEqual(t, particles[1].Rotation, -10, 1e-9, "gasburn rotation")
	if particles[0].Rotation > 0 || particles[0].Rotation < -20 {
		t.Errorf("Expected puff rotation within [-20, 0], got %v", particles[0].Rotation)
	}

	// Next frame is inside the puff interval and has barely moved
	buf.Drain()
	e.Body.Pos.Y += e.Body.Motion.VY * frame
	l.Update(e, Input{Up: true}, frame, &buf)
	if n := count[intent.Particle](buf.Items()); n != 0 {
		t.Errorf("Expected no puff inside the interval, got %d", n)
	}
}

func TestPuffMirrorsWhenFlipped(t *testing.T) {
	cfg := simulation.DefaultConfig().Player
	e, l := newPlayer(t, false)
	e.FlippedX = true
	center := e.Body.Center()
	var buf intent.Buffer

	l.Update(e, Input{Up: true}, frame, &buf)

	for _, it := range buf.Items() {
		p, ok := it.(intent.Particle)
		if !ok || p.Effect != EffectGasburn {
			continue
		}
		approxEqual(t, p.Pos.X, center.X+cfg.PuffOffsetX, 1e-9, "gasburn x")
		approxEqual(t, p.Rotation, 10, 1e-9, "gasburn rotation")
	}
}

func TestFireIntent(t *testing.T) {
	e, l := newPlayer(t, true)
	var buf intent.Buffer

	l.Update(e, Input{Pointer: true}, frame, &buf)
	l.Update(e, Input{Fire: true}, frame, &buf)
	l.Update(e, Input{}, frame, &buf)

	if n := count[intent.Fire](buf.Items()); n != 2 {
		t.Errorf("Expected 2 fire intents, got %d", n)
	}
}

package control

import (
	"math/rand"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/physics"
	"chosenoffset.com/ns2d/internal/simulation"
)

// Sound names emitted by the jetpack
const (
	SoundJetpackLoop  = "jetpack-loop"
	SoundJetpackStart = "jetpack-start"

	jetpackLoopVolume  = 0.09
	jetpackStartVolume = 0.05
)

// Particle effects emitted by the jetpack exhaust
const (
	EffectPuff    = "puff"
	EffectGasburn = "gasburn"
)

// movedThreshold is the distance under which a thrusting player counts as stuck
const movedThreshold = 0.1

// timerSet holds the cooldowns and hold durations a locomotion machine tracks
type timerSet struct {
	GasCooldown     float64 // until the next exhaust puff
	UsageTime       float64 // continuous thrust
	RollingTime     float64 // continuous turning without thrust
	MessageCooldown float64 // until another dialog line may play
}

// Locomotion is the control state machine for one player
type Locomotion struct {
	cfg simulation.PlayerConfig
	rng *rand.Rand

	timers   timerSet
	looping  bool
	lastPuff geom.Point
	jumpHeld bool
	mode     Mode

	// last animation sent, so only changes are emitted
	anim    string
	flipped bool
}

// NewLocomotion creates a state machine with the given tuning.
// A nil rng gets a fixed seed.
func NewLocomotion(cfg simulation.PlayerConfig, rng *rand.Rand) *Locomotion {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Locomotion{cfg: cfg, rng: rng}
}

// Mode returns the state chosen by the last Update
func (l *Locomotion) Mode() Mode { return l.mode }

// Looping reports whether the jetpack loop sound is playing
func (l *Locomotion) Looping() bool { return l.looping }

// Update runs one frame of player control for e. Contacts are read from the
// previous resolver pass.
func (l *Locomotion) Update(e *entity.Entity, in Input, dt float64, sink intent.Sink) Mode {
	if sink == nil {
		sink = intent.Discard
	}
	b := e.Body
	m := &b.Motion

	l.timers.MessageCooldown -= dt
	jumpPressed := in.Up && !l.jumpHeld
	l.jumpHeld = in.Up

	// frozen player does not act
	if e.Frozen {
		l.stopLooping(sink)
		l.setAnim(e, entity.AnimRespawning, sink)
		b.Gravity.Enabled = false
		m.VR, m.VX, m.VY = 0, 0, 0
		l.mode = ModeFrozen
		return l.mode
	}

	if in.Fire || in.Pointer {
		sink.Emit(intent.Fire{EntityID: e.ID})
	}

	b.Gravity.Enabled = true
	if m.OnFloor {
		l.walk(e, in, jumpPressed, dt, sink)
	} else {
		l.fly(e, in, dt, sink)
	}
	return l.mode
}

// walk moves left and right; rotation is always upright on the ground
func (l *Locomotion) walk(e *entity.Entity, in Input, jumpPressed bool, dt float64, sink intent.Sink) {
	b := e.Body
	m := &b.Motion

	l.stopLooping(sink)

	b.Rotation = 0
	m.VR = 0

	var dx, dy float64
	if in.Left {
		dx = -l.cfg.MovementFactor
		e.FlippedX = true
	}
	if in.Right {
		dx = l.cfg.MovementFactor
		e.FlippedX = false
	}
	if jumpPressed {
		dy = l.cfg.JumpFactor
	}

	anim := entity.AnimIdle
	if dx != 0 {
		m.VX += dx * dt
		anim = entity.AnimWalk
	}
	if dy != 0 {
		m.VY += dy * dt
	}

	l.setAnim(e, anim, sink)
	l.mode = ModeGrounded
}

func (l *Locomotion) fly(e *entity.Entity, in Input, dt float64, sink intent.Sink) {
	b := e.Body
	m := &b.Motion

	l.setAnim(e, entity.AnimJetpack, sink)

	thrust := in.Up
	turningSpeed := l.cfg.TurnRateFree
	if thrust {
		turningSpeed = l.cfg.TurnRateThrust
	}

	var rx float64
	if in.Left {
		rx += turningSpeed
	}
	if in.Right {
		rx -= turningSpeed
	}

	if rx != 0 {
		if !thrust {
			l.timers.RollingTime += dt
			if l.timers.RollingTime >= l.cfg.RollingDialogAfter && l.timers.MessageCooldown <= 0 {
				l.timers.MessageCooldown = l.cfg.RollingCooldown
				sink.Emit(intent.Dialog{Category: intent.JetpackRolling})
			}
		} else {
			l.timers.RollingTime = 0
		}
		m.VR += rx * dt * l.cfg.TurnGain
	} else {
		l.timers.RollingTime = 0

		// not steering and not thrusting: straighten up.
		// The bands overlap, so below 90 and above 270 get a double nudge.
		if !thrust {
			nudge := turningSpeed * dt
			rotation := geom.NormalizeDegrees(b.Rotation)
			if rotation < 180 {
				m.VR -= nudge
			}
			if rotation > 180 {
				m.VR += nudge
			}
			if rotation < 90 {
				m.VR -= nudge
			}
			if rotation > 270 {
				m.VR += nudge
			}
		}
	}

	if thrust {
		l.startLooping(dt, sink)
		l.timers.GasCooldown -= dt

		moved := geom.Distance(l.lastPuff, b.Pos)
		if moved <= movedThreshold {
			l.timers.UsageTime = 0
		}
		if l.timers.GasCooldown <= 0 || moved >= l.cfg.PuffDistance {
			l.puff(e, sink)
		}

		b.Gravity.Enabled = false
		physics.Push(b, b.Rotation+l.cfg.ThrustVector, l.cfg.JetpackThrust*dt)
		physics.ClampVelocity(b, 0, l.cfg.MaxThrustSpeed)
		m.VR = geom.Clamp(m.VR, -l.cfg.TurnRateThrust*2, l.cfg.TurnRateThrust*2)
		l.mode = ModeAirborneThrust
		return
	}

	l.stopLooping(sink)
	b.Gravity.Enabled = true
	m.VR = geom.Clamp(m.VR, -l.cfg.TurnRateFree*2, l.cfg.TurnRateFree*2)
	l.mode = ModeAirborneNoThrust
}

// puff emits the exhaust particles behind the jetpack
func (l *Locomotion) puff(e *entity.Entity, sink intent.Sink) {
	b := e.Body
	l.lastPuff = b.Pos
	l.timers.GasCooldown = l.cfg.PuffInterval

	mirror := 1.0
	offsetX := -l.cfg.PuffOffsetX
	if e.FlippedX {
		mirror = -1
		offsetX = l.cfg.PuffOffsetX
	}
	center := b.Center()
	spread := l.rng.Float64()*20 - 10

	sink.Emit(intent.Particle{
		Pos:      geom.Rotate(geom.Point{X: offsetX}, b.Rotation).Add(center),
		Rotation: b.Rotation - (10 + spread*mirror),
		Effect:   EffectPuff,
	})
	sink.Emit(intent.Particle{
		Pos:      geom.Rotate(geom.Point{X: offsetX, Y: l.cfg.GasOffsetY}, b.Rotation).Add(center),
		Rotation: b.Rotation - 10*mirror,
		Effect:   EffectGasburn,
	})
}

func (l *Locomotion) startLooping(dt float64, sink intent.Sink) {
	l.timers.UsageTime += dt
	if l.timers.UsageTime > l.cfg.UsageDialogAfter && l.timers.MessageCooldown <= 0 {
		l.timers.MessageCooldown = l.cfg.UsageCooldown
		sink.Emit(intent.Dialog{Category: intent.JetpackUsage})
	}

	if !l.looping {
		l.looping = true
		sink.Emit(intent.Loop{Name: SoundJetpackLoop, Volume: jetpackLoopVolume})
		sink.Emit(intent.Sound{Name: SoundJetpackStart, Volume: jetpackStartVolume})
	}
}

// stopLooping is idempotent: the stop intent fires only on the transition
func (l *Locomotion) stopLooping(sink intent.Sink) {
	l.timers.UsageTime = 0
	if l.looping {
		l.looping = false
		sink.Emit(intent.StopLoop{Name: SoundJetpackLoop})
	}
}

// setAnim emits an Anim intent only when the animation or its facing changes
func (l *Locomotion) setAnim(e *entity.Entity, id string, sink intent.Sink) {
	e.Anim = id
	if l.anim == id && l.flipped == e.FlippedX {
		return
	}
	l.anim, l.flipped = id, e.FlippedX
	sink.Emit(intent.Anim{EntityID: e.ID, ID: id, FlippedX: e.FlippedX})
}

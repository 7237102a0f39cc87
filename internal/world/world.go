// Package world holds the entities of a level and runs the per-frame
// movement pipeline: player control, then integration, then collision.
package world

import (
	"errors"
	"fmt"
	"math/rand"

	"chosenoffset.com/ns2d/internal/control"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/logger"
	"chosenoffset.com/ns2d/internal/physics"
	"chosenoffset.com/ns2d/internal/simulation"
	"chosenoffset.com/ns2d/internal/world/mask"

	"github.com/google/uuid"
)

var (
	// ErrNoBody is returned when adding an entity without a body
	ErrNoBody = errors.New("entity has no body")

	// ErrUnknownEntity is returned for ids that are not in the world
	ErrUnknownEntity = errors.New("unknown entity")
)

// World is the set of entities sharing one solidity mask
type World struct {
	resolver   *physics.Resolver
	integrator *physics.Integrator
	player     simulation.PlayerConfig
	rng        *rand.Rand
	sink       intent.Sink
	mask       mask.SolidityMask

	entities []*entity.Entity
	byID     map[uuid.UUID]*entity.Entity
	control  map[uuid.UUID]*control.Locomotion
}

// Option configures a World
type Option func(*World)

// WithIntentSink routes presentation intents to sink
func WithIntentSink(sink intent.Sink) Option {
	return func(w *World) { w.sink = sink }
}

// WithDebugSink exposes every resolver sample point
func WithDebugSink(sink physics.DebugSink) Option {
	return func(w *World) {
		w.resolver = physics.NewResolver(w.mask, physics.WithDebugSink(sink))
	}
}

// WithRand seeds the cosmetic randomness of player control
func WithRand(rng *rand.Rand) Option {
	return func(w *World) { w.rng = rng }
}

// New creates an empty world over m using the rules in cfg
func New(cfg *simulation.Config, m mask.SolidityMask, opts ...Option) *World {
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	if m == nil {
		m = mask.Empty{}
	}
	w := &World{
		resolver:   physics.NewResolver(m),
		integrator: physics.NewIntegrator(cfg.Physics.GravityAccel),
		player:     cfg.Player,
		sink:       intent.Discard,
		mask:       m,
		byID:       make(map[uuid.UUID]*entity.Entity),
		control:    make(map[uuid.UUID]*control.Locomotion),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sink == nil {
		w.sink = intent.Discard
	}
	return w
}

// Mask returns the current solidity mask
func (w *World) Mask() mask.SolidityMask { return w.mask }

// SetMask swaps the level geometry between frames
func (w *World) SetMask(m mask.SolidityMask) {
	if m == nil {
		m = mask.Empty{}
	}
	w.mask = m
	w.resolver.SetMask(m)
}

// Add inserts an entity. Player-controlled entities get their own
// locomotion state.
func (w *World) Add(e *entity.Entity) error {
	if e == nil || e.Body == nil {
		return ErrNoBody
	}
	if _, exists := w.byID[e.ID]; exists {
		return fmt.Errorf("entity %s already added", e.ID)
	}

	w.entities = append(w.entities, e)
	w.byID[e.ID] = e
	if e.PlayerControlled {
		w.tunePlayer(e)
		w.control[e.ID] = control.NewLocomotion(w.player, w.rng)
	}

	logger.L().Debug("entity added", "id", e.ID, "name", e.Name, "kind", e.Kind)
	return nil
}

// tunePlayer applies the configured footprint and friction to a player
func (w *World) tunePlayer(e *entity.Entity) {
	if w.player.Width > 0 && w.player.Height > 0 {
		e.Body.Bounds = physics.NewBounds(w.player.Width, w.player.Height)
	}
	e.Body.Motion.Friction = w.player.Friction
}

// Remove deletes an entity by id
func (w *World) Remove(id uuid.UUID) {
	if _, ok := w.byID[id]; !ok {
		return
	}
	delete(w.byID, id)
	delete(w.control, id)
	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
}

// Get returns an entity by id
func (w *World) Get(id uuid.UUID) (*entity.Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// Entities returns the entities in insertion order
func (w *World) Entities() []*entity.Entity {
	return w.entities
}

// Mode returns the locomotion mode of a player after the last step
func (w *World) Mode(id uuid.UUID) (control.Mode, bool) {
	l, ok := w.control[id]
	if !ok {
		return control.ModeFrozen, false
	}
	return l.Mode(), true
}

// Step advances every dynamic entity by dt seconds. Player control reads the
// contacts left by the previous step.
func (w *World) Step(dt float64, in control.Input) {
	for _, e := range w.entities {
		if l, ok := w.control[e.ID]; ok {
			l.Update(e, in, dt, w.sink)
		}
	}

	for _, e := range w.entities {
		if !e.Dynamic {
			continue
		}
		w.integrator.Integrate(e.Body, dt)
		w.resolver.Resolve(e.Body, dt)
	}
}

// Push adds a velocity impulse to an entity
func (w *World) Push(id uuid.UUID, angleDeg, magnitude float64) error {
	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("push %s: %w", id, ErrUnknownEntity)
	}
	physics.Push(e.Body, angleDeg, magnitude)
	return nil
}

// ClampVelocity limits an entity's speed
func (w *World) ClampVelocity(id uuid.UUID, min, max float64) error {
	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("clamp %s: %w", id, ErrUnknownEntity)
	}
	physics.ClampVelocity(e.Body, min, max)
	return nil
}

// Contacts reports the floor and wall flags from the last resolver pass
func (w *World) Contacts(id uuid.UUID) (onFloor, onWall bool, err error) {
	e, ok := w.byID[id]
	if !ok {
		return false, false, fmt.Errorf("contacts %s: %w", id, ErrUnknownEntity)
	}
	return e.Body.Motion.OnFloor, e.Body.Motion.OnWall, nil
}

// Overlapping returns the other entities whose footprints intersect e
func (w *World) Overlapping(e *entity.Entity) []*entity.Entity {
	if e == nil {
		return nil
	}
	var hits []*entity.Entity
	for _, other := range w.entities {
		if other.ID == e.ID {
			continue
		}
		if e.Overlaps(other) {
			hits = append(hits, other)
		}
	}
	return hits
}

// Build builds every unbuilt prop the player overlaps when the build input
// is held, and returns the props built this frame
func (w *World) Build(player *entity.Entity, in control.Input) []*entity.Entity {
	if player == nil || player.Frozen || !(in.Fire || in.ModeToggle) {
		return nil
	}
	var built []*entity.Entity
	for _, e := range w.Overlapping(player) {
		if e.TryBuild() {
			w.sink.Emit(intent.Anim{EntityID: e.ID, ID: e.Anim})
			built = append(built, e)
		}
	}
	return built
}

// Demolish returns every built prop e overlaps to its unbuilt state, and
// returns the props it knocked down
func (w *World) Demolish(e *entity.Entity) []*entity.Entity {
	var wrecked []*entity.Entity
	for _, other := range w.Overlapping(e) {
		if other.Unbuild() {
			w.sink.Emit(intent.Anim{EntityID: other.ID, ID: other.Anim})
			wrecked = append(wrecked, other)
		}
	}
	return wrecked
}

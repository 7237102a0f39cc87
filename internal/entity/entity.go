// Package entity describes the things that live in a level: the player,
// enemies, projectiles and static props such as spawners.
package entity

import (
	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/physics"

	"github.com/google/uuid"
)

// Kind identifies the kind of entity
type Kind string

const (
	KindPlayer     Kind = "player"
	KindEnemy      Kind = "enemy"
	KindProjectile Kind = "projectile"
	KindProp       Kind = "prop"
)

// Animation ids the locomotion state machine switches between
const (
	AnimRespawning = "player-respawning"
	AnimIdle       = "player-idle"
	AnimWalk       = "player-walk"
	AnimJetpack    = "player-jetpack"
)

// Entity is a body in the level plus the presentation state collaborators read
type Entity struct {
	ID   uuid.UUID
	Name string
	Kind Kind

	// Body is always present; Dynamic decides whether the frame pipeline moves it
	Body    *physics.Body
	Dynamic bool

	// Player control
	PlayerControlled bool
	Frozen           bool // e.g. respawn invulnerability; suppresses all control

	// Build is set on props the player can build
	Build *BuildState

	// Presentation
	Anim     string
	FlippedX bool
}

// BuildState tracks whether a buildable prop has been built
type BuildState struct {
	Built       bool
	BuiltAnim   string
	UnbuiltAnim string
}

// TryBuild builds the prop if it is buildable and not yet built
func (e *Entity) TryBuild() bool {
	if e.Build == nil || e.Build.Built {
		return false
	}
	e.Build.Built = true
	if e.Build.BuiltAnim != "" {
		e.Anim = e.Build.BuiltAnim
	}
	return true
}

// Unbuild returns a built prop to its unbuilt state
func (e *Entity) Unbuild() bool {
	if e.Build == nil || !e.Build.Built {
		return false
	}
	e.Build.Built = false
	e.Anim = e.Build.UnbuiltAnim
	return true
}

// New creates an entity around an existing body.
// A nil body is a construction error and panics.
func New(name string, kind Kind, body *physics.Body) *Entity {
	if body == nil {
		panic("entity: " + name + " has no body")
	}
	return &Entity{
		ID:   uuid.New(),
		Name: name,
		Kind: kind,
		Body: body,
	}
}

// Position returns the anchor position
func (e *Entity) Position() geom.Point {
	return e.Body.Pos
}

// Overlaps reports whether two entities' footprints intersect
func (e *Entity) Overlaps(other *Entity) bool {
	if other == nil {
		return false
	}
	return physics.Overlaps(e.Body, other.Body)
}

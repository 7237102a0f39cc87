package entity

import (
	"encoding/json"
	"fmt"
	"os"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/physics"
)

// Definition describes an entity kind that can be spawned
type Definition struct {
	ID   string `json:"id"`   // Unique identifier
	Name string `json:"name"` // Display name
	Kind Kind   `json:"kind"`

	// Footprint
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Physics
	Dynamic         bool     `json:"dynamic"`                    // Moved by the frame pipeline
	Friction        float64  `json:"friction,omitempty"`         // Velocity damping per second
	GravityStrength *float64 `json:"gravity_strength,omitempty"` // Defaults to 1; 0 disables gravity

	PlayerControlled bool `json:"player_controlled,omitempty"`

	// Buildable props switch to BuiltAnim once the player builds them
	Buildable bool   `json:"buildable,omitempty"`
	BuiltAnim string `json:"built_anim,omitempty"`

	// Visual
	Anim string `json:"anim"`
}

// Library contains all entity definitions for a level pack
type Library struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Entities    []Definition `json:"entities"`

	byID map[string]*Definition
}

// LoadLibrary loads entity definitions from a JSON file
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity library: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse entity library: %w", err)
	}

	if err := lib.index(); err != nil {
		return nil, fmt.Errorf("invalid entity library %s: %w", path, err)
	}
	return &lib, nil
}

// NewLibrary builds a library from in-memory definitions
func NewLibrary(name string, defs ...Definition) (*Library, error) {
	lib := &Library{Name: name, Entities: defs}
	if err := lib.index(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (lib *Library) index() error {
	lib.byID = make(map[string]*Definition, len(lib.Entities))
	for i := range lib.Entities {
		def := &lib.Entities[i]
		if def.ID == "" {
			return fmt.Errorf("entity %d has no id", i)
		}
		if _, dup := lib.byID[def.ID]; dup {
			return fmt.Errorf("duplicate entity id: %s", def.ID)
		}
		if def.Kind == "" {
			def.Kind = KindProp
		}
		if def.Name == "" {
			def.Name = def.ID
		}
		lib.byID[def.ID] = def
	}
	return nil
}

// Get returns a definition by id
func (lib *Library) Get(id string) (*Definition, bool) {
	def, ok := lib.byID[id]
	return def, ok
}

// Spawn creates an entity from the definition with the given id at pos
func (lib *Library) Spawn(id string, pos geom.Point) (*Entity, error) {
	def, ok := lib.Get(id)
	if !ok {
		return nil, fmt.Errorf("entity definition not found: %s", id)
	}
	return def.Spawn(pos)
}

// Spawn creates a new entity instance. A footprint without area is rejected
// here rather than discovered mid-frame.
func (def *Definition) Spawn(pos geom.Point) (*Entity, error) {
	body, err := physics.NewBody(pos, physics.NewBounds(def.Width, def.Height))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", def.ID, err)
	}

	body.Motion.Friction = def.Friction
	if def.GravityStrength != nil {
		body.Gravity.Strength = *def.GravityStrength
		body.Gravity.Enabled = *def.GravityStrength != 0
	}

	e := New(def.Name, def.Kind, body)
	e.Dynamic = def.Dynamic
	e.PlayerControlled = def.PlayerControlled
	e.Anim = def.Anim
	if def.Buildable {
		e.Build = &BuildState{BuiltAnim: def.BuiltAnim, UnbuiltAnim: def.Anim}
	}
	return e, nil
}

// DefaultLibrary returns the built-in entity kinds
func DefaultLibrary() *Library {
	weightless := 0.0
	lib, err := NewLibrary("default",
		Definition{ID: "player", Name: "Player", Kind: KindPlayer, Width: 32, Height: 32, Dynamic: true, Friction: 4, PlayerControlled: true, Anim: AnimIdle},
		Definition{ID: "skulk", Name: "Skulk", Kind: KindEnemy, Width: 32, Height: 32, Dynamic: true, Friction: 2, Anim: "skulk"},
		Definition{ID: "bullet", Name: "Bullet", Kind: KindProjectile, Width: 7, Height: 4, Dynamic: true, GravityStrength: &weightless, Anim: "bullet"},
		Definition{ID: "duct", Name: "Duct", Kind: KindProp, Width: 32, Height: 32, Buildable: true, Anim: "duct-unbuilt", BuiltAnim: "duct-built"},
	)
	if err != nil {
		panic(err)
	}
	return lib
}

// Package intent carries fire-and-forget requests from the movement core to
// presentation collaborators (animation, audio, particles, dialog, weapons).
// The core never learns whether an intent was honoured.
package intent

import (
	"chosenoffset.com/ns2d/internal/core/geom"

	"github.com/google/uuid"
)

// Intent is a request emitted toward a presentation collaborator
type Intent interface {
	isIntent()
}

// Anim switches the animation shown for an entity
type Anim struct {
	EntityID uuid.UUID
	ID       string
	FlippedX bool
}

func (Anim) isIntent() {}

// Sound plays a one-shot sound effect
type Sound struct {
	Name   string
	Volume float64
}

func (Sound) isIntent() {}

// Loop starts a looping sound effect
type Loop struct {
	Name   string
	Volume float64
}

func (Loop) isIntent() {}

// StopLoop stops a looping sound effect
type StopLoop struct {
	Name string
}

func (StopLoop) isIntent() {}

// Particle spawns a cosmetic particle effect
type Particle struct {
	Pos      geom.Point
	Rotation float64
	Effect   string
}

func (Particle) isIntent() {}

// DialogCategory selects a pool of dialog lines
type DialogCategory int

const (
	JetpackUsage DialogCategory = iota
	JetpackRolling
)

// String returns the category name
func (c DialogCategory) String() string {
	switch c {
	case JetpackUsage:
		return "JETPACK_USAGE"
	case JetpackRolling:
		return "JETPACK_ROLLING"
	default:
		return "UNKNOWN"
	}
}

// Dialog asks the dialog collaborator to say a line from a category
type Dialog struct {
	Category DialogCategory
}

func (Dialog) isIntent() {}

// Fire asks the weapon collaborator to fire this frame
type Fire struct {
	EntityID uuid.UUID
}

func (Fire) isIntent() {}

// Sink receives intents. Implementations must not block.
type Sink interface {
	Emit(Intent)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Intent)

// Emit calls f
func (f SinkFunc) Emit(i Intent) { f(i) }

// Discard drops every intent
var Discard Sink = SinkFunc(func(Intent) {})

// Buffer collects intents in emission order
type Buffer struct {
	items []Intent
}

// Emit appends an intent
func (b *Buffer) Emit(i Intent) {
	b.items = append(b.items, i)
}

// Items returns the buffered intents
func (b *Buffer) Items() []Intent {
	return b.items
}

// Drain returns the buffered intents and empties the buffer
func (b *Buffer) Drain() []Intent {
	items := b.items
	b.items = nil
	return items
}

// Len returns the number of buffered intents
func (b *Buffer) Len() int {
	return len(b.items)
}

// Multi fans intents out to every sink
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(i Intent) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(i)
			}
		}
	})
}

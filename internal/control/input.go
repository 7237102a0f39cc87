// Package control turns the player's input snapshot and contact flags into
// forces on the player's body and presentation intents.
package control

// Input is the per-frame snapshot of player controls
type Input struct {
	Left       bool
	Right      bool
	Up         bool // jump on the ground, jetpack in the air
	Fire       bool
	ModeToggle bool
	Pointer    bool // primary pointer button
}

// Mode is the locomotion state chosen for a frame
type Mode int

const (
	ModeFrozen Mode = iota
	ModeGrounded
	ModeAirborneNoThrust
	ModeAirborneThrust
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeFrozen:
		return "frozen"
	case ModeGrounded:
		return "grounded"
	case ModeAirborneNoThrust:
		return "airborne"
	case ModeAirborneThrust:
		return "thrust"
	default:
		return "unknown"
	}
}

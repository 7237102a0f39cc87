package terminal

import (
	"chosenoffset.com/ns2d/internal/control"

	"github.com/gdamore/tcell/v2"
)

// Terminals report key presses but not releases, so a press counts as held
// until it times out. Auto-repeat refreshes the timer while a key is down.
const keyHold = 0.25

// control slots a key can hold
type slot int

const (
	slotLeft slot = iota
	slotRight
	slotUp
	slotFire
	slotBuild
	slotCount
)

// Keys turns key press events into a held-key snapshot
type Keys struct {
	hold [slotCount]float64
}

// Press marks the control behind a key as held. It reports false for keys
// that do not map to a control.
func (k *Keys) Press(key tcell.Key, r rune) bool {
	s, ok := slotFor(key, r)
	if !ok {
		return false
	}
	k.hold[s] = keyHold
	return true
}

// Tick ages every held key by dt seconds
func (k *Keys) Tick(dt float64) {
	for i := range k.hold {
		if k.hold[i] > 0 {
			k.hold[i] -= dt
		}
	}
}

// Input returns the control snapshot for the current frame
func (k *Keys) Input() control.Input {
	return control.Input{
		Left:       k.hold[slotLeft] > 0,
		Right:      k.hold[slotRight] > 0,
		Up:         k.hold[slotUp] > 0,
		Fire:       k.hold[slotFire] > 0,
		ModeToggle: k.hold[slotBuild] > 0,
	}
}

func slotFor(key tcell.Key, r rune) (slot, bool) {
	switch key {
	case tcell.KeyLeft:
		return slotLeft, true
	case tcell.KeyRight:
		return slotRight, true
	case tcell.KeyUp:
		return slotUp, true
	case tcell.KeyRune:
		switch r {
		case 'a', 'A':
			return slotLeft, true
		case 'd', 'D':
			return slotRight, true
		case 'w', 'W':
			return slotUp, true
		case ' ':
			return slotFire, true
		case 'e', 'E':
			return slotBuild, true
		}
	}
	return 0, false
}

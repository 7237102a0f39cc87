// Package dialog picks the line a character says for a dialog intent.
package dialog

import (
	"fmt"
	"math/rand"
	"os"

	"chosenoffset.com/ns2d/internal/intent"

	"gopkg.in/yaml.v3"
)

// DefaultDuration is how long a line stays on screen, in seconds
const DefaultDuration = 3.0

// Lines maps a dialog category name to its candidate lines
type Lines map[string][]string

// DefaultLines are the built-in jetpack quips
func DefaultLines() Lines {
	return Lines{
		intent.JetpackUsage.String(): {
			"This thing drinks fuel like water.",
			"Easy on the throttle...",
			"I can feel the heat through my boots.",
			"Going up!",
		},
		intent.JetpackRolling.String(): {
			"Whoa, I'm getting dizzy.",
			"Which way is up again?",
			"Barrel roll!",
		},
	}
}

// LoadLines reads dialog lines from a YAML file:
//
//	JETPACK_USAGE:
//	  - "Going up!"
func LoadLines(path string) (Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialog lines: %w", err)
	}
	var lines Lines
	if err := yaml.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse dialog lines %s: %w", path, err)
	}
	return lines, nil
}

// Speaker chooses random lines per category
type Speaker struct {
	lines Lines
	rng   *rand.Rand
}

// NewSpeaker creates a speaker. Nil lines fall back to the defaults.
func NewSpeaker(lines Lines, rng *rand.Rand) *Speaker {
	if lines == nil {
		lines = DefaultLines()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Speaker{lines: lines, rng: rng}
}

// Say returns a random line for the category, or false if it has none
func (s *Speaker) Say(c intent.DialogCategory) (string, bool) {
	candidates := s.lines[c.String()]
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

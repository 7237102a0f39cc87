package game

import (
	"fmt"

	"chosenoffset.com/ns2d/internal/control"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/logger"
	"chosenoffset.com/ns2d/internal/render"
	"chosenoffset.com/ns2d/internal/world/maploader"
)

// Manager owns the running level and switches between the levels of a pack.
type Manager struct {
	opts    Options
	levels  []string
	current int
	game    *Game
}

// NewManager creates a manager over level files and starts the first one.
// opts.Level is replaced by each loaded level.
func NewManager(opts Options, levels []string) (*Manager, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels to play")
	}
	m := &Manager{opts: opts, levels: levels}
	if err := m.LoadLevel(0); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadLevel loads the level at index i and makes it current. On failure the
// running level is kept.
func (m *Manager) LoadLevel(i int) error {
	if i < 0 || i >= len(m.levels) {
		return fmt.Errorf("level index %d out of range", i)
	}
	level, err := maploader.LoadLevel(m.levels[i])
	if err != nil {
		return fmt.Errorf("failed to load level: %w", err)
	}

	opts := m.opts
	opts.Level = level
	if m.game != nil {
		// carry runtime settings over to the next level
		opts.Config = m.game.Config
		opts.Debug = m.game.Debug
	}
	g, err := NewGame(opts)
	if err != nil {
		return fmt.Errorf("failed to start level %s: %w", m.levels[i], err)
	}
	if m.game != nil {
		g.ScreenWidth, g.ScreenHeight = m.game.ScreenWidth, m.game.ScreenHeight
		m.game.Audio.Emit(intent.StopLoop{Name: control.SoundJetpackLoop})
	}

	m.game = g
	m.current = i
	return nil
}

// Game returns the running level
func (m *Manager) Game() *Game { return m.game }

// Current returns the index of the running level
func (m *Manager) Current() int { return m.current }

// Update implements render.Game.
func (m *Manager) Update() error {
	if m.opts.Input.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrQuit
	}
	if m.opts.Input.IsKeyJustPressed(render.KeyTab) {
		next := (m.current + 1) % len(m.levels)
		if err := m.LoadLevel(next); err != nil {
			logger.L().Error("level switch failed", "error", err)
		}
	}
	return m.game.Update()
}

// Draw implements render.Game.
func (m *Manager) Draw(screen render.Image) {
	m.game.Draw(screen)
}

// Layout implements render.Game.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	return m.game.Layout(outsideWidth, outsideHeight)
}

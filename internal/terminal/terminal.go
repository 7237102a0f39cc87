// Package terminal plays a level in a text terminal with tcell: one
// character per mask cell, keyboard only.
package terminal

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/logger"
	"chosenoffset.com/ns2d/internal/simulation"
	"chosenoffset.com/ns2d/internal/ui/dialog"
	"chosenoffset.com/ns2d/internal/world"
	"chosenoffset.com/ns2d/internal/world/mask"
	"chosenoffset.com/ns2d/internal/world/maploader"

	"github.com/gdamore/tcell/v2"
)

const (
	statusDuration = 3.0
	trailDuration  = 0.3
)

var (
	rockStyle   = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	playerStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	enemyStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	propStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	builtStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	trailStyle  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Canvas is the part of tcell.Screen a Session draws on
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// trail is an exhaust puff shown for a short time
type trail struct {
	pos  geom.Point
	left float64
}

// Session is one level running in the terminal
type Session struct {
	cfg     *simulation.Config
	mask    *mask.Grid
	world   *world.World
	player  *entity.Entity
	speaker *dialog.Speaker
	keys    Keys
	intents intent.Buffer

	status     string
	statusLeft float64
	trails     []trail
}

// NewSession builds the world for level
func NewSession(cfg *simulation.Config, level *maploader.Level, lib *entity.Library, speaker *dialog.Speaker) (*Session, error) {
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	if lib == nil {
		lib = entity.DefaultLibrary()
	}
	if speaker == nil {
		speaker = dialog.NewSpeaker(nil, nil)
	}

	grid, err := level.Mask()
	if err != nil {
		return nil, fmt.Errorf("failed to build level mask: %w", err)
	}

	s := &Session{cfg: cfg, mask: grid, speaker: speaker}
	s.world = world.New(cfg, grid,
		world.WithIntentSink(&s.intents),
		world.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))),
	)

	entities, err := level.Populate(lib)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if err := s.world.Add(e); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.Name, err)
		}
	}
	s.player = entities[0]
	return s, nil
}

// HandleKey feeds a key press to the session. It reports false when the
// key asks to quit.
func (s *Session) HandleKey(key tcell.Key, r rune) bool {
	switch {
	case key == tcell.KeyEscape, key == tcell.KeyCtrlC:
		return false
	case key == tcell.KeyRune && (r == 'q' || r == 'Q'):
		return false
	}
	s.keys.Press(key, r)
	return true
}

// Step advances the level by one frame
func (s *Session) Step() {
	dt := s.cfg.FrameDelta()
	in := s.keys.Input()

	s.world.Step(dt, in)
	for _, e := range s.world.Build(s.player, in) {
		s.say(fmt.Sprintf("%s built", e.Name))
	}

	for _, i := range s.intents.Drain() {
		switch v := i.(type) {
		case intent.Dialog:
			if line, ok := s.speaker.Say(v.Category); ok {
				s.say(line)
			}
		case intent.Particle:
			s.trails = append(s.trails, trail{pos: v.Pos, left: trailDuration})
		}
	}

	s.age(dt)
	s.keys.Tick(dt)
}

func (s *Session) say(line string) {
	s.status = line
	s.statusLeft = statusDuration
	logger.L().Debug("dialog", "line", line)
}

func (s *Session) age(dt float64) {
	if s.statusLeft > 0 {
		s.statusLeft -= dt
		if s.statusLeft <= 0 {
			s.status = ""
		}
	}
	active := s.trails[:0]
	for _, t := range s.trails {
		t.left -= dt
		if t.left > 0 {
			active = append(active, t)
		}
	}
	s.trails = active
}

// Status returns the dialog line on screen, if any
func (s *Session) Status() string { return s.status }

// Player returns the player entity
func (s *Session) Player() *entity.Entity { return s.player }

// World returns the running world
func (s *Session) World() *world.World { return s.world }

// viewport picks the lowest visible cell so the player stays centred,
// clamped to the level
func (s *Session) viewport(width, height int) (col0, row0 int) {
	cols, rows := s.mask.Size()
	cell := s.mask.CellSize()
	c := s.player.Body.Center()

	col0 = clampView(int(c.X/cell)-width/2, cols-width)
	row0 = clampView(int(c.Y/cell)-height/2, rows-height)
	return col0, row0
}

func clampView(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Draw renders the viewport and the status line onto c
func (s *Session) Draw(c Canvas) {
	width, height := c.Size()
	if width <= 0 || height <= 1 {
		return
	}
	viewH := height - 1
	col0, row0 := s.viewport(width, viewH)
	cell := s.mask.CellSize()

	// y up in the world, y down on screen
	put := func(cx, cy int, r rune, style tcell.Style) {
		x, y := cx-col0, viewH-1-(cy-row0)
		if x >= 0 && x < width && y >= 0 && y < viewH {
			c.SetContent(x, y, r, nil, style)
		}
	}

	for y := 0; y < viewH; y++ {
		for x := 0; x < width; x++ {
			c.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	for cy := row0; cy < row0+viewH; cy++ {
		for cx := col0; cx < col0+width; cx++ {
			if s.mask.Cell(cx, cy) {
				put(cx, cy, '#', rockStyle)
			}
		}
	}

	for _, t := range s.trails {
		put(int(math.Floor(t.pos.X/cell)), int(math.Floor(t.pos.Y/cell)), '~', trailStyle)
	}

	for _, e := range s.world.Entities() {
		r, style := glyph(e)
		fp := e.Body.Footprint()
		// inset so a footprint touching a cell edge does not spill into it
		x0, x1 := int(math.Floor(fp.Min.X/cell)), int(math.Ceil(fp.Max.X/cell))-1
		y0, y1 := int(math.Floor(fp.Min.Y/cell)), int(math.Ceil(fp.Max.Y/cell))-1
		for cy := y0; cy <= max(y0, y1); cy++ {
			for cx := x0; cx <= max(x0, x1); cx++ {
				put(cx, cy, r, style)
			}
		}
	}

	s.drawStatus(c, width, height-1)
}

func (s *Session) drawStatus(c Canvas, width, y int) {
	m := s.player.Body.Motion
	mode, _ := s.world.Mode(s.player.ID)
	line := fmt.Sprintf(" %-8s v=(%6.1f,%6.1f) rot=%4.0f ", mode, m.VX, m.VY, s.player.Body.Rotation)
	if s.status != "" {
		line += "| " + s.status
	}

	x := 0
	for _, r := range line {
		if x >= width {
			break
		}
		c.SetContent(x, y, r, nil, statusStyle)
		x++
	}
	for ; x < width; x++ {
		c.SetContent(x, y, ' ', nil, statusStyle)
	}
}

func glyph(e *entity.Entity) (rune, tcell.Style) {
	switch e.Kind {
	case entity.KindPlayer:
		if e.Frozen {
			return '?', playerStyle
		}
		return '@', playerStyle
	case entity.KindEnemy:
		return 'S', enemyStyle
	case entity.KindProjectile:
		return '-', trailStyle
	}
	if e.Build != nil && e.Build.Built {
		return 'H', builtStyle
	}
	return '=', propStyle
}

// eventSource is the part of tcell.Screen that delivers input
type eventSource interface {
	PollEvent() tcell.Event
}

// pollEvents forwards events from src until the screen is finalised or ctx
// ends
func pollEvents(ctx context.Context, src eventSource, events chan<- tcell.Event) {
	for {
		ev := src.PollEvent()
		if ev == nil {
			// screen finalised
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Run drives the session on screen until ctx ends or the player quits
func (s *Session) Run(ctx context.Context, screen tcell.Screen) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interval := time.Duration(float64(time.Second) * s.cfg.FrameDelta())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go pollEvents(ctx, screen, events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !s.HandleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			s.Step()
			s.Draw(screen)
			screen.Show()
		}
	}
}

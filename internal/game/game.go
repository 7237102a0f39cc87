// Package game runs a level in a window: it polls input, steps the world and
// turns the intents the world emits into messages, particles and sound.
package game

import (
	"fmt"
	"math/rand"

	"chosenoffset.com/ns2d/internal/control"
	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/logger"
	"chosenoffset.com/ns2d/internal/physics"
	"chosenoffset.com/ns2d/internal/render"
	"chosenoffset.com/ns2d/internal/simulation"
	"chosenoffset.com/ns2d/internal/ui/dialog"
	"chosenoffset.com/ns2d/internal/world"
	"chosenoffset.com/ns2d/internal/world/mask"
	"chosenoffset.com/ns2d/internal/world/maploader"

	"github.com/google/uuid"
)

const (
	messageDuration = 3.0
	respawnTime     = 2.0
	maxMarkers      = 512

	// weapon
	fireCooldown   = 0.25
	bulletSpeed    = 500
	bulletLifetime = 1.5
	shotSound      = "shot"
	shotVolume     = 0.05

	// animation effects
	ignitionTime = 0.2
	flashTime    = 0.3
)

var particleLifetime = map[string]float64{
	control.EffectPuff:    0.4,
	control.EffectGasburn: 0.2,
}

// Options are the collaborators a Game is built from. Renderer, Input and
// Level are required.
type Options struct {
	Renderer render.Renderer
	Input    render.InputManager
	Loader   render.ResourceLoader // optional, loads the level's tile sheet
	Config   *simulation.Config
	Level    *maploader.Level
	Library  *entity.Library
	Audio    intent.Sink
	Speaker  *dialog.Speaker
	Debug    bool
	Rand     *rand.Rand
}

// Game represents one running level.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Config       *simulation.Config

	Level     *maploader.Level
	Mask      *mask.Grid
	TileSheet render.Image
	World     *world.World
	Library   *entity.Library
	Player    *entity.Entity

	Camera    Camera
	Messages  []Message
	Particles []Particle
	Speaker   *dialog.Speaker
	Audio     intent.Sink
	Debug     bool

	intents      intent.Buffer
	animAge      map[uuid.UUID]float64 // seconds since an entity's animation changed
	markers      []marker
	bullets      map[uuid.UUID]float64
	fireCooldown float64
	respawnLeft  float64
}

// NewGame builds the world for a level and places its entities
func NewGame(opts Options) (*Game, error) {
	if opts.Level == nil {
		return nil, fmt.Errorf("no level to run")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	lib := opts.Library
	if lib == nil {
		lib = entity.DefaultLibrary()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	grid, err := opts.Level.Mask()
	if err != nil {
		return nil, fmt.Errorf("failed to build level mask: %w", err)
	}

	g := &Game{
		ScreenWidth:  cfg.Window.Width,
		ScreenHeight: cfg.Window.Height,
		Renderer:     opts.Renderer,
		InputMgr:     opts.Input,
		Config:       cfg,
		Level:        opts.Level,
		Mask:         grid,
		Library:      lib,
		Speaker:      opts.Speaker,
		Audio:        opts.Audio,
		Debug:        opts.Debug,
		bullets:      make(map[uuid.UUID]float64),
		animAge:      make(map[uuid.UUID]float64),
	}
	if g.Speaker == nil {
		g.Speaker = dialog.NewSpeaker(nil, rng)
	}
	g.Audio = intent.Multi(opts.Audio, intent.SinkFunc(logSound))

	g.World = world.New(cfg, grid,
		world.WithIntentSink(&g.intents),
		world.WithDebugSink(g),
		world.WithRand(rng),
	)

	entities, err := opts.Level.Populate(lib)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if err := g.World.Add(e); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.Name, err)
		}
	}
	g.Player = entities[0]

	if opts.Loader != nil && opts.Level.Atlas != nil {
		sheet, err := opts.Loader.LoadImage(opts.Level.Atlas.ImagePath())
		if err != nil {
			logger.L().Warn("tile sheet unavailable, drawing plain cells", "error", err)
		} else {
			g.TileSheet = sheet
		}
	}

	g.UpdateCamera()
	logger.L().Info("level started", "level", opts.Level.Data.Name, "entities", len(entities))
	return g, nil
}

// Update advances the level by one fixed step
func (g *Game) Update() error {
	dt := g.Config.FrameDelta()
	g.updateMessages(dt)
	g.updateParticles(dt)
	g.updateAnims(dt)
	g.markers = g.markers[:0]

	if g.InputMgr.IsKeyJustPressed(render.KeyF3) {
		g.Debug = !g.Debug
		logger.L().Info("collision markers toggled", "on", g.Debug)
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyR) {
		g.Respawn()
	}
	g.updateRespawn(dt)

	in := g.readInput()
	g.World.Step(dt, in)

	for _, e := range g.World.Build(g.Player, in) {
		g.ShowMessage(fmt.Sprintf("%s built", e.Name))
	}

	g.fireCooldown -= dt
	g.dispatch(g.intents.Drain())
	g.updateBullets(dt)
	g.UpdateCamera()
	return nil
}

// readInput polls the keys the player uses into a control snapshot
func (g *Game) readInput() control.Input {
	im := g.InputMgr
	return control.Input{
		Left:       im.IsKeyPressed(render.KeyA) || im.IsKeyPressed(render.KeyLeft),
		Right:      im.IsKeyPressed(render.KeyD) || im.IsKeyPressed(render.KeyRight),
		Up:         im.IsKeyPressed(render.KeyW) || im.IsKeyPressed(render.KeyUp),
		Fire:       im.IsKeyPressed(render.KeySpace),
		ModeToggle: im.IsKeyPressed(render.KeyE),
		Pointer:    im.IsMouseButtonPressed(render.MouseButtonLeft),
	}
}

// dispatch routes intents to the collaborator that owns them
func (g *Game) dispatch(intents []intent.Intent) {
	for _, i := range intents {
		switch v := i.(type) {
		case intent.Dialog:
			if line, ok := g.Speaker.Say(v.Category); ok {
				g.ShowMessage(line)
			}
		case intent.Particle:
			g.Particles = append(g.Particles, Particle{
				Pos:      v.Pos,
				Rotation: v.Rotation,
				Effect:   v.Effect,
				TimeLeft: particleLifetime[v.Effect],
			})
		case intent.Anim:
			g.animAge[v.EntityID] = 0
		case intent.Fire:
			g.fire(v.EntityID)
		case intent.Sound, intent.Loop, intent.StopLoop:
			g.Audio.Emit(v)
		}
	}
}

// fire launches a bullet along the shooter's facing
func (g *Game) fire(id uuid.UUID) {
	if g.fireCooldown > 0 {
		return
	}
	shooter, ok := g.World.Get(id)
	if !ok {
		return
	}
	def, ok := g.Library.Get("bullet")
	if !ok {
		logger.L().Debug("no bullet definition, shot ignored")
		return
	}

	center := shooter.Body.Center()
	bullet, err := def.Spawn(geom.Point{X: center.X - def.Width/2, Y: center.Y - def.Height/2})
	if err != nil {
		logger.L().Warn("failed to spawn bullet", "error", err)
		return
	}
	if err := g.World.Add(bullet); err != nil {
		logger.L().Warn("failed to add bullet", "error", err)
		return
	}

	physics.Push(bullet.Body, facing(shooter), bulletSpeed)
	bullet.FlippedX = shooter.FlippedX
	g.bullets[bullet.ID] = bulletLifetime
	g.fireCooldown = fireCooldown
	g.Audio.Emit(intent.Sound{Name: shotSound, Volume: shotVolume})
}

// facing is the direction the entity looks in, in degrees
func facing(e *entity.Entity) float64 {
	if e.FlippedX {
		return e.Body.Rotation + 180
	}
	return e.Body.Rotation
}

// updateBullets expires bullets that ran out of time or hit the level
func (g *Game) updateBullets(dt float64) {
	for id, left := range g.bullets {
		b, ok := g.World.Get(id)
		left -= dt
		hit := false
		if ok {
			for _, e := range g.World.Demolish(b) {
				g.ShowMessage(fmt.Sprintf("%s destroyed", e.Name))
				hit = true
			}
		}
		if !ok || hit || left <= 0 || b.Body.Motion.OnWall || b.Body.Motion.OnFloor {
			g.World.Remove(id)
			delete(g.bullets, id)
			continue
		}
		g.bullets[id] = left
	}
}

// Respawn freezes the player at the level spawn for a short time
func (g *Game) Respawn() {
	if g.Player == nil {
		return
	}
	b := g.Player.Body
	b.Pos = g.Level.Spawn()
	b.Rotation = 0
	b.Motion.VX, b.Motion.VY, b.Motion.VR = 0, 0, 0
	g.Player.Frozen = true
	g.respawnLeft = respawnTime
	g.ShowMessage("Respawning")
}

func (g *Game) updateRespawn(dt float64) {
	if g.respawnLeft <= 0 {
		return
	}
	g.respawnLeft -= dt
	if g.respawnLeft <= 0 {
		g.Player.Frozen = false
	}
}

// Sample records resolver sample points while the debug overlay is on
func (g *Game) Sample(p geom.Point, solid bool) {
	if !g.Debug || len(g.markers) >= maxMarkers {
		return
	}
	g.markers = append(g.markers, marker{Pos: p, Solid: solid})
}

// Layout implements render.Game. The logical screen is the window divided
// by the configured scale.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := g.Config.Window.Scale
	if scale <= 0 {
		scale = 1
	}
	g.ScreenWidth = int(float64(outsideWidth) / scale)
	g.ScreenHeight = int(float64(outsideHeight) / scale)
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

func (g *Game) updateParticles(dt float64) {
	active := g.Particles[:0]
	for _, p := range g.Particles {
		p.TimeLeft -= dt
		if p.TimeLeft > 0 {
			active = append(active, p)
		}
	}
	g.Particles = active
}

func (g *Game) updateAnims(dt float64) {
	for id := range g.animAge {
		if _, ok := g.World.Get(id); !ok {
			delete(g.animAge, id)
			continue
		}
		g.animAge[id] += dt
	}
}

func logSound(i intent.Intent) {
	switch v := i.(type) {
	case intent.Sound:
		logger.L().Debug("sound", "name", v.Name)
	case intent.Loop:
		logger.L().Debug("loop start", "name", v.Name)
	case intent.StopLoop:
		logger.L().Debug("loop stop", "name", v.Name)
	}
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: messageDuration,
		MaxTime:  messageDuration,
	})
	logger.L().Info("message", "text", text)
}

// levelSize returns the level extent in world units
func (g *Game) levelSize() (float64, float64) {
	w, h := g.Mask.Size()
	cell := g.Mask.CellSize()
	return float64(w) * cell, float64(h) * cell
}

// UpdateCamera updates the camera to follow the player.
func (g *Game) UpdateCamera() {
	if g.Player == nil {
		return
	}
	// Center camera on player
	center := g.Player.Body.Center()
	g.Camera.X = center.X - float64(g.ScreenWidth)/2
	g.Camera.Y = center.Y - float64(g.ScreenHeight)/2

	// Clamp camera to level bounds
	levelWidth, levelHeight := g.levelSize()

	if g.Camera.X > levelWidth-float64(g.ScreenWidth) {
		g.Camera.X = levelWidth - float64(g.ScreenWidth)
	}
	if g.Camera.Y > levelHeight-float64(g.ScreenHeight) {
		g.Camera.Y = levelHeight - float64(g.ScreenHeight)
	}
	if g.Camera.X < 0 {
		g.Camera.X = 0
	}
	if g.Camera.Y < 0 {
		g.Camera.Y = 0
	}
}

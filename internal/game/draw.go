package game

import (
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/ns2d/internal/control"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/render"
)

var (
	backgroundColor = color.RGBA{18, 20, 28, 255}
	rockColor       = color.RGBA{92, 84, 72, 255}
	rockEdgeColor   = color.RGBA{120, 110, 96, 255}
	playerColor     = color.RGBA{90, 170, 255, 255}
	enemyColor      = color.RGBA{200, 70, 60, 255}
	bulletColor     = color.RGBA{255, 230, 120, 255}
	propColor       = color.RGBA{110, 120, 130, 255}
	builtColor      = color.RGBA{140, 200, 140, 255}
	puffColor       = color.RGBA{200, 200, 200, 160}
	gasburnColor    = color.RGBA{255, 150, 40, 200}
	solidMarker     = color.RGBA{255, 40, 40, 255}
	openMarker      = color.RGBA{40, 255, 40, 255}
	hudColor        = color.RGBA{220, 220, 220, 255}
)

// Draw renders the level, entities and overlays.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	g.drawLevel(screen)
	g.drawEntities(screen)
	g.drawParticles(screen)
	if g.Debug {
		g.drawMarkers(screen)
	}

	g.drawHUD(screen)
	g.drawUI(screen)
}

// toScreen converts a world point (y up) to screen pixels (y down)
func (g *Game) toScreen(x, y float64) (float32, float32) {
	return float32(x - g.Camera.X), float32(float64(g.ScreenHeight) - (y - g.Camera.Y))
}

// visibleCells returns the cell range under the viewport
func (g *Game) visibleCells() (x0, y0, x1, y1 int) {
	cols, rows := g.Mask.Size()
	cell := g.Mask.CellSize()

	x0 = max(int(math.Floor(g.Camera.X/cell)), 0)
	y0 = max(int(math.Floor(g.Camera.Y/cell)), 0)
	x1 = min(int(math.Ceil((g.Camera.X+float64(g.ScreenWidth))/cell)), cols)
	y1 = min(int(math.Ceil((g.Camera.Y+float64(g.ScreenHeight))/cell)), rows)
	return x0, y0, x1, y1
}

func (g *Game) drawLevel(screen render.Image) {
	cell := g.Mask.CellSize()
	_, rows := g.Mask.Size()
	x0, y0, x1, y1 := g.visibleCells()

	for cy := y0; cy < y1; cy++ {
		for cx := x0; cx < x1; cx++ {
			sx, sy := g.toScreen(float64(cx)*cell, float64(cy+1)*cell)

			if g.drawTile(screen, cx, rows-1-cy, sx, sy) {
				continue
			}
			if !g.Mask.Cell(cx, cy) {
				continue
			}
			g.Renderer.FillRect(screen, sx, sy, float32(cell), float32(cell), rockColor)
			// highlight exposed top edges
			if !g.Mask.Cell(cx, cy+1) {
				g.Renderer.FillRect(screen, sx, sy, float32(cell), 2, rockEdgeColor)
			}
		}
	}
}

// drawTile draws the atlas tile for a cell, row 0 at the top. It returns
// false when the level has no tile art for the cell.
func (g *Game) drawTile(screen render.Image, col, row int, sx, sy float32) bool {
	if g.TileSheet == nil || g.Level.Atlas == nil || render.NewGeoM == nil {
		return false
	}
	name, err := g.Level.TileAt(col, row)
	if err != nil {
		return false
	}
	tile, ok := g.Level.Atlas.Tile(name)
	if !ok {
		return false
	}

	sub := g.TileSheet.SubImage(g.Level.Atlas.SourceRect(tile))
	geoM := render.NewGeoM()
	cell := g.Mask.CellSize()
	tw, _ := sub.Size()
	if tw > 0 && float64(tw) != cell {
		geoM.Scale(cell/float64(tw), cell/float64(tw))
	}
	geoM.Translate(float64(sx), float64(sy))
	screen.DrawImage(sub, &render.DrawImageOptions{GeoM: geoM})
	return true
}

func (g *Game) drawEntities(screen render.Image) {
	for _, e := range g.World.Entities() {
		rect := e.Body.Footprint()
		sx, sy := g.toScreen(rect.Min.X, rect.Max.Y)
		w, h := float32(rect.Max.X-rect.Min.X), float32(rect.Max.Y-rect.Min.Y)

		clr := entityColor(e)
		if e.Frozen {
			clr.A = 120
		}
		g.Renderer.FillRect(screen, sx, sy, w, h, clr)

		age, changed := g.animAge[e.ID]
		if e.PlayerControlled {
			g.drawFacing(screen, e)
			if e.Anim == entity.AnimJetpack {
				g.drawFlame(screen, e, age, changed)
			}
		} else if changed && age < flashTime {
			g.Renderer.StrokeRect(screen, sx, sy, w, h, 2, hudColor)
		}
	}
}

// drawFlame draws the exhaust opposite the thrust axis. It grows to full
// length over the ignition time after the jetpack animation starts.
func (g *Game) drawFlame(screen render.Image, e *entity.Entity, age float64, changed bool) {
	grow := 1.0
	if changed && age < ignitionTime {
		grow = age / ignitionTime
	}
	center := e.Body.Center()
	angle := (e.Body.Rotation + g.Config.Player.ThrustVector + 180) * math.Pi / 180
	length := (e.Body.Bounds.Y2 - e.Body.Bounds.Y1) * (0.5 + 0.4*grow)

	x0, y0 := g.toScreen(center.X, center.Y)
	x1, y1 := g.toScreen(center.X+math.Cos(angle)*length, center.Y+math.Sin(angle)*length)
	g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 3, gasburnColor)
}

// drawFacing draws the thrust axis of a player so rotation is visible
// without sprites
func (g *Game) drawFacing(screen render.Image, e *entity.Entity) {
	center := e.Body.Center()
	angle := (e.Body.Rotation + g.Config.Player.ThrustVector) * math.Pi / 180
	length := e.Body.Bounds.Y2 - e.Body.Bounds.Y1

	x0, y0 := g.toScreen(center.X, center.Y)
	x1, y1 := g.toScreen(center.X+math.Cos(angle)*length*0.6, center.Y+math.Sin(angle)*length*0.6)
	g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 2, hudColor)

	// eye on the facing side
	look := facing(e) * math.Pi / 180
	ex, ey := g.toScreen(center.X+math.Cos(look)*length*0.3, center.Y+math.Sin(look)*length*0.3)
	g.Renderer.FillCircle(screen, ex, ey, 3, hudColor)
}

func entityColor(e *entity.Entity) color.RGBA {
	switch e.Kind {
	case entity.KindPlayer:
		return playerColor
	case entity.KindEnemy:
		return enemyColor
	case entity.KindProjectile:
		return bulletColor
	}
	if e.Build != nil && e.Build.Built {
		return builtColor
	}
	return propColor
}

func (g *Game) drawParticles(screen render.Image) {
	for _, p := range g.Particles {
		x, y := g.toScreen(p.Pos.X, p.Pos.Y)
		switch p.Effect {
		case control.EffectGasburn:
			g.Renderer.FillCircle(screen, x, y, 3, gasburnColor)
		default:
			r := float32(2 + 6*(particleLifetime[control.EffectPuff]-p.TimeLeft))
			g.Renderer.FillCircle(screen, x, y, r, puffColor)
		}
	}
}

func (g *Game) drawMarkers(screen render.Image) {
	for _, m := range g.markers {
		x, y := g.toScreen(m.Pos.X, m.Pos.Y)
		clr := openMarker
		if m.Solid {
			clr = solidMarker
		}
		g.Renderer.FillRect(screen, x-1, y-1, 3, 3, clr)
	}
}

func (g *Game) drawHUD(screen render.Image) {
	if g.Player == nil {
		return
	}
	m := g.Player.Body.Motion
	mode, _ := g.World.Mode(g.Player.ID)

	lines := []string{
		fmt.Sprintf("%s  v=(%.1f, %.1f)  rot=%.0f", mode, m.VX, m.VY, g.Player.Body.Rotation),
		fmt.Sprintf("floor=%v wall=%v", m.OnFloor, m.OnWall),
	}
	for i, line := range lines {
		g.Renderer.DrawText(screen, line, 10, 10+i*16, hudColor, 1.0)
	}
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

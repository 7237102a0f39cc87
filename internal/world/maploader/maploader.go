// Package maploader reads level files: the solidity of every cell, the
// player spawn and the entities placed in the level.
package maploader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/world/atlas"
	"chosenoffset.com/ns2d/internal/world/mask"
)

// SpawnPoint is a location in world units (y up)
type SpawnPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement puts an entity definition into the level
type Placement struct {
	Entity string  `json:"entity"` // Definition id in the entity library
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// LevelData is the JSON level description. Geometry comes from exactly one of
// Tiles (with an atlas), Rows or MaskPath. Tiles and Rows list the top row
// first.
type LevelData struct {
	Name        string      `json:"name"`
	Width       int         `json:"width"`  // in cells
	Height      int         `json:"height"` // in cells
	CellSize    float64     `json:"cell_size"`
	AtlasPath   string      `json:"atlas,omitempty"`
	MaskPath    string      `json:"mask,omitempty"`
	PlayerSpawn SpawnPoint  `json:"player_spawn"`
	Tiles       [][]string  `json:"tiles,omitempty"` // tile names [row][col]
	Rows        []string    `json:"rows,omitempty"`  // '#' marks a solid cell
	Entities    []Placement `json:"entities,omitempty"`
}

// Level is a loaded level with its atlas, if any
type Level struct {
	Data  *LevelData
	Atlas *atlas.Atlas
	Dir   string
}

// LoadLevel loads a level from a JSON file and the atlas it names
func LoadLevel(levelPath string) (*Level, error) {
	data, err := os.ReadFile(levelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file %s: %w", levelPath, err)
	}

	var levelData LevelData
	if err := json.Unmarshal(data, &levelData); err != nil {
		return nil, fmt.Errorf("failed to parse level file %s: %w", levelPath, err)
	}

	if err := validateLevelData(&levelData); err != nil {
		return nil, fmt.Errorf("invalid level data in %s: %w", levelPath, err)
	}

	level := &Level{Data: &levelData, Dir: filepath.Dir(levelPath)}
	if levelData.AtlasPath != "" {
		a, err := atlas.LoadAtlas(level.resolve(levelData.AtlasPath))
		if err != nil {
			return nil, fmt.Errorf("failed to load atlas %s: %w", levelData.AtlasPath, err)
		}
		level.Atlas = a
	}

	return level, nil
}

func validateLevelData(data *LevelData) error {
	if data.CellSize <= 0 {
		return fmt.Errorf("invalid cell size: %v", data.CellSize)
	}

	sources := 0
	for _, set := range []bool{len(data.Tiles) > 0, len(data.Rows) > 0, data.MaskPath != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of tiles, rows or mask is required, got %d", sources)
	}

	if len(data.Tiles) > 0 {
		if data.AtlasPath == "" {
			return fmt.Errorf("atlas path is required for tiles")
		}
		if data.Width <= 0 || data.Height <= 0 {
			return fmt.Errorf("invalid level dimensions: %dx%d", data.Width, data.Height)
		}
		if len(data.Tiles) != data.Height {
			return fmt.Errorf("tiles array height mismatch: expected %d, got %d", data.Height, len(data.Tiles))
		}
		for y, row := range data.Tiles {
			if len(row) != data.Width {
				return fmt.Errorf("tiles array width mismatch at row %d: expected %d, got %d", y, data.Width, len(row))
			}
		}
	}

	for i, p := range data.Entities {
		if p.Entity == "" {
			return fmt.Errorf("entity placement %d has no entity id", i)
		}
	}

	return nil
}

func (l *Level) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Dir, path)
}

// TileAt returns the tile name at a grid position, row 0 at the top
func (l *Level) TileAt(col, row int) (string, error) {
	if row < 0 || row >= len(l.Data.Tiles) || col < 0 || col >= len(l.Data.Tiles[row]) {
		return "", fmt.Errorf("coordinates out of bounds: (%d, %d)", col, row)
	}
	return l.Data.Tiles[row][col], nil
}

// Mask builds the solidity mask for the level geometry
func (l *Level) Mask() (*mask.Grid, error) {
	switch {
	case l.Data.MaskPath != "":
		return mask.LoadPNG(l.resolve(l.Data.MaskPath), l.Data.CellSize)
	case len(l.Data.Rows) > 0:
		return mask.FromRows(l.Data.Rows, l.Data.CellSize)
	}

	if l.Atlas == nil {
		return nil, fmt.Errorf("level %s has tiles but no atlas", l.Data.Name)
	}
	g, err := mask.NewGrid(l.Data.Width, l.Data.Height, l.Data.CellSize)
	if err != nil {
		return nil, err
	}
	for row, names := range l.Data.Tiles {
		for col, name := range names {
			// first row is the top of the world
			g.Set(col, l.Data.Height-1-row, l.Atlas.IsSolid(name))
		}
	}
	return g, nil
}

// Spawn returns the player spawn in world units
func (l *Level) Spawn() geom.Point {
	return geom.Point{X: l.Data.PlayerSpawn.X, Y: l.Data.PlayerSpawn.Y}
}

// Populate spawns the player at the spawn point followed by every placed
// entity, using definitions from lib
func (l *Level) Populate(lib *entity.Library) ([]*entity.Entity, error) {
	player, err := lib.Spawn("player", l.Spawn())
	if err != nil {
		return nil, fmt.Errorf("failed to spawn player: %w", err)
	}

	entities := []*entity.Entity{player}
	for _, p := range l.Data.Entities {
		e, err := lib.Spawn(p.Entity, geom.Point{X: p.X, Y: p.Y})
		if err != nil {
			return nil, fmt.Errorf("failed to populate level %s: %w", l.Data.Name, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

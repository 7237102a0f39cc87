// Package levelgen writes placeholder level data: a tile sheet, its atlas,
// and sample levels in each of the geometry formats the loader reads.
package levelgen

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"chosenoffset.com/ns2d/internal/world/atlas"
	"chosenoffset.com/ns2d/internal/world/maploader"
)

// TileSize is the size of a sheet tile and of a level cell
const TileSize = 16

// Palette holds the placeholder colours
var Palette = struct {
	Rock       color.RGBA
	RockEdge   color.RGBA
	Grate      color.RGBA
	Background color.RGBA
}{
	Rock:       color.RGBA{96, 84, 72, 255},
	RockEdge:   color.RGBA{140, 124, 104, 255},
	Grate:      color.RGBA{70, 90, 110, 255},
	Background: color.RGBA{16, 18, 28, 255},
}

// CreateSolidTile creates a single-colour tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a filled tile with a border
func CreateBorderedTile(fill, border color.RGBA, width int) *image.RGBA {
	img := CreateSolidTile(fill)
	for i := 0; i < width; i++ {
		for j := 0; j < TileSize; j++ {
			img.Set(j, i, border)
			img.Set(j, TileSize-1-i, border)
			img.Set(i, j, border)
			img.Set(TileSize-1-i, j, border)
		}
	}
	return img
}

// CreateSheet lays tiles out left to right, wrapping after columns.
// Nil tiles stay transparent.
func CreateSheet(tiles []*image.RGBA, columns int) *image.RGBA {
	rows := (len(tiles) + columns - 1) / columns
	sheet := image.NewRGBA(image.Rect(0, 0, columns*TileSize, rows*TileSize))

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % columns) * TileSize
		y := (i / columns) * TileSize
		draw.Draw(sheet, image.Rect(x, y, x+TileSize, y+TileSize), tile, image.Point{}, draw.Src)
	}
	return sheet
}

// Darken returns a darker version of a colour
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// SavePNG encodes img to path
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// Arena returns a walled room of width x height cells with a few ledges,
// top row first
func Arena(width, height int) []string {
	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = make([]byte, width)
		for x := range grid[y] {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				grid[y][x] = '#'
			} else {
				grid[y][x] = '.'
			}
		}
	}

	// ledges at a third and two thirds of the height, staggered
	ledge := func(row, from, to int) {
		if row <= 0 || row >= height-1 {
			return
		}
		for x := from; x < to && x < width-1; x++ {
			grid[row][x] = '#'
		}
	}
	ledge(height*2/3, 1, width/3)
	ledge(height/3, width*2/3, width-1)
	ledge(height/2, width/3+2, width*2/3-2)

	rows := make([]string, height)
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

// MaskImage renders rows as an alpha mask: '#' is opaque
func MaskImage(rows []string) *image.NRGBA {
	if len(rows) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewNRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				img.Set(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return img
}

// Generate writes the placeholder sheet, atlas and sample levels under dataDir
func Generate(dataDir string) error {
	atlasDir := filepath.Join(dataDir, "atlases")
	packDir := filepath.Join(dataDir, "caves")
	for _, dir := range []string{atlasDir, packDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	sheet := CreateSheet([]*image.RGBA{
		nil,
		CreateBorderedTile(Palette.Rock, Palette.RockEdge, 1),
		CreateBorderedTile(Darken(Palette.Grate, 0.8), Palette.Grate, 2),
	}, 3)
	if err := SavePNG(sheet, filepath.Join(atlasDir, "rock.png")); err != nil {
		return fmt.Errorf("failed to save tile sheet: %w", err)
	}

	rockAtlas := atlas.Config{
		Name:       "rock",
		ImagePath:  "rock.png",
		TileWidth:  TileSize,
		TileHeight: TileSize,
		Tiles: []atlas.TileDefinition{
			{Name: "air", AtlasX: 0, AtlasY: 0, Properties: map[string]interface{}{"type": "air"}},
			{Name: "rock", AtlasX: 1, AtlasY: 0, Properties: map[string]interface{}{"solid": true, "type": "rock"}},
			{Name: "grate", AtlasX: 2, AtlasY: 0, Properties: map[string]interface{}{"solid": false, "type": "grate"}},
		},
	}
	if err := writeJSON(filepath.Join(atlasDir, "rock_atlas.json"), rockAtlas); err != nil {
		return err
	}

	rows := Arena(60, 40)
	spawn := maploader.SpawnPoint{X: 4 * TileSize, Y: 2 * TileSize}
	placements := []maploader.Placement{
		{Entity: "skulk", X: 40 * TileSize, Y: 2 * TileSize},
		{Entity: "duct", X: 50 * TileSize, Y: 1 * TileSize},
	}

	arena := maploader.LevelData{
		Name:        "arena",
		Width:       len(rows[0]),
		Height:      len(rows),
		CellSize:    TileSize,
		AtlasPath:   "../atlases/rock_atlas.json",
		PlayerSpawn: spawn,
		Tiles:       tilesFromRows(rows),
		Entities:    placements,
	}
	cavern := maploader.LevelData{
		Name:        "cavern",
		CellSize:    TileSize,
		PlayerSpawn: spawn,
		Rows:        Arena(40, 30),
	}
	shaft := maploader.LevelData{
		Name:        "shaft",
		CellSize:    TileSize,
		MaskPath:    "shaft.png",
		PlayerSpawn: maploader.SpawnPoint{X: 2 * TileSize, Y: 2 * TileSize},
	}
	if err := SavePNG(MaskImage(Arena(20, 60)), filepath.Join(packDir, "shaft.png")); err != nil {
		return fmt.Errorf("failed to save shaft mask: %w", err)
	}

	for _, level := range []maploader.LevelData{arena, cavern, shaft} {
		if err := writeJSON(filepath.Join(packDir, level.Name+".json"), level); err != nil {
			return err
		}
	}
	return nil
}

func tilesFromRows(rows []string) [][]string {
	tiles := make([][]string, len(rows))
	for y, row := range rows {
		tiles[y] = make([]string, len(row))
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				tiles[y][x] = "rock"
			} else {
				tiles[y][x] = "air"
			}
		}
	}
	return tiles
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

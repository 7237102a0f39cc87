// Package atlas describes the tiles a level is built from: where each tile
// sits in the sprite sheet and which tiles are solid.
package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Tile properties read by the movement core
const (
	PropSolid = "solid"
	PropType  = "type"
)

// TileDefinition defines a single tile within an atlas
type TileDefinition struct {
	Name       string                 `json:"name"`       // Semantic name (e.g., "rock_top")
	AtlasX     int                    `json:"atlas_x"`    // Column in the sheet (in tiles)
	AtlasY     int                    `json:"atlas_y"`    // Row in the sheet (in tiles)
	Properties map[string]interface{} `json:"properties"` // solid, type, ...
}

// Config is the JSON description of an atlas
type Config struct {
	Name       string           `json:"name"`
	ImagePath  string           `json:"image_path"` // Relative to the atlas file
	TileWidth  int              `json:"tile_width"`
	TileHeight int              `json:"tile_height"`
	Tiles      []TileDefinition `json:"tiles"`
}

// Atlas is a parsed tile atlas. The sheet image is loaded by the renderer.
type Atlas struct {
	Config *Config
	Dir    string // directory of the atlas file

	tilesByName map[string]*TileDefinition
}

// LoadAtlas reads and validates an atlas configuration file
func LoadAtlas(configPath string) (*Atlas, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas config %s: %w", configPath, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse atlas config %s: %w", configPath, err)
	}

	a, err := New(&config)
	if err != nil {
		return nil, fmt.Errorf("invalid atlas config %s: %w", configPath, err)
	}
	a.Dir = filepath.Dir(configPath)
	return a, nil
}

// New indexes an in-memory atlas configuration
func New(config *Config) (*Atlas, error) {
	if config.TileWidth <= 0 || config.TileHeight <= 0 {
		return nil, fmt.Errorf("invalid tile dimensions: %dx%d", config.TileWidth, config.TileHeight)
	}

	tilesByName := make(map[string]*TileDefinition, len(config.Tiles))
	for i := range config.Tiles {
		tile := &config.Tiles[i]
		if tile.Name == "" {
			return nil, fmt.Errorf("tile %d has no name", i)
		}
		if _, dup := tilesByName[tile.Name]; dup {
			return nil, fmt.Errorf("duplicate tile name: %s", tile.Name)
		}
		tilesByName[tile.Name] = tile
	}

	return &Atlas{Config: config, tilesByName: tilesByName}, nil
}

// Tile returns a tile definition by name
func (a *Atlas) Tile(name string) (*TileDefinition, bool) {
	tile, ok := a.tilesByName[name]
	return tile, ok
}

// ImagePath returns the sheet path resolved against the atlas directory
func (a *Atlas) ImagePath() string {
	if a.Config.ImagePath == "" || filepath.IsAbs(a.Config.ImagePath) {
		return a.Config.ImagePath
	}
	return filepath.Join(a.Dir, a.Config.ImagePath)
}

// SourceRect returns the tile's pixel rectangle within the sheet
func (a *Atlas) SourceRect(tile *TileDefinition) image.Rectangle {
	x := tile.AtlasX * a.Config.TileWidth
	y := tile.AtlasY * a.Config.TileHeight
	return image.Rect(x, y, x+a.Config.TileWidth, y+a.Config.TileHeight)
}

// IsSolid reports whether the named tile blocks movement.
// Unknown names are open.
func (a *Atlas) IsSolid(name string) bool {
	tile, ok := a.Tile(name)
	if !ok {
		return false
	}
	return tile.IsSolid()
}

// IsSolid reports the tile's solid property (default false)
func (td *TileDefinition) IsSolid() bool {
	return td.PropertyBool(PropSolid, false)
}

// Property retrieves a raw property value
func (td *TileDefinition) Property(key string) (interface{}, bool) {
	if td.Properties == nil {
		return nil, false
	}
	val, ok := td.Properties[key]
	return val, ok
}

// PropertyBool retrieves a boolean property
func (td *TileDefinition) PropertyBool(key string, defaultVal bool) bool {
	if v, ok := td.Property(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// PropertyString retrieves a string property
func (td *TileDefinition) PropertyString(key string, defaultVal string) string {
	if v, ok := td.Property(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// PropertyInt retrieves an integer property
func (td *TileDefinition) PropertyInt(key string, defaultVal int) int {
	if v, ok := td.Property(key); ok {
		// JSON numbers are float64
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return defaultVal
}

// Package levelscan discovers level packs in the data directory
package levelscan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pack is a directory of levels
type Pack struct {
	Name   string   // Display name (directory name)
	Dir    string   // Directory path
	Levels []string // Level file names, sorted
}

// Paths returns the full path of every level in the pack
func (p Pack) Paths() []string {
	paths := make([]string, len(p.Levels))
	for i, name := range p.Levels {
		paths[i] = filepath.Join(p.Dir, name)
	}
	return paths
}

// ScanDataDirectory returns one Pack per directory under dataPath that holds
// at least one level file
func ScanDataDirectory(dataPath string) ([]Pack, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var packs []Pack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirName := entry.Name()
		if dirName == "atlases" || strings.HasPrefix(dirName, ".") {
			continue
		}

		packDir := filepath.Join(dataPath, dirName)
		levels, err := scanLevels(packDir)
		if err != nil {
			// unreadable directories are not packs
			continue
		}
		if len(levels) > 0 {
			packs = append(packs, Pack{Name: dirName, Dir: packDir, Levels: levels})
		}
	}

	return packs, nil
}

// FindLevel resolves a level by "pack/level" or bare level name
func FindLevel(packs []Pack, name string) (string, bool) {
	packName, levelName, qualified := strings.Cut(name, "/")
	if !qualified {
		levelName, packName = packName, ""
	}
	levelName = strings.TrimSuffix(levelName, ".json")

	for _, p := range packs {
		if packName != "" && p.Name != packName {
			continue
		}
		for _, l := range p.Levels {
			if strings.TrimSuffix(l, ".json") == levelName {
				return filepath.Join(p.Dir, l), true
			}
		}
	}
	return "", false
}

// Playlist returns the level files to play: the named level first, followed
// by the rest of every pack in order. An empty name plays everything.
func Playlist(dataPath, name string) ([]string, error) {
	packs, err := ScanDataDirectory(dataPath)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, p := range packs {
		all = append(all, p.Paths()...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no levels found in %s", dataPath)
	}
	if name == "" {
		return all, nil
	}

	first, ok := FindLevel(packs, name)
	if !ok {
		return nil, fmt.Errorf("level %q not found in %s", name, dataPath)
	}
	playlist := []string{first}
	for _, path := range all {
		if path != first {
			playlist = append(playlist, path)
		}
	}
	return playlist, nil
}

// scanLevels lists the level files in a pack directory. Atlas and entity
// library files live alongside levels and are skipped.
func scanLevels(packDir string) ([]string, error) {
	entries, err := os.ReadDir(packDir)
	if err != nil {
		return nil, err
	}

	var levels []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, "atlas.json") || name == "entities.json" {
			continue
		}
		levels = append(levels, entry.Name())
	}
	sort.Strings(levels)
	return levels, nil
}

package entity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/ns2d/internal/core/geom"
	"chosenoffset.com/ns2d/internal/physics"
)

func TestLoadLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	content := `{
		"name": "test",
		"entities": [
			{"id": "player", "kind": "player", "width": 32, "height": 32, "dynamic": true, "friction": 4, "player_controlled": true, "anim": "player-idle"},
			{"id": "feather", "width": 4, "height": 4, "dynamic": true, "gravity_strength": 0.1},
			{"id": "balloon", "width": 8, "height": 8, "dynamic": true, "gravity_strength": 0}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write library: %v", err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	player, err := lib.Spawn("player", geom.Point{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if !player.PlayerControlled || !player.Dynamic {
		t.Error("Expected a dynamic player-controlled entity")
	}
	if player.Body.Motion.Friction != 4 {
		t.Errorf("Expected friction 4, got %v", player.Body.Motion.Friction)
	}
	if !player.Body.Gravity.Enabled || player.Body.Gravity.Strength != 1 {
		t.Errorf("Expected default gravity, got %+v", player.Body.Gravity)
	}

	feather, _ := lib.Spawn("feather", geom.Point{})
	if feather.Kind != KindProp {
		t.Errorf("Expected default kind prop, got %s", feather.Kind)
	}
	if feather.Body.Gravity.Strength != 0.1 {
		t.Errorf("Expected gravity strength 0.1, got %v", feather.Body.Gravity.Strength)
	}

	balloon, _ := lib.Spawn("balloon", geom.Point{})
	if balloon.Body.Gravity.Enabled {
		t.Error("Expected zero gravity strength to disable gravity")
	}
}

func TestSpawnRejectsEmptyFootprint(t *testing.T) {
	lib, err := NewLibrary("test", Definition{ID: "ghost", Width: 0, Height: 10, Dynamic: true})
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	_, err = lib.Spawn("ghost", geom.Point{})
	if !errors.Is(err, physics.ErrInvalidBounds) {
		t.Errorf("Expected ErrInvalidBounds, got %v", err)
	}
}

func TestLibraryRejectsDuplicates(t *testing.T) {
	_, err := NewLibrary("dup", Definition{ID: "a", Width: 1, Height: 1}, Definition{ID: "a", Width: 1, Height: 1})
	if err == nil {
		t.Error("Expected error for duplicate ids")
	}
}

func TestSpawnUnknown(t *testing.T) {
	if _, err := DefaultLibrary().Spawn("nope", geom.Point{}); err == nil {
		t.Error("Expected error for unknown definition")
	}
}

func TestEntitiesGetDistinctIDs(t *testing.T) {
	lib := DefaultLibrary()
	a, _ := lib.Spawn("bullet", geom.Point{})
	b, _ := lib.Spawn("bullet", geom.Point{})
	if a.ID == b.ID {
		t.Error("Expected distinct entity ids")
	}
}

func TestOverlaps(t *testing.T) {
	lib := DefaultLibrary()
	player, _ := lib.Spawn("player", geom.Point{X: 0, Y: 0})
	duct, _ := lib.Spawn("duct", geom.Point{X: 16, Y: 16})
	bullet, _ := lib.Spawn("bullet", geom.Point{X: 100, Y: 0})

	if !player.Overlaps(duct) {
		t.Error("Expected player to overlap duct")
	}
	if player.Overlaps(bullet) {
		t.Error("Expected player not to overlap distant bullet")
	}
}

func TestNewPanicsWithoutBody(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for missing body")
		}
	}()
	New("broken", KindProp, nil)
}

func TestBuildableProp(t *testing.T) {
	lib := DefaultLibrary()
	duct, err := lib.Spawn("duct", geom.Point{})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if duct.Build == nil {
		t.Fatal("Expected duct to be buildable")
	}
	if duct.Anim != "duct-unbuilt" {
		t.Errorf("Expected unbuilt anim, got %s", duct.Anim)
	}

	if !duct.TryBuild() {
		t.Fatal("Expected first build to succeed")
	}
	if duct.Anim != "duct-built" || !duct.Build.Built {
		t.Errorf("Expected built duct, got anim %s", duct.Anim)
	}
	if duct.TryBuild() {
		t.Error("Expected second build to be refused")
	}

	if !duct.Unbuild() || duct.Anim != "duct-unbuilt" {
		t.Errorf("Expected unbuild to restore anim, got %s", duct.Anim)
	}
	if duct.Unbuild() {
		t.Error("Expected unbuild of unbuilt prop to be refused")
	}

	player, _ := lib.Spawn("player", geom.Point{})
	if player.TryBuild() {
		t.Error("Expected player not to be buildable")
	}
}

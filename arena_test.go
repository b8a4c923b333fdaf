package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadArena(t *testing.T) {
	path := writeLayout(t, `[
		{"type": "OBSTACLE", "pos": {"x": 1000, "y": 1000}, "size": {"x": 200, "y": 100}},
		{"type": "SPAWN_RED", "pos": {"x": 4000, "y": 4000}, "size": {"x": 500, "y": 500}}
	]`)
	objs, err := LoadArena(path)
	if err != nil {
		t.Fatalf("LoadArena: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}
	if !objs[0].IsObstacle() || objs[0].Size != (Vector{200, 100}) {
		t.Errorf("unexpected obstacle %+v", objs[0])
	}
	if objs[1].IsObstacle() {
		t.Error("spawn zones do not block")
	}
}

func TestLoadArenaErrors(t *testing.T) {
	if objs, err := LoadArena(""); err != nil || objs != nil {
		t.Errorf("empty path should give an empty layout, got %v %v", objs, err)
	}
	if _, err := LoadArena(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := LoadArena(writeLayout(t, `{not json`)); err == nil {
		t.Error("bad json should fail")
	}
	if _, err := LoadArena(writeLayout(t, `[{"type": "SQUARE"}]`)); err == nil {
		t.Error("shape types are not layout objects")
	}
}

func TestMapObjectContains(t *testing.T) {
	o := MapObject{Type: ShapeObstacle, Pos: Vector{100, 100}, Size: Vector{40, 20}}
	if !o.Contains(Vector{119, 109}) {
		t.Error("point inside should be contained")
	}
	if o.Contains(Vector{120, 100}) {
		t.Error("edge is not strictly inside")
	}
}

func TestSpawnPosition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	layout := DefaultArena()
	if got := SpawnPosition(TeamBlue, layout, rng); got != (Vector{500, 500}) {
		t.Errorf("blue spawn %+v", got)
	}
	if got := SpawnPosition(TeamRed, layout, rng); got != (Vector{WorldSize - 500, WorldSize - 500}) {
		t.Errorf("red spawn %+v", got)
	}
	if got := SpawnPosition(TeamBlue, nil, rng); got != (Vector{SpawnFallbackOffset, SpawnFallbackOffset}) {
		t.Errorf("fallback blue spawn %+v", got)
	}
	if got := SpawnPosition(TeamNone, nil, rng); got != (Vector{WorldSize - SpawnFallbackOffset, WorldSize - SpawnFallbackOffset}) {
		t.Errorf("fallback spawn for no team %+v", got)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
)

// MapObject is static arena geometry: an obstacle or a spawn zone. Pos is the center.
type MapObject struct {
	Type ShapeType `json:"type" msgpack:"t"`
	Pos  Vector    `json:"pos" msgpack:"p"`
	Size Vector    `json:"size" msgpack:"s"`
}

// IsObstacle reports whether the object blocks tanks and bullets
func (o MapObject) IsObstacle() bool {
	return o.Type == ShapeObstacle
}

// Contains reports whether p lies strictly inside the object's box
func (o MapObject) Contains(p Vector) bool {
	return abs(p.X-o.Pos.X) < o.Size.X/2 && abs(p.Y-o.Pos.Y) < o.Size.Y/2
}

// DefaultArena is the layout used when none is supplied
func DefaultArena() []MapObject {
	return []MapObject{
		{Type: ShapeObstacle, Pos: Vector{WorldSize / 2, WorldSize / 2}, Size: Vector{400, 400}},
		{Type: ShapeSpawnBlue, Pos: Vector{500, 500}, Size: Vector{1000, 1000}},
		{Type: ShapeSpawnRed, Pos: Vector{WorldSize - 500, WorldSize - 500}, Size: Vector{1000, 1000}},
	}
}

// LoadArena reads a JSON array of map objects as written by the layout editor.
// An empty path yields an empty layout.
func LoadArena(path string) ([]MapObject, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena layout: %w", err)
	}
	var objs []MapObject
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, fmt.Errorf("parse arena layout %s: %w", path, err)
	}
	for i, o := range objs {
		switch o.Type {
		case ShapeObstacle, ShapeSpawnBlue, ShapeSpawnRed:
		default:
			return nil, fmt.Errorf("arena layout %s: object %d has unknown type %q", path, i, o.Type)
		}
	}
	return objs, nil
}

// SpawnPosition picks the center of a random spawn zone for the team,
// or a fixed corner when the layout has none
func SpawnPosition(team Team, layout []MapObject, rng *rand.Rand) Vector {
	want := ShapeSpawnRed
	if team == TeamBlue {
		want = ShapeSpawnBlue
	}
	var zones []MapObject
	for _, o := range layout {
		if o.Type == want {
			zones = append(zones, o)
		}
	}
	if len(zones) > 0 {
		return zones[rng.IntN(len(zones))].Pos
	}
	if team == TeamBlue {
		return Vector{SpawnFallbackOffset, SpawnFallbackOffset}
	}
	return Vector{WorldSize - SpawnFallbackOffset, WorldSize - SpawnFallbackOffset}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

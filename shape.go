package main

import (
	"math"
	"math/rand/v2"
)

// MaxShapes is the population the arena is kept at
const MaxShapes = 150

// ShapeType names both neutral shapes and arena layout objects
type ShapeType string

const (
	ShapeSquare    ShapeType = "SQUARE"
	ShapeTriangle  ShapeType = "TRIANGLE"
	ShapePentagon  ShapeType = "PENTAGON"
	ShapeObstacle  ShapeType = "OBSTACLE"
	ShapeSpawnBlue ShapeType = "SPAWN_BLUE"
	ShapeSpawnRed  ShapeType = "SPAWN_RED"
)

type shapeKind struct {
	Type   ShapeType
	XP     int
	Radius float64
}

var (
	squareKind   = shapeKind{ShapeSquare, 10, 18}
	triangleKind = shapeKind{ShapeTriangle, 40, 24}
	pentagonKind = shapeKind{ShapePentagon, 200, 45}
)

// Shape is a neutral arena resource that awards XP when destroyed
type Shape struct {
	ID      string    `json:"id"`
	Type    ShapeType `json:"type"`
	Pos     Vector    `json:"pos"`
	Radius  float64   `json:"radius"`
	HP      float64   `json:"hp"`
	MaxHP   float64   `json:"maxHp"`
	XPValue int       `json:"xpValue"`
	Rot     float64   `json:"rot"`
	RotS    float64   `json:"rotS"` // radians per tick
}

// NewShape spawns a random shape somewhere in the world
func NewShape(rng *rand.Rand) Shape {
	kind := squareKind
	switch r := rng.Float64(); {
	case r > 0.95:
		kind = pentagonKind
	case r > 0.8:
		kind = triangleKind
	}
	hp := kind.Radius * 3
	return Shape{
		ID:      GenerateID(3),
		Type:    kind.Type,
		Pos:     Vector{rng.Float64() * WorldSize, rng.Float64() * WorldSize},
		Radius:  kind.Radius,
		HP:      hp,
		MaxHP:   hp,
		XPValue: kind.XP,
		Rot:     rng.Float64() * math.Pi,
		RotS:    (rng.Float64() - 0.5) * 0.04,
	}
}

// Spin advances the rotation by one tick
func (s *Shape) Spin() {
	s.Rot += s.RotS
}

// TakeDamage reduces HP, clamped at 0, and returns true if the shape was destroyed
func (s *Shape) TakeDamage(dmg float64) bool {
	s.HP -= dmg
	if s.HP <= 0 {
		s.HP = 0
		return true
	}
	return false
}

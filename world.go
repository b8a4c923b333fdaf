package main

import "math/rand/v2"

// World is the single mutable root of one simulation instance
type World struct {
	Local   Tank
	Remote  map[string]*Tank
	Shapes  []Shape
	Bullets []Bullet
	Arena   []MapObject
	Camera  Vector
	Chat    ChatLog

	obstacles []MapObject
	rng       *rand.Rand
	grid      ShapeGrid
	queryBuf  []int
}

// NewWorld builds a world around the local tank. An empty layout falls back to DefaultArena.
func NewWorld(local Tank, layout []MapObject, rng *rand.Rand) *World {
	if len(layout) == 0 {
		layout = DefaultArena()
	}
	w := &World{
		Local:  local,
		Remote: make(map[string]*Tank),
		Arena:  layout,
		rng:    rng,
	}
	for _, o := range layout {
		if o.IsObstacle() {
			w.obstacles = append(w.obstacles, o)
		}
	}
	w.FillShapes()
	return w
}

// FillShapes spawns shapes until the population reaches MaxShapes
func (w *World) FillShapes() {
	for len(w.Shapes) < MaxShapes {
		w.Shapes = append(w.Shapes, NewShape(w.rng))
	}
}

// Obstacles returns the blocking subset of the arena
func (w *World) Obstacles() []MapObject {
	return w.obstacles
}

// SpinShapes advances every shape's rotation by one tick
func (w *World) SpinShapes() {
	for i := range w.Shapes {
		w.Shapes[i].Spin()
	}
}

// UpdateCamera centers the viewport on the local tank
func (w *World) UpdateCamera(screen Vector) {
	w.Camera = w.Local.Pos.Sub(screen.Scale(0.5))
}

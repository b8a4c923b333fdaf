package main

// Steer sets the tank's velocity from the held movement keys. With keys held the
// tank moves at full speed along the unit direction; otherwise velocity decays.
func Steer(t *Tank, keys KeySet) {
	dir := keys.Direction()
	if dir.IsZero() {
		t.Vel = t.Vel.Scale(IdleDamping)
		return
	}
	t.Vel = dir.Unit().Scale(t.Speed())
}

// Integrate advances the tank's position by its velocity
func Integrate(t *Tank, dt float64) {
	t.Pos = t.Pos.Add(t.Vel.Scale(dt))
}

// ClampToWorld keeps the whole tank body inside the world bounds
func ClampToWorld(t *Tank) {
	t.Pos.X = Clamp(t.Pos.X, t.Radius, WorldSize-t.Radius)
	t.Pos.Y = Clamp(t.Pos.Y, t.Radius, WorldSize-t.Radius)
}

// ResolveObstacles pushes the tank out of every overlapping obstacle, in order,
// and returns the total displacement applied
func ResolveObstacles(t *Tank, obstacles []MapObject) Vector {
	var total Vector
	for _, o := range obstacles {
		if !o.IsObstacle() {
			continue
		}
		var d Vector
		t.Pos, d = PushOut(t.Pos, t.Radius, o)
		total = total.Add(d)
	}
	return total
}

// Move runs the full movement pass for the locally owned tank:
// steering, integration, world bounds, then obstacle push-out
func Move(t *Tank, keys KeySet, obstacles []MapObject, dt float64) {
	Steer(t, keys)
	Integrate(t, dt)
	ClampToWorld(t)
	ResolveObstacles(t, obstacles)
}

package main

// CheckCollision checks if two circles overlap. Touching circles do not collide.
func CheckCollision(a Vector, ra float64, b Vector, rb float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	radSum := ra + rb
	return dx*dx+dy*dy < radSum*radSum
}

// PushOut resolves a circle overlapping an axis-aligned box by moving it along the
// axis of smaller penetration, away from the box center. It returns the corrected
// position and the applied displacement; a non-overlapping circle is returned unchanged.
func PushOut(pos Vector, radius float64, box MapObject) (Vector, Vector) {
	dx := pos.X - box.Pos.X
	dy := pos.Y - box.Pos.Y
	hx := box.Size.X/2 + radius
	hy := box.Size.Y/2 + radius
	if abs(dx) >= hx || abs(dy) >= hy {
		return pos, Vector{}
	}

	// Penetration depth per axis; the smaller one is the minimum translation
	ox := hx - abs(dx)
	oy := hy - abs(dy)
	out := pos
	if ox < oy {
		if dx > 0 {
			out.X = box.Pos.X + hx
		} else {
			out.X = box.Pos.X - hx
		}
	} else {
		if dy > 0 {
			out.Y = box.Pos.Y + hy
		} else {
			out.Y = box.Pos.Y - hy
		}
	}
	return out, out.Sub(pos)
}

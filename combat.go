package main

const (
	KillBountyBase     = 50
	KillBountyPerLevel = 10
)

// FireInterval returns the minimum milliseconds between shots for a reload stat
func FireInterval(reload int) float64 {
	return 1000 / float64(reload*2+3)
}

// CanFire reports whether the tank may shoot at nowMs with the trigger held
func CanFire(t *Tank, fireHeld bool, nowMs int64) bool {
	if !fireHeld || !t.Alive() {
		return false
	}
	return float64(nowMs-t.LastFired) > FireInterval(t.Stats.Reload)
}

// Fire spawns a bullet from the tank and resets its fire timer
func Fire(t *Tank, nowMs int64) Bullet {
	t.LastFired = nowMs
	return NewBullet(t)
}

// KillBounty is the XP credited to whoever lands the killing hit on t
func KillBounty(t *Tank) int {
	return KillBountyBase + t.Level*KillBountyPerLevel
}

// CombatResult summarizes what the bullet pass did to the local tank and shapes
type CombatResult struct {
	Damage   float64 // total damage taken by the local tank
	Killed   bool    // the local tank's hp crossed to 0 this pass
	KillerID string  // owner of the bullet that dealt the lethal hit
	XP       int     // XP earned from shapes destroyed by local bullets
	Shapes   int     // number of shapes destroyed
}

// UpdateBullets advances every bullet one tick and resolves its impacts.
// Order per bullet: expiry, obstacle, local tank, then shapes for locally fired bullets.
// Removed bullets and shapes are dropped from the world before this returns.
// Once the local tank is dead its bullets fly through shapes and score nothing.
func UpdateBullets(w *World, dt float64) CombatResult {
	var res CombatResult
	local := &w.Local
	obstacles := w.Obstacles()
	scoring := local.Alive()

	w.grid.Build(w.Shapes)
	var destroyed map[int]bool

	kept := w.Bullets[:0]
	for i := range w.Bullets {
		b := w.Bullets[i]
		if !b.Update(dt) {
			continue
		}
		if hitsObstacle(b.Pos, obstacles) {
			continue
		}

		// Each peer is authoritative only for damage to its own tank
		if b.OwnerID != local.ID && b.Team != local.Team && local.Alive() {
			if CheckCollision(b.Pos, b.Radius, local.Pos, local.Radius) {
				res.Damage += b.Damage
				if local.TakeDamage(b.Damage) {
					res.Killed = true
					res.KillerID = b.OwnerID
				}
				continue
			}
		}

		if scoring && b.OwnerID == local.ID {
			if idx := w.hitShape(b, destroyed); idx >= 0 {
				s := &w.Shapes[idx]
				if s.TakeDamage(b.Damage) {
					res.XP += s.XPValue
					res.Shapes++
					if destroyed == nil {
						destroyed = make(map[int]bool)
					}
					destroyed[idx] = true
				}
				continue
			}
		}
		kept = append(kept, b)
	}
	// Clear the tail so dropped bullets are not retained
	for i := len(kept); i < len(w.Bullets); i++ {
		w.Bullets[i] = Bullet{}
	}
	w.Bullets = kept

	if len(destroyed) > 0 {
		alive := w.Shapes[:0]
		for i, s := range w.Shapes {
			if !destroyed[i] {
				alive = append(alive, s)
			}
		}
		w.Shapes = alive
		w.FillShapes()
	}
	return res
}

func hitsObstacle(p Vector, obstacles []MapObject) bool {
	for _, o := range obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// hitShape returns the lowest-index live shape the bullet overlaps, or -1
func (w *World) hitShape(b Bullet, destroyed map[int]bool) int {
	w.queryBuf = w.grid.QueryBuf(b.Pos, b.Radius, w.queryBuf[:0])
	best := -1
	for _, i := range w.queryBuf {
		if destroyed[i] || (best >= 0 && i >= best) {
			continue
		}
		s := &w.Shapes[i]
		if CheckCollision(b.Pos, b.Radius, s.Pos, s.Radius) {
			best = i
		}
	}
	return best
}

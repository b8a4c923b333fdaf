package main

import "math"

const (
	autopilotFireRange = 700.0
	autopilotKeepAway  = 220.0
	autopilotDeadzone  = 8.0
)

// statPriority is the order the autopilot spends stat points in
var statPriority = []StatKey{
	StatReload, StatBulletDamage, StatMovementSpeed, StatHealthRegen,
	StatMaxHealth, StatBulletSpeed, StatBulletPenetration, StatBodyDamage,
}

// Autopilot is a headless InputSource. It hunts the nearest enemy tank in
// range, otherwise the nearest shape, from the last published snapshot.
type Autopilot struct {
	view   func() *Snapshot
	screen Vector
}

// NewAutopilot creates an autopilot for a screen of the given size
func NewAutopilot(screen Vector) *Autopilot {
	if screen.IsZero() {
		screen = DefaultScreen
	}
	return &Autopilot{screen: screen}
}

// Attach points the autopilot at a snapshot source. Call before the engine runs.
func (a *Autopilot) Attach(view func() *Snapshot) {
	a.view = view
}

// Sample implements InputSource
func (a *Autopilot) Sample() Input {
	in := Input{Screen: a.screen, Pointer: a.screen.Scale(0.5)}
	if a.view == nil {
		return in
	}
	s := a.view()
	if s == nil || !s.Local.Alive() {
		return in
	}
	target, ok := pickTarget(s)
	if !ok {
		return in
	}
	to := target.Sub(s.Local.Pos)
	dist := to.Len()

	// Aim: the tank sits at the screen center
	in.Pointer = in.Pointer.Add(to.Unit().Scale(100))
	in.Fire = dist < autopilotFireRange

	if dist > autopilotKeepAway {
		in.Keys = keysToward(to)
	}
	return in
}

func pickTarget(s *Snapshot) (Vector, bool) {
	best := math.Inf(1)
	var pos Vector
	for _, t := range s.Remote {
		if t.Team == s.Local.Team {
			continue
		}
		if d := Distance(s.Local.Pos, t.Pos); d < autopilotFireRange && d < best {
			best, pos = d, t.Pos
		}
	}
	if !math.IsInf(best, 1) {
		return pos, true
	}
	for _, sh := range s.Shapes {
		if d := Distance(s.Local.Pos, sh.Pos); d < best {
			best, pos = d, sh.Pos
		}
	}
	return pos, !math.IsInf(best, 1)
}

func keysToward(v Vector) KeySet {
	var keys []Key
	if v.X > autopilotDeadzone {
		keys = append(keys, KeyRight)
	} else if v.X < -autopilotDeadzone {
		keys = append(keys, KeyLeft)
	}
	if v.Y > autopilotDeadzone {
		keys = append(keys, KeyDown)
	} else if v.Y < -autopilotDeadzone {
		keys = append(keys, KeyUp)
	}
	return Keys(keys...)
}

// Spend upgrades stats and takes the first offered evolution
func (a *Autopilot) Spend(e *Engine) {
	for _, k := range statPriority {
		if e.UpgradeStat(k) {
			return
		}
	}
	if offered := e.AvailableEvolutions(); len(offered) > 0 {
		e.Evolve(offered[0])
	}
}

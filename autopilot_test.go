package main

import (
	"math"
	"testing"
)

func snapshotAt(pos Vector) *Snapshot {
	return &Snapshot{Local: NewTank("me", "Me", TeamBlue, pos)}
}

func TestAutopilotIdleWithoutView(t *testing.T) {
	a := NewAutopilot(Vector{})
	in := a.Sample()
	if in.Keys != 0 || in.Fire {
		t.Errorf("detached autopilot should idle, got %+v", in)
	}
	if in.Screen != DefaultScreen {
		t.Errorf("expected default screen, got %+v", in.Screen)
	}
}

func TestAutopilotHuntsNearestShape(t *testing.T) {
	s := snapshotAt(Vector{1000, 1000})
	s.Shapes = []Shape{
		{Pos: Vector{2000, 1000}},
		{Pos: Vector{1000, 1500}},
	}
	a := NewAutopilot(Vector{800, 600})
	a.Attach(func() *Snapshot { return s })

	in := a.Sample()
	if in.Keys != Keys(KeyDown) {
		t.Errorf("expected to drive down toward the nearest shape, got keys %08b", in.Keys)
	}
	if !in.Fire {
		t.Error("shape in range should be fired at")
	}
	if got := in.AimAngle(); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("expected aim straight down, got %v", got)
	}
}

func TestAutopilotPrefersEnemies(t *testing.T) {
	s := snapshotAt(Vector{1000, 1000})
	s.Shapes = []Shape{{Pos: Vector{1050, 1000}}}
	s.Remote = []Tank{
		NewTank("ally", "Ally", TeamBlue, Vector{1010, 1000}),
		NewTank("foe", "Foe", TeamRed, Vector{600, 600}),
	}
	a := NewAutopilot(Vector{})
	a.Attach(func() *Snapshot { return s })

	in := a.Sample()
	if in.Keys != Keys(KeyLeft, KeyUp) {
		t.Errorf("expected to drive toward the enemy, got keys %08b", in.Keys)
	}
	if !in.Fire {
		t.Error("enemy in range should be fired at")
	}
}

func TestAutopilotSkipsSameTeamWithoutTeams(t *testing.T) {
	s := &Snapshot{Local: NewTank("me", "Me", TeamNone, Vector{1000, 1000})}
	s.Shapes = []Shape{{Pos: Vector{1000, 1500}}}
	s.Remote = []Tank{NewTank("loner", "Loner", TeamNone, Vector{600, 1000})}
	a := NewAutopilot(Vector{})
	a.Attach(func() *Snapshot { return s })

	in := a.Sample()
	if in.Keys != Keys(KeyDown) {
		t.Errorf("unteamed tanks cannot hurt each other, expected to chase the shape, got keys %08b", in.Keys)
	}
	if got := in.AimAngle(); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("expected aim at the shape, got %v", got)
	}
}

func TestAutopilotKeepsDistance(t *testing.T) {
	s := snapshotAt(Vector{1000, 1000})
	s.Shapes = []Shape{{Pos: Vector{1100, 1000}}}
	a := NewAutopilot(Vector{})
	a.Attach(func() *Snapshot { return s })
	if in := a.Sample(); in.Keys != 0 || !in.Fire {
		t.Errorf("close target: expected to hold position and fire, got %+v", in)
	}
}

func TestAutopilotIdleWhenDead(t *testing.T) {
	s := snapshotAt(Vector{1000, 1000})
	s.Local.HP = 0
	s.Shapes = []Shape{{Pos: Vector{2000, 1000}}}
	a := NewAutopilot(Vector{})
	a.Attach(func() *Snapshot { return s })
	if in := a.Sample(); in.Keys != 0 || in.Fire {
		t.Errorf("dead tank should idle, got %+v", in)
	}
}

func TestAutopilotSpend(t *testing.T) {
	hub := NewLocalHub()
	enemy := hub.Join()
	e := newTestEngine(t, hub.Join(), nil, nil)
	defer e.Stop()

	enemy.Send(mustEncode(t, MsgPlayerDeath, DeathMsg{ID: "x", KillerID: "me", Bounty: XPForLevel(EvolutionLevel)}))
	e.Tick(t0)

	a := NewAutopilot(Vector{})
	for i := 0; i < EvolutionLevel; i++ {
		a.Spend(e)
	}
	s := e.Snapshot()
	if s.Local.StatPoints != 0 {
		t.Errorf("expected all points spent, %d left", s.Local.StatPoints)
	}
	if s.Local.Stats.Get(StatReload) != StatLimit {
		t.Errorf("reload should be maxed first, got %d", s.Local.Stats.Get(StatReload))
	}
	if s.Local.Class == ClassBasic {
		t.Error("expected an evolution once points ran out")
	}
}

package main

import "testing"

func TestXPCurveMonotonic(t *testing.T) {
	if XPToNextLevel(1) != 100 {
		t.Errorf("level 1 should need 100 XP, got %d", XPToNextLevel(1))
	}
	for lvl := 1; lvl < MaxLevel; lvl++ {
		if XPForLevel(lvl+1) <= XPForLevel(lvl) {
			t.Errorf("XPForLevel not increasing at %d", lvl)
		}
	}
	if CalculateLevel(0) != 1 || CalculateLevel(100) != 2 || CalculateLevel(99) != 1 {
		t.Error("CalculateLevel disagrees with XPForLevel")
	}
}

func TestAwardXPLevelsUp(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	// 100 for level 2, then 282 for level 3
	tank, facts := AwardXP(tank, 100+282+5)
	if tank.Level != 3 {
		t.Fatalf("expected level 3, got %d", tank.Level)
	}
	if tank.StatPoints != 2 {
		t.Errorf("expected 2 stat points, got %d", tank.StatPoints)
	}
	if tank.XP != 5 {
		t.Errorf("expected 5 XP carried over, got %d", tank.XP)
	}
	if tank.MaxXP != XPToNextLevel(3) {
		t.Errorf("expected maxXp %d, got %d", XPToNextLevel(3), tank.MaxXP)
	}
	if len(facts) != 2 || facts[0].Kind != FactLevelUp || facts[1].Level != 3 {
		t.Errorf("unexpected facts %+v", facts)
	}
	if tank.XP >= tank.MaxXP {
		t.Error("xp must stay below maxXp")
	}
}

func TestAwardXPCapsAtMaxLevel(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank, _ = AwardXP(tank, XPForLevel(MaxLevel)*2)
	if tank.Level != MaxLevel {
		t.Errorf("expected level %d, got %d", MaxLevel, tank.Level)
	}
	if tank.XP >= tank.MaxXP {
		t.Errorf("xp %d should stay below maxXp %d", tank.XP, tank.MaxXP)
	}
}

func TestUpgradeStatNoPoints(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	got, facts := UpgradeStat(tank, StatReload)
	if got != tank || facts != nil {
		t.Errorf("upgrade without points should be a no-op, got %+v", got)
	}
}

func TestUpgradeStatAtLimit(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank.StatPoints = 3
	tank.Stats.Reload = StatLimit
	got, facts := UpgradeStat(tank, StatReload)
	if got != tank || facts != nil {
		t.Errorf("upgrade at limit should be a no-op, got %+v", got)
	}
	got, facts = UpgradeStat(tank, StatKey("armor"))
	if got != tank || facts != nil {
		t.Error("unknown stat should be a no-op")
	}
}

func TestUpgradeStat(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank.StatPoints = 1
	got, facts := UpgradeStat(tank, StatReload)
	if got.Stats.Reload != 2 || got.StatPoints != 0 {
		t.Errorf("expected reload 2 and no points left, got %d / %d", got.Stats.Reload, got.StatPoints)
	}
	if len(facts) != 1 || facts[0].Stat != StatReload {
		t.Errorf("unexpected facts %+v", facts)
	}
	if tank.Stats.Reload != 1 {
		t.Error("input tank must not be modified")
	}
}

func TestUpgradeMaxHealthRaisesHP(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank.StatPoints = 1
	tank.HP = 50
	got, _ := UpgradeStat(tank, StatMaxHealth)
	if got.MaxHP != BaseMaxHP+MaxHPPerPoint || got.HP != 50+MaxHPPerPoint {
		t.Errorf("expected maxHp %v hp %v, got %v / %v", BaseMaxHP+MaxHPPerPoint, 50+MaxHPPerPoint, got.MaxHP, got.HP)
	}
}

func TestStatsStayWithinLimit(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank.StatPoints = 100
	for i := 0; i < 20; i++ {
		for _, k := range StatKeys {
			tank, _ = UpgradeStat(tank, k)
		}
	}
	for _, k := range StatKeys {
		if v := tank.Stats.Get(k); v < 0 || v > StatLimit {
			t.Errorf("stat %s out of range: %d", k, v)
		}
	}
	if tank.StatPoints < 0 {
		t.Errorf("negative stat points %d", tank.StatPoints)
	}
}

func TestOfferedEvolutionsGatedByLevel(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	tank.Level = EvolutionLevel - 1
	if got := OfferedEvolutions(tank); len(got) != 0 {
		t.Errorf("no evolutions below level %d, got %v", EvolutionLevel, got)
	}
	tank.Level = EvolutionLevel
	got := OfferedEvolutions(tank)
	want := []TankClass{ClassTwin, ClassSniper, ClassMachineGun, ClassFlankGuard}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offer %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	// Callers may not mutate the tree through the returned slice
	got[0] = ClassDestroyer
	if Evolutions[ClassBasic][0] != ClassTwin {
		t.Error("OfferedEvolutions returned the shared slice")
	}
}

func TestLeafClassNeverOffers(t *testing.T) {
	for _, c := range []TankClass{ClassTripleShot, ClassQuadTank, ClassOverseer, ClassDestroyer, ClassFlankGuard} {
		tank := NewTank("a", "A", TeamBlue, Vector{})
		tank.Class = c
		for _, lvl := range []int{1, EvolutionLevel, MaxLevel} {
			tank.Level = lvl
			if got := OfferedEvolutions(tank); len(got) != 0 {
				t.Errorf("leaf %s at level %d offered %v", c, lvl, got)
			}
		}
	}
}

func TestEvolveIsUnconditional(t *testing.T) {
	tank := NewTank("a", "A", TeamBlue, Vector{})
	got, facts := Evolve(tank, ClassOverseer)
	if got.Class != ClassOverseer {
		t.Errorf("expected Overseer, got %s", got.Class)
	}
	if len(facts) != 1 || facts[0].Kind != FactEvolved {
		t.Errorf("unexpected facts %+v", facts)
	}
}

package main

import "math"

// MaxLevel caps progression; XP stops accruing past the last threshold
const MaxLevel = 45

// XPForLevel returns the total XP required to reach a given level.
// Level 1 requires 0 XP, level 2 requires 100, etc.
// Formula: sum of 100 * i^1.5 for i in 1..level-1
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0.0
	for i := 1; i < level; i++ {
		total += 100.0 * math.Pow(float64(i), 1.5)
	}
	return int(total)
}

// XPToNextLevel returns XP needed from current level to reach the next level
func XPToNextLevel(level int) int {
	return XPForLevel(level+1) - XPForLevel(level)
}

// CalculateLevel returns the level for a given total XP amount
func CalculateLevel(totalXP int) int {
	level := 1
	for level < MaxLevel && totalXP >= XPForLevel(level+1) {
		level++
	}
	return level
}

// FactKind tags a fact emitted by a progression transition
type FactKind string

const (
	FactLevelUp      FactKind = "level_up" // one stat point granted
	FactStatUpgraded FactKind = "stat_upgraded"
	FactEvolved      FactKind = "evolved"
)

// Fact is something a transition made true
type Fact struct {
	Kind  FactKind
	Level int
	Stat  StatKey
	Class TankClass
}

// AwardXP adds XP and applies every level transition it crosses. Each level
// grants one stat point and raises MaxXP along the XPToNextLevel curve.
func AwardXP(t Tank, amount int) (Tank, []Fact) {
	if amount <= 0 {
		return t, nil
	}
	var facts []Fact
	t.XP += amount
	for t.XP >= t.MaxXP && t.Level < MaxLevel {
		t.XP -= t.MaxXP
		t.Level++
		t.StatPoints++
		t.MaxXP = XPToNextLevel(t.Level)
		facts = append(facts, Fact{Kind: FactLevelUp, Level: t.Level})
	}
	if t.Level >= MaxLevel && t.XP >= t.MaxXP {
		t.XP = t.MaxXP - 1
	}
	return t, facts
}

// UpgradeStat spends one stat point on k. Without points, at the cap, or for an
// unknown key it returns t unchanged and no facts.
func UpgradeStat(t Tank, k StatKey) (Tank, []Fact) {
	p := t.Stats.ref(k)
	if t.StatPoints <= 0 || p == nil || *p >= StatLimit {
		return t, nil
	}
	*p++
	t.StatPoints--
	if k == StatMaxHealth {
		t.MaxHP += MaxHPPerPoint
		t.HP += MaxHPPerPoint
	}
	return t, []Fact{{Kind: FactStatUpgraded, Level: t.Level, Stat: k}}
}

// Evolve overwrites the tank's class. Which classes are offered is decided by
// OfferedEvolutions, not here.
func Evolve(t Tank, c TankClass) (Tank, []Fact) {
	t.Class = c
	return t, []Fact{{Kind: FactEvolved, Level: t.Level, Class: c}}
}

// OfferedEvolutions lists the successors of the tank's class once it has
// reached EvolutionLevel. Leaf and unknown classes offer nothing.
func OfferedEvolutions(t Tank) []TankClass {
	if t.Level < EvolutionLevel {
		return nil
	}
	next := Evolutions[t.Class]
	if len(next) == 0 {
		return nil
	}
	out := make([]TankClass, len(next))
	copy(out, next)
	return out
}

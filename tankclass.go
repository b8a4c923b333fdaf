package main

// TankClass identifies a node of the evolution tree
type TankClass string

const (
	ClassBasic      TankClass = "Basic"
	ClassTwin       TankClass = "Twin"
	ClassSniper     TankClass = "Sniper"
	ClassMachineGun TankClass = "Machine Gun"
	ClassFlankGuard TankClass = "Flank Guard"
	ClassTripleShot TankClass = "Triple Shot"
	ClassQuadTank   TankClass = "Quad Tank"
	ClassOverseer   TankClass = "Overseer"
	ClassDestroyer  TankClass = "Destroyer"
)

// EvolutionLevel is the level at which evolutions start being offered
const EvolutionLevel = 15

// Evolutions maps each class to the classes it may evolve into. Leaves map to nil.
var Evolutions = map[TankClass][]TankClass{
	ClassBasic:      {ClassTwin, ClassSniper, ClassMachineGun, ClassFlankGuard},
	ClassTwin:       {ClassTripleShot, ClassQuadTank},
	ClassSniper:     {ClassOverseer},
	ClassMachineGun: {ClassDestroyer},
	ClassFlankGuard: nil,
	ClassTripleShot: nil,
	ClassQuadTank:   nil,
	ClassOverseer:   nil,
	ClassDestroyer:  nil,
}

// WeaponTier holds the fixed bullet parameters of a class
type WeaponTier struct {
	Damage float64
	Radius float64
}

var weaponTiers = map[TankClass]WeaponTier{
	ClassBasic:      {Damage: 15, Radius: 10},
	ClassTwin:       {Damage: 12, Radius: 9},
	ClassSniper:     {Damage: 25, Radius: 9},
	ClassMachineGun: {Damage: 10, Radius: 10},
	ClassFlankGuard: {Damage: 15, Radius: 10},
	ClassTripleShot: {Damage: 14, Radius: 9},
	ClassQuadTank:   {Damage: 13, Radius: 9},
	ClassOverseer:   {Damage: 30, Radius: 12},
	ClassDestroyer:  {Damage: 45, Radius: 18},
}

// GetWeaponTier returns the weapon for a class, falling back to Basic
func GetWeaponTier(c TankClass) WeaponTier {
	if w, ok := weaponTiers[c]; ok {
		return w
	}
	return weaponTiers[ClassBasic]
}

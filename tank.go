package main

const (
	WorldSize           = 5000.0
	InitialTankRadius   = 28.0
	StatLimit           = 8
	BaseMaxHP           = 100.0
	MaxHPPerPoint       = 20.0 // maxHp gained per maxHealth point above 1
	RegenPerPoint       = 0.8  // hp/s per healthRegen point
	BaseSpeed           = 180.0
	SpeedPerPoint       = 40.0
	IdleDamping         = 0.9 // velocity multiplier per tick with no keys held
	SpawnFallbackOffset = 300.0
)

// Team is the side a tank or bullet belongs to
type Team string

const (
	TeamBlue Team = "BLUE"
	TeamRed  Team = "RED"
	TeamNone Team = "NONE"
)

// ParseTeam maps user input to a team, defaulting to BLUE
func ParseTeam(s string) Team {
	switch Team(s) {
	case TeamRed, "red":
		return TeamRed
	case TeamNone, "none":
		return TeamNone
	}
	return TeamBlue
}

// StatKey names one of the eight upgradeable modifiers
type StatKey string

const (
	StatHealthRegen       StatKey = "healthRegen"
	StatMaxHealth         StatKey = "maxHealth"
	StatBodyDamage        StatKey = "bodyDamage"
	StatBulletSpeed       StatKey = "bulletSpeed"
	StatBulletPenetration StatKey = "bulletPenetration"
	StatBulletDamage      StatKey = "bulletDamage"
	StatReload            StatKey = "reload"
	StatMovementSpeed     StatKey = "movementSpeed"
)

// StatKeys lists every stat in display order
var StatKeys = []StatKey{
	StatHealthRegen, StatMaxHealth, StatBodyDamage, StatBulletSpeed,
	StatBulletPenetration, StatBulletDamage, StatReload, StatMovementSpeed,
}

// Stats holds the eight independently capped modifiers
type Stats struct {
	HealthRegen       int `json:"healthRegen" msgpack:"hr"`
	MaxHealth         int `json:"maxHealth" msgpack:"mh"`
	BodyDamage        int `json:"bodyDamage" msgpack:"bd"`
	BulletSpeed       int `json:"bulletSpeed" msgpack:"bs"`
	BulletPenetration int `json:"bulletPenetration" msgpack:"bp"`
	BulletDamage      int `json:"bulletDamage" msgpack:"bdm"`
	Reload            int `json:"reload" msgpack:"rl"`
	MovementSpeed     int `json:"movementSpeed" msgpack:"ms"`
}

// InitialStats are the modifiers every new tank starts with
func InitialStats() Stats {
	return Stats{
		HealthRegen: 0, MaxHealth: 1, BodyDamage: 1, BulletSpeed: 1,
		BulletPenetration: 1, BulletDamage: 1, Reload: 1, MovementSpeed: 2,
	}
}

func (s *Stats) ref(k StatKey) *int {
	switch k {
	case StatHealthRegen:
		return &s.HealthRegen
	case StatMaxHealth:
		return &s.MaxHealth
	case StatBodyDamage:
		return &s.BodyDamage
	case StatBulletSpeed:
		return &s.BulletSpeed
	case StatBulletPenetration:
		return &s.BulletPenetration
	case StatBulletDamage:
		return &s.BulletDamage
	case StatReload:
		return &s.Reload
	case StatMovementSpeed:
		return &s.MovementSpeed
	}
	return nil
}

// Get returns the value of stat k, or -1 for an unknown key
func (s Stats) Get(k StatKey) int {
	if p := s.ref(k); p != nil {
		return *p
	}
	return -1
}

// Tank is a player vehicle. Exactly one per engine is locally owned.
type Tank struct {
	ID         string    `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"n"`
	Team       Team      `json:"team" msgpack:"t"`
	Pos        Vector    `json:"pos" msgpack:"p"`
	Vel        Vector    `json:"vel" msgpack:"v"`
	Angle      float64   `json:"angle" msgpack:"a"`
	Radius     float64   `json:"radius" msgpack:"r"`
	HP         float64   `json:"hp" msgpack:"hp"`
	MaxHP      float64   `json:"maxHp" msgpack:"mhp"`
	Class      TankClass `json:"class" msgpack:"c"`
	Level      int       `json:"level" msgpack:"l"`
	XP         int       `json:"xp" msgpack:"xp"`
	MaxXP      int       `json:"maxXp" msgpack:"mxp"`
	StatPoints int       `json:"statPoints" msgpack:"sp"`
	Stats      Stats     `json:"stats" msgpack:"st"`
	Score      int       `json:"score" msgpack:"sc"`
	LastFired  int64     `json:"lastFired" msgpack:"lf"` // unix ms
}

// NewTank creates a level 1 Basic tank at pos
func NewTank(id, name string, team Team, pos Vector) Tank {
	return Tank{
		ID:     id,
		Name:   name,
		Team:   team,
		Pos:    pos,
		Radius: InitialTankRadius,
		HP:     BaseMaxHP,
		MaxHP:  BaseMaxHP,
		Class:  ClassBasic,
		Level:  1,
		MaxXP:  XPToNextLevel(1),
		Stats:  InitialStats(),
	}
}

// Speed is the top movement speed given the movementSpeed stat
func (t *Tank) Speed() float64 {
	return BaseSpeed + float64(t.Stats.MovementSpeed)*SpeedPerPoint
}

// Alive reports whether the tank still has health
func (t *Tank) Alive() bool {
	return t.HP > 0
}

// TakeDamage reduces HP, clamped at 0, and returns true if this hit killed the tank
func (t *Tank) TakeDamage(dmg float64) bool {
	if !t.Alive() {
		return false
	}
	t.HP -= dmg
	if t.HP <= 0 {
		t.HP = 0
		return true
	}
	return false
}

// Regenerate heals by the healthRegen stat over dt seconds, capped at MaxHP
func (t *Tank) Regenerate(dt float64) {
	if !t.Alive() || t.Stats.HealthRegen == 0 {
		return
	}
	t.HP = Clamp(t.HP+float64(t.Stats.HealthRegen)*RegenPerPoint*dt, 0, t.MaxHP)
}

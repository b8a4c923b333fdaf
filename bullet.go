package main

const (
	MuzzleSpeed    = 600.0 // units/s
	BulletLifetime = 2.0   // seconds
	MuzzleOffset   = 1.5   // spawn distance in tank radii
)

// Bullet is a projectile. Team is fixed at creation and drives friendly-fire exclusion.
type Bullet struct {
	ID       string  `json:"id" msgpack:"id"`
	OwnerID  string  `json:"ownerId" msgpack:"o"`
	Team     Team    `json:"team" msgpack:"t"`
	Pos      Vector  `json:"pos" msgpack:"p"`
	Vel      Vector  `json:"vel" msgpack:"v"`
	Radius   float64 `json:"radius" msgpack:"r"`
	Damage   float64 `json:"damage" msgpack:"d"`
	LifeTime float64 `json:"lifeTime" msgpack:"lt"`
}

// NewBullet creates a bullet leaving the firer's barrel along its angle
func NewBullet(owner *Tank) Bullet {
	dir := FromAngle(owner.Angle)
	w := GetWeaponTier(owner.Class)
	return Bullet{
		ID:      GenerateID(3),
		OwnerID: owner.ID,
		Team:    owner.Team,
		Pos:     owner.Pos.Add(dir.Scale(owner.Radius * MuzzleOffset)),
		Vel:     dir.Scale(MuzzleSpeed),
		Radius:  w.Radius,
		Damage:  w.Damage,
	}
}

// Update moves the bullet one tick and reports whether it is still within its lifetime
func (b *Bullet) Update(dt float64) bool {
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	b.LifeTime += dt
	return b.LifeTime <= BulletLifetime
}

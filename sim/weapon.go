package sim

import "math"

// Weapon cooldowns and spawn geometry
const (
	ShotCooldown    = 0.3 // seconds between single shots
	MissileCooldown = 0.8
	SpreadCount     = 8
	ProjectileY     = 1.0
	MissileY        = 2.0
)

// Triple-rocket fan
var (
	TripleAngles  = [...]float64{-0.15, 0, 0.15}
	TripleOffsets = [...]float64{-0.5, 0, 0.5}
)

// Shot describes one entity to spawn
type Shot struct {
	Position Vec3
	Angle    float64
	CarSpeed float64 // vehicle speed at the moment of firing
}

// Weapons gates firing on cooldowns and the current buffs. It only decides
// what to spawn; it does not track spawned entities.
type Weapons struct {
	spreadCooldown  float64
	spreadHalfAngle float64
	lastShot        float64
	lastMissile     float64
}

// NewWeapons returns weapons ready to fire immediately
func NewWeapons(cfg Config) *Weapons {
	w := &Weapons{
		spreadCooldown:  cfg.SpreadCooldown,
		spreadHalfAngle: cfg.SpreadHalfAngle,
		lastShot:        math.Inf(-1),
		lastMissile:     math.Inf(-1),
	}
	if w.spreadCooldown <= 0 {
		w.spreadCooldown = DefaultConfig(cfg.Mode).SpreadCooldown
	}
	if w.spreadHalfAngle <= 0 {
		w.spreadHalfAngle = DefaultConfig(cfg.Mode).SpreadHalfAngle
	}
	return w
}

// SpreadAngles returns the evenly spaced offsets of a spread volley
func (w *Weapons) SpreadAngles() []float64 {
	step := w.spreadHalfAngle * 2 / (SpreadCount - 1)
	out := make([]float64, SpreadCount)
	for i := range out {
		out[i] = -w.spreadHalfAngle + float64(i)*step
	}
	return out
}

// Fire returns the projectiles for a fire intent at time now, or nil while
// cooling down. Spread-shot fires a fan on its own cooldown.
func (w *Weapons) Fire(now float64, v *Vehicle, spread bool) []Shot {
	cd := ShotCooldown
	if spread {
		cd = w.spreadCooldown
	}
	if now-w.lastShot <= cd {
		return nil
	}
	w.lastShot = now
	pos := Vec3{X: v.X, Y: ProjectileY, Z: v.Z}
	if !spread {
		return []Shot{{Position: pos, Angle: v.Rotation, CarSpeed: v.Speed}}
	}
	angles := w.SpreadAngles()
	shots := make([]Shot, len(angles))
	for i, a := range angles {
		shots[i] = Shot{Position: pos, Angle: v.Rotation + a, CarSpeed: v.Speed}
	}
	return shots
}

// FireMissile returns the missiles for a missile intent and consumes ammo.
// It does nothing without ammo or while cooling down.
func (w *Weapons) FireMissile(now float64, v *Vehicle, p *Powerups) []Shot {
	if p.Missiles <= 0 || now-w.lastMissile <= MissileCooldown {
		return nil
	}
	w.lastMissile = now
	if !p.Triple.Active {
		p.ConsumeMissiles(1)
		return []Shot{{
			Position: Vec3{X: v.X, Y: MissileY, Z: v.Z},
			Angle:    v.Rotation,
			CarSpeed: v.Speed,
		}}
	}
	shots := make([]Shot, len(TripleAngles))
	for i := range TripleAngles {
		shots[i] = Shot{
			Position: Vec3{X: v.X + TripleOffsets[i], Y: MissileY, Z: v.Z},
			Angle:    v.Rotation + TripleAngles[i],
			CarSpeed: v.Speed,
		}
	}
	p.ConsumeMissiles(len(shots))
	return shots
}

package sim

import "math"

const (
	ProjectileSpeed       = 80.0  // units/s before carrier lead-in
	ProjectileMaxDistance = 200.0 // expires after traveling this far
	ProjectileBoundX      = 80.0
	ProjectileHitX        = 2.0 // half-extents of the hit check around a car
	ProjectileHitZ        = 3.0
)

// Projectile is a plasma bolt flying in a straight line
type Projectile struct {
	ID       string
	Position Vec3
	Origin   Vec3
	Angle    float64
	Speed    float64
	Alive    bool
}

// NewProjectile creates a projectile for shot. Its speed includes the
// carrier's velocity at the moment of firing.
func NewProjectile(id string, s Shot) *Projectile {
	return &Projectile{
		ID:       id,
		Position: s.Position,
		Origin:   s.Position,
		Angle:    s.Angle,
		Speed:    ProjectileSpeed + s.CarSpeed*SpeedScale,
		Alive:    true,
	}
}

// Update moves the projectile one tick and kills it once out of range
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.Position.X -= math.Sin(p.Angle) * p.Speed * dt
	p.Position.Z -= math.Cos(p.Angle) * p.Speed * dt
	if p.Traveled() > ProjectileMaxDistance || math.Abs(p.Position.X) > ProjectileBoundX {
		p.Alive = false
	}
}

// Traveled returns the planar distance from the spawn point
func (p *Projectile) Traveled() float64 {
	return Distance(p.Origin.X, p.Origin.Z, p.Position.X, p.Position.Z)
}

// HitTest returns the first live car the projectile is inside, or nil
func (p *Projectile) HitTest(candidates []*Obstacle) *Obstacle {
	for _, o := range candidates {
		if o.removed || !o.IsCar() {
			continue
		}
		if math.Abs(p.Position.X-o.X) < ProjectileHitX && math.Abs(p.Position.Z-o.Z) < ProjectileHitZ {
			return o
		}
	}
	return nil
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{ID: p.ID, Position: p.Position, Angle: p.Angle}
}

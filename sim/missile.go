package sim

import "math"

const (
	MissileGravity       = 50.0
	MissileVerticalSpeed = 25.0
	MissileRange         = 45.0 // intended landing distance ahead of a still carrier
	MissileMargin        = 15.0 // extra horizontal speed so it always outruns the carrier
	MissileGroundY       = 1.0
	MissileSplashRadius  = 12.0
	MissileLifetime      = 8.0
	MissileGrace         = 0.5 // bounds are not checked before this
	MissileBoundX        = 80.0
	MissileBoundZ        = 300.0 // from the launch point
	MissileFloorY        = -20.0
	MissileMaxRange      = 240.0 // planar distance from the launch point
)

// MissileStatus is the outcome of one missile update
type MissileStatus int

const (
	MissileFlying   MissileStatus = 0
	MissileLanded   MissileStatus = 1 // reached the ground; splash applies
	MissileTimedOut MissileStatus = 2
	MissileOutside  MissileStatus = 3 // left the plausible world
)

// MissileFlightTime is how long a missile launched from MissileY takes to
// fall back to MissileGroundY, one unit lower
func MissileFlightTime() float64 {
	v, g := MissileVerticalSpeed, MissileGravity
	return (v + math.Sqrt(v*v+2*g)) / g
}

// MissileHorizontalSpeed returns the launch speed along the heading for a
// carrier moving at carSpeed
func MissileHorizontalSpeed(carSpeed float64) float64 {
	return math.Abs(carSpeed)*SpeedScale + MissileRange/MissileFlightTime() + MissileMargin
}

// Missile is an area-damage rocket on a ballistic arc
type Missile struct {
	ID       string
	Position Vec3
	Origin   Vec3
	Velocity Vec3
	Angle    float64
	Life     float64
	Alive    bool
}

// NewMissile launches a missile for shot
func NewMissile(id string, s Shot) *Missile {
	h := MissileHorizontalSpeed(s.CarSpeed)
	return &Missile{
		ID:       id,
		Position: s.Position,
		Origin:   s.Position,
		Velocity: Vec3{
			X: -math.Sin(s.Angle) * h,
			Y: MissileVerticalSpeed,
			Z: -math.Cos(s.Angle) * h,
		},
		Angle: s.Angle,
		Alive: true,
	}
}

// Update integrates one tick: position first, then gravity
func (m *Missile) Update(dt float64) MissileStatus {
	if !m.Alive {
		return MissileFlying
	}
	m.Life += dt
	if m.Life > MissileLifetime {
		m.Alive = false
		return MissileTimedOut
	}

	m.Position = m.Position.Add(m.Velocity.Scale(dt))
	m.Velocity.Y -= MissileGravity * dt

	if m.Position.Y <= MissileGroundY {
		m.Position.Y = MissileGroundY
		m.Alive = false
		return MissileLanded
	}

	if m.Life > MissileGrace {
		p := m.Position
		if math.Abs(p.X) > MissileBoundX || math.Abs(p.Z-m.Origin.Z) > MissileBoundZ || p.Y < MissileFloorY {
			m.Alive = false
			return MissileOutside
		}
	}
	if Distance(m.Origin.X, m.Origin.Z, m.Position.X, m.Position.Z) > MissileMaxRange {
		m.Alive = false
		return MissileOutside
	}
	return MissileFlying
}

// Splash returns every live car within the blast radius of the missile
func (m *Missile) Splash(candidates []*Obstacle) []*Obstacle {
	var hit []*Obstacle
	for _, o := range candidates {
		if o.removed || !o.IsCar() {
			continue
		}
		if Distance(m.Position.X, m.Position.Z, o.X, o.Z) <= MissileSplashRadius {
			hit = append(hit, o)
		}
	}
	return hit
}

// ToState converts to protocol state
func (m *Missile) ToState() MissileState {
	return MissileState{ID: m.ID, Position: m.Position, Velocity: m.Velocity}
}

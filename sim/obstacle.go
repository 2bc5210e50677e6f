package sim

// ObstacleType identifies what an obstacle is and how a hit resolves
type ObstacleType int

const (
	ObstacleCar            ObstacleType = 0
	ObstacleReward         ObstacleType = 1
	ObstacleCone           ObstacleType = 2 // boost pickup
	ObstacleRocketLauncher ObstacleType = 3
	ObstacleTripleRocket   ObstacleType = 4
)

var obstacleTypeNames = [...]string{
	ObstacleCar:            "car",
	ObstacleReward:         "reward",
	ObstacleCone:           "cone",
	ObstacleRocketLauncher: "rocket_launcher",
	ObstacleTripleRocket:   "triple_rocket",
}

func (t ObstacleType) String() string {
	if int(t) < 0 || int(t) >= len(obstacleTypeNames) {
		return "unknown"
	}
	return obstacleTypeNames[t]
}

// Lane is the travel direction of a traffic car
type Lane int

const (
	LaneLeft  Lane = 0 // oncoming traffic, moves toward +Z
	LaneRight Lane = 1 // same-direction traffic, moves toward -Z
)

func (l Lane) String() string {
	if l == LaneRight {
		return "right"
	}
	return "left"
}

// Lane offsets across the road
var (
	CarLanes = [...]float64{-12, -6, 6, 12}
	AllLanes = [...]float64{-12, -6, 0, 6, 12}
)

const (
	OncomingVelocity = 30.0  // units/s for left-lane cars
	TrafficVelocity  = -20.0 // units/s for right-lane cars
)

// Footprint sizes (width along X, depth along Z)
const (
	PickupSize   = 1.0
	LauncherSize = 1.6
	CarWidth     = 1.8
	CarLength    = 3.5
)

// CarState is the kinematic state only traffic cars carry
type CarState struct {
	Lane             Lane
	Velocity         float64 // signed Z speed, units/s
	OriginalVelocity float64
	RecoverAt        float64 // session time when Velocity reverts; valid while Recovering
	Recovering       bool
}

// Obstacle is one object on the road. Car is nil for every non-car type.
type Obstacle struct {
	ID   string
	X, Z float64
	Type ObstacleType
	Car  *CarState

	removed bool
}

// newObstacle builds an obstacle of type t at (x, z)
func newObstacle(id string, x, z float64, t ObstacleType) *Obstacle {
	o := &Obstacle{ID: id, X: x, Z: z, Type: t}
	if t == ObstacleCar {
		lane, vel := LaneRight, TrafficVelocity
		if x < 0 {
			lane, vel = LaneLeft, OncomingVelocity
		}
		o.Car = &CarState{Lane: lane, Velocity: vel, OriginalVelocity: vel}
	}
	return o
}

// IsCar reports whether the obstacle is traffic
func (o *Obstacle) IsCar() bool {
	return o.Type == ObstacleCar
}

// Removed reports whether gameplay consumed the obstacle this tick
func (o *Obstacle) Removed() bool {
	return o.removed
}

// Bounds returns the obstacle's axis-aligned footprint
func (o *Obstacle) Bounds() Rect {
	w, d := PickupSize, PickupSize
	switch o.Type {
	case ObstacleCar:
		w, d = CarWidth, CarLength
	case ObstacleRocketLauncher, ObstacleTripleRocket:
		w, d = LauncherSize, LauncherSize
	}
	return Rect{X: o.X - w/2, Z: o.Z - d/2, W: w, D: d}
}

// Update moves a car one tick, restoring its cruise velocity once a bounce
// has worn off. Non-car obstacles never move.
func (o *Obstacle) Update(now, dt float64) {
	c := o.Car
	if c == nil {
		return
	}
	if c.Recovering && now > c.RecoverAt {
		c.Velocity = c.OriginalVelocity
		c.Recovering = false
		c.RecoverAt = 0
	}
	o.Z += c.Velocity * dt
}

// ToState converts to an immutable snapshot value
func (o *Obstacle) ToState() ObstacleState {
	st := ObstacleState{ID: o.ID, X: o.X, Z: o.Z, Type: o.Type.String()}
	if o.Car != nil {
		st.Velocity = o.Car.Velocity
		st.Lane = o.Car.Lane.String()
	}
	return st
}

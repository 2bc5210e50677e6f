package sim

import "math"

const (
	BounceMinVelocity   = 3.0 // player world velocity below this never shoves traffic
	RearEndPushFactor   = 0.2
	RearEndPushMax      = 15.0
	RearEndBoostFactor  = 0.04
	RearEndBoostMax     = 5.0
	HeadOnFactor        = 0.25
	HeadOnMax           = 25.0
	HeadOnVelocityScale = 0.8
	BounceRecovery      = 2.0 // seconds before a shoved car resumes cruising
)

// Rect is an axis-aligned footprint on the road plane. (X, Z) is the
// minimum corner.
type Rect struct {
	X, Z float64
	W, D float64
}

// Overlaps reports strict overlap; touching edges do not count
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Z < o.Z+o.D &&
		r.Z+r.D > o.Z
}

// HitKind classifies what the vehicle ran into
type HitKind int

const (
	HitNone           HitKind = 0
	HitCar            HitKind = 1
	HitReward         HitKind = 2
	HitBoost          HitKind = 3
	HitRocketLauncher HitKind = 4
	HitTripleRocket   HitKind = 5
)

// BounceMode is the shape of a car-on-car impact
type BounceMode int

const (
	BounceRearEnd BounceMode = 0
	BounceHeadOn  BounceMode = 1
)

// CarBounce is how a struck car reacts. Displacement is a signed Z offset.
type CarBounce struct {
	Mode          BounceMode
	RelativeSpeed float64
	Displacement  float64
	NewVelocity   float64
}

// CollisionResult is the outcome of one vehicle test
type CollisionResult struct {
	Hit      bool
	Obstacle *Obstacle
	Kind     HitKind
	Bounce   *CarBounce // set only for car hits fast enough to shove
}

func classify(t ObstacleType) HitKind {
	switch t {
	case ObstacleCone:
		return HitBoost
	case ObstacleReward:
		return HitReward
	case ObstacleRocketLauncher:
		return HitRocketLauncher
	case ObstacleTripleRocket:
		return HitTripleRocket
	default:
		return HitCar
	}
}

// TestCollision checks the vehicle footprint at (x, z) against nearby
// obstacles. The first overlap in slice order wins; simultaneous hits on
// the same tick are not resolved.
func TestCollision(x, z float64, nearby []*Obstacle, speed float64) CollisionResult {
	box := VehicleBounds(x, z)
	for _, o := range nearby {
		if o.removed || !box.Overlaps(o.Bounds()) {
			continue
		}
		res := CollisionResult{Hit: true, Obstacle: o, Kind: classify(o.Type)}
		if res.Kind == HitCar && o.Car != nil {
			res.Bounce = ComputeCarBounce(-speed*SpeedScale, o.Car.Velocity)
		}
		return res
	}
	return CollisionResult{}
}

// ComputeCarBounce returns the struck car's response given the player's and
// the car's Z velocities in world units per second, or nil when the player
// is too slow to shove it.
func ComputeCarBounce(playerVel, enemyVel float64) *CarBounce {
	if math.Abs(playerVel) <= BounceMinVelocity {
		return nil
	}
	dir := sign(enemyVel)
	sameDir := (playerVel < 0) == (enemyVel < 0)
	if sameDir && math.Abs(playerVel) > math.Abs(enemyVel) {
		rel := math.Abs(playerVel - enemyVel)
		return &CarBounce{
			Mode:          BounceRearEnd,
			RelativeSpeed: rel,
			Displacement:  dir * math.Min(rel*RearEndPushFactor, RearEndPushMax),
			NewVelocity:   enemyVel + dir*math.Min(rel*RearEndBoostFactor, RearEndBoostMax),
		}
	}
	rel := math.Abs(playerVel) + math.Abs(enemyVel)
	return &CarBounce{
		Mode:          BounceHeadOn,
		RelativeSpeed: rel,
		Displacement:  -dir * math.Min(rel*HeadOnFactor, HeadOnMax),
		NewVelocity:   enemyVel * HeadOnVelocityScale,
	}
}

// ApplyCarBounce shoves a car and schedules its velocity recovery
func ApplyCarBounce(o *Obstacle, b *CarBounce, now float64) {
	if o.Car == nil || b == nil {
		return
	}
	o.Z += b.Displacement
	o.Car.Velocity = b.NewVelocity
	o.Car.RecoverAt = now + BounceRecovery
	o.Car.Recovering = true
}

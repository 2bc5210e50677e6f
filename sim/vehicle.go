package sim

import "math"

const (
	VehicleAccel      = 1.8  // units/s² at boost 1.0
	VehicleMaxSpeed   = 0.9  // units/tick-frame at boost 1.0
	VehicleDecel      = 0.8  // coasting drag
	VehicleBrake      = 2.0  // brake/reverse rate
	VehicleSteerSpeed = 3.0  // steer units/s
	VehicleMaxSteer   = 0.8
	SteerCentering    = 0.8  // steer multiplier per tick when released
	SteerDeadZone     = 0.1  // below this the wheel snaps straight
	SpeedScale        = 60.0 // world units per speed unit per second
	TrackHalfWidth    = 18.0
	BounceStopSpeed   = 0.05
	BounceDistance    = 4.5 // world units per unit of speed
	BounceRestitution = 0.5
	HUDSpeedRef       = 1.8 // speed reading 100%
	VehicleWidth      = 2.0
	VehicleLength     = 4.0
)

// Intent is the sampled driver input for one tick
type Intent struct {
	Accelerate  bool `json:"accel" msgpack:"accel"`
	Brake       bool `json:"brake" msgpack:"brake"`
	SteerLeft   bool `json:"left" msgpack:"left"`
	SteerRight  bool `json:"right" msgpack:"right"`
	Fire        bool `json:"fire" msgpack:"fire"`
	FireMissile bool `json:"missile" msgpack:"missile"`
}

// Vehicle is the player car. Forward is -Z when Rotation is zero.
type Vehicle struct {
	X, Z            float64
	Rotation        float64
	Speed           float64 // signed; negative while reversing
	Steer           float64
	BoostMultiplier float64
	MaxSpeed        float64 // speed cap used by the last Integrate
}

// NewVehicle returns a vehicle at rest at the origin
func NewVehicle() *Vehicle {
	return &Vehicle{BoostMultiplier: 1, MaxSpeed: VehicleMaxSpeed}
}

// responsiveness scales steering by speed so the car can still turn when slow
func responsiveness(speed float64) float64 {
	s := math.Abs(speed)
	switch {
	case s < 0.2:
		return 0.8
	case s < 0.4:
		return 0.6
	default:
		return math.Max(0.3, s)
	}
}

// Integrate advances speed, steering and heading by dt and returns the
// tentative, unclamped position. Position is not committed until
// CommitPosition.
func (v *Vehicle) Integrate(in Intent, dt float64) (x, z float64) {
	mul := v.BoostMultiplier
	if mul < 1 {
		mul = 1
	}
	accel := VehicleAccel * mul
	maxSpeed := VehicleMaxSpeed * mul
	v.MaxSpeed = maxSpeed

	switch {
	case in.Accelerate:
		v.Speed += accel * dt
	case in.Brake:
		v.Speed -= VehicleBrake * dt
	default:
		if v.Speed > 0 {
			v.Speed = math.Max(0, v.Speed-VehicleDecel*dt)
		} else if v.Speed < 0 {
			v.Speed = math.Min(0, v.Speed+VehicleDecel*dt)
		}
	}
	v.Speed = Clamp(v.Speed, -maxSpeed*0.5, maxSpeed)

	switch {
	case in.SteerLeft:
		v.Steer = math.Min(v.Steer+VehicleSteerSpeed*dt, VehicleMaxSteer)
	case in.SteerRight:
		v.Steer = math.Max(v.Steer-VehicleSteerSpeed*dt, -VehicleMaxSteer)
	default:
		if math.Abs(v.Steer) > SteerDeadZone {
			v.Steer *= SteerCentering
		} else {
			v.Steer = 0
		}
	}

	v.Rotation += v.Steer * responsiveness(v.Speed) * 2 * dt

	step := v.Speed * dt * SpeedScale
	x = v.X - math.Sin(v.Rotation)*step
	z = v.Z - math.Cos(v.Rotation)*step
	return x, z
}

// CommitPosition accepts a tentative position from Integrate
func (v *Vehicle) CommitPosition(x, z float64) {
	v.X = Clamp(x, -TrackHalfWidth, TrackHalfWidth)
	v.Z = z
}

// ApplyBounce knocks the vehicle back along its heading and reverses it at
// half speed. Near-stationary vehicles just stop.
func (v *Vehicle) ApplyBounce() {
	s := math.Abs(v.Speed)
	if s < BounceStopSpeed {
		v.Speed = 0
		return
	}
	d := s * BounceDistance
	v.X = Clamp(v.X+math.Sin(v.Rotation)*d, -TrackHalfWidth, TrackHalfWidth)
	v.Z += math.Cos(v.Rotation) * d
	v.Speed = -s * BounceRestitution
}

// Velocity returns the vehicle velocity in world units per second
func (v *Vehicle) Velocity() float64 {
	return v.Speed * SpeedScale
}

// SpeedPercent is the HUD speed reading
func (v *Vehicle) SpeedPercent() int {
	return int(math.Round(math.Abs(v.Speed) / HUDSpeedRef * 100))
}

// VehicleBounds returns the vehicle's axis-aligned footprint at (x, z)
func VehicleBounds(x, z float64) Rect {
	return Rect{X: x - VehicleWidth/2, Z: z - VehicleLength/2, W: VehicleWidth, D: VehicleLength}
}

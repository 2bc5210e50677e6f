package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt60 = 1.0 / 60.0

func TestNewVehicle(t *testing.T) {
	v := NewVehicle()
	assert.Zero(t, v.X)
	assert.Zero(t, v.Z)
	assert.Zero(t, v.Speed)
	assert.Equal(t, 1.0, v.BoostMultiplier)
}

func TestIntegrateAccelerates(t *testing.T) {
	v := NewVehicle()
	x, z := v.Integrate(Intent{Accelerate: true}, dt60)

	assert.InDelta(t, 1.8*dt60, v.Speed, 1e-12)
	assert.InDelta(t, 0, x, 1e-12)
	// forward is -Z: speed * dt * 60
	assert.InDelta(t, -v.Speed, z, 1e-12)
	// nothing committed yet
	assert.Zero(t, v.Z)
}

func TestSpeedClampedToMax(t *testing.T) {
	v := NewVehicle()
	for i := 0; i < 600; i++ {
		v.Integrate(Intent{Accelerate: true}, dt60)
	}
	assert.InDelta(t, VehicleMaxSpeed, v.Speed, 1e-12)

	for i := 0; i < 600; i++ {
		v.Integrate(Intent{Brake: true}, dt60)
	}
	assert.InDelta(t, -VehicleMaxSpeed*0.5, v.Speed, 1e-12)
}

func TestBoostRaisesSpeedCap(t *testing.T) {
	v := NewVehicle()
	v.BoostMultiplier = 1.5
	for i := 0; i < 600; i++ {
		v.Integrate(Intent{Accelerate: true}, dt60)
	}
	assert.InDelta(t, VehicleMaxSpeed*1.5, v.Speed, 1e-12)
	assert.InDelta(t, VehicleMaxSpeed*1.5, v.MaxSpeed, 1e-12)
}

func TestCoastingDecaysToZero(t *testing.T) {
	v := NewVehicle()
	v.Speed = 0.5
	for i := 0; i < 120; i++ {
		v.Integrate(Intent{}, dt60)
	}
	assert.Zero(t, v.Speed)

	v.Speed = -0.3
	for i := 0; i < 120; i++ {
		v.Integrate(Intent{}, dt60)
	}
	assert.Zero(t, v.Speed)
}

func TestSteeringCentering(t *testing.T) {
	v := NewVehicle()
	v.Steer = 0.5
	v.Integrate(Intent{}, dt60)
	assert.InDelta(t, 0.4, v.Steer, 1e-12)

	v.Steer = 0.05
	v.Integrate(Intent{}, dt60)
	assert.Zero(t, v.Steer)
}

func TestSteeringClamped(t *testing.T) {
	v := NewVehicle()
	for i := 0; i < 120; i++ {
		v.Integrate(Intent{SteerLeft: true}, dt60)
	}
	assert.InDelta(t, VehicleMaxSteer, v.Steer, 1e-12)
	for i := 0; i < 120; i++ {
		v.Integrate(Intent{SteerRight: true}, dt60)
	}
	assert.InDelta(t, -VehicleMaxSteer, v.Steer, 1e-12)
}

func TestResponsiveness(t *testing.T) {
	tests := []struct {
		speed float64
		want  float64
	}{
		{0, 0.8},
		{0.1, 0.8},
		{-0.15, 0.8},
		{0.3, 0.6},
		{-0.35, 0.6},
		{0.4, 0.4},
		{0.9, 0.9},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, responsiveness(tt.speed), 1e-12, "speed %v", tt.speed)
	}
}

func TestHeadingTurnRate(t *testing.T) {
	v := NewVehicle()
	v.Speed = 0.5
	v.Steer = 0.4
	v.Integrate(Intent{SteerLeft: true}, dt60)
	// steer rises to 0.45, factor max(0.3, |speed|) after coasting
	wantSteer := 0.4 + VehicleSteerSpeed*dt60
	wantSpeed := 0.5 - VehicleDecel*dt60
	assert.InDelta(t, wantSteer, v.Steer, 1e-12)
	assert.InDelta(t, wantSteer*wantSpeed*2*dt60, v.Rotation, 1e-12)
}

func TestCommitClampsX(t *testing.T) {
	v := NewVehicle()
	v.CommitPosition(25, -10)
	assert.Equal(t, TrackHalfWidth, v.X)
	assert.Equal(t, -10.0, v.Z)
	v.CommitPosition(-30, -11)
	assert.Equal(t, -TrackHalfWidth, v.X)
}

func TestApplyBounce(t *testing.T) {
	v := NewVehicle()
	v.Z = -100
	v.Speed = 0.8
	v.ApplyBounce()

	assert.InDelta(t, -100+0.8*BounceDistance, v.Z, 1e-12)
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, -0.4, v.Speed, 1e-12)
}

func TestApplyBounceSlowStops(t *testing.T) {
	v := NewVehicle()
	v.Z = -50
	v.Speed = 0.04
	v.ApplyBounce()
	assert.Zero(t, v.Speed)
	assert.Equal(t, -50.0, v.Z)
}

func TestVehicleInvariantsUnderRandomInput(t *testing.T) {
	rng := NewRNG(7)
	v := NewVehicle()
	for i := 0; i < 5000; i++ {
		in := Intent{
			Accelerate: rng.Float64() < 0.6,
			Brake:      rng.Float64() < 0.2,
			SteerLeft:  rng.Float64() < 0.3,
			SteerRight: rng.Float64() < 0.3,
		}
		if i%500 == 0 {
			v.BoostMultiplier = 1 + rng.Float64()
		}
		x, z := v.Integrate(in, dt60)
		if rng.Float64() < 0.05 {
			v.ApplyBounce()
		} else {
			v.CommitPosition(x, z)
		}
		require.LessOrEqual(t, v.X, TrackHalfWidth)
		require.GreaterOrEqual(t, v.X, -TrackHalfWidth)
		require.LessOrEqual(t, v.Speed, v.MaxSpeed+1e-12)
		require.GreaterOrEqual(t, v.Speed, -v.MaxSpeed*0.5-1e-12)
		require.LessOrEqual(t, v.Steer, VehicleMaxSteer)
		require.GreaterOrEqual(t, v.Steer, -VehicleMaxSteer)
	}
}

func TestSpeedPercent(t *testing.T) {
	v := NewVehicle()
	v.Speed = 0.9
	assert.Equal(t, 50, v.SpeedPercent())
	v.Speed = -0.45
	assert.Equal(t, 25, v.SpeedPercent())
}

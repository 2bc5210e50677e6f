package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Z: 0, W: 2, D: 4}
	assert.True(t, a.Overlaps(Rect{X: 1, Z: 1, W: 2, D: 2}))
	assert.True(t, a.Overlaps(Rect{X: -1, Z: -1, W: 4, D: 6}))
	// touching edges do not count
	assert.False(t, a.Overlaps(Rect{X: 2, Z: 0, W: 1, D: 1}))
	assert.False(t, a.Overlaps(Rect{X: 0, Z: 4, W: 1, D: 1}))
	assert.False(t, a.Overlaps(Rect{X: 10, Z: 10, W: 1, D: 1}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  ObstacleType
		want HitKind
	}{
		{ObstacleCar, HitCar},
		{ObstacleReward, HitReward},
		{ObstacleCone, HitBoost},
		{ObstacleRocketLauncher, HitRocketLauncher},
		{ObstacleTripleRocket, HitTripleRocket},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			o := newObstacle("x", 0, -1, tt.typ)
			res := TestCollision(0, 0, []*Obstacle{o}, 0)
			require.True(t, res.Hit)
			assert.Equal(t, tt.want, res.Kind)
			assert.Same(t, o, res.Obstacle)
		})
	}
}

func TestCollisionMiss(t *testing.T) {
	o := newObstacle("x", 6, -1, ObstacleReward)
	res := TestCollision(0, 0, []*Obstacle{o}, 0.5)
	assert.False(t, res.Hit)
	assert.Nil(t, res.Obstacle)
	assert.Equal(t, HitNone, res.Kind)
}

func TestCollisionFirstWins(t *testing.T) {
	a := newObstacle("a", 0, -1, ObstacleCone)
	b := newObstacle("b", 0, 1, ObstacleReward)
	res := TestCollision(0, 0, []*Obstacle{a, b}, 0)
	assert.Same(t, a, res.Obstacle)

	res = TestCollision(0, 0, []*Obstacle{b, a}, 0)
	assert.Same(t, b, res.Obstacle)
}

func TestCollisionSkipsRemoved(t *testing.T) {
	a := newObstacle("a", 0, -1, ObstacleReward)
	a.removed = true
	assert.False(t, TestCollision(0, 0, []*Obstacle{a}, 0).Hit)
}

func TestCollisionCarBounce(t *testing.T) {
	car := newObstacle("c", 0, -2, ObstacleCar)

	res := TestCollision(0, 0, []*Obstacle{car}, 0.02)
	require.True(t, res.Hit)
	assert.Nil(t, res.Bounce, "too slow to shove")

	res = TestCollision(0, 0, []*Obstacle{car}, 1.5)
	require.NotNil(t, res.Bounce)
	assert.Equal(t, BounceRearEnd, res.Bounce.Mode)
}

func TestComputeCarBounce(t *testing.T) {
	tests := []struct {
		name     string
		pv, ev   float64
		mode     BounceMode
		rel      float64
		disp     float64
		velocity float64
	}{
		{"rear end", -90, -20, BounceRearEnd, 70, -14, -22.8},
		{"rear end capped", -300, -20, BounceRearEnd, 280, -15, -25},
		{"head on", -90, 30, BounceHeadOn, 120, -25, 24},
		{"head on small", -10, 30, BounceHeadOn, 40, -10, 24},
		{"same direction but slower", -10, -20, BounceHeadOn, 30, 7.5, -16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeCarBounce(tt.pv, tt.ev)
			require.NotNil(t, b)
			assert.Equal(t, tt.mode, b.Mode)
			assert.InDelta(t, tt.rel, b.RelativeSpeed, 1e-9)
			assert.InDelta(t, tt.disp, b.Displacement, 1e-9)
			assert.InDelta(t, tt.velocity, b.NewVelocity, 1e-9)
		})
	}
}

func TestComputeCarBounceTooSlow(t *testing.T) {
	assert.Nil(t, ComputeCarBounce(-3, -20))
	assert.Nil(t, ComputeCarBounce(2.5, 30))
	assert.Nil(t, ComputeCarBounce(0, 30))
}

func TestApplyCarBounce(t *testing.T) {
	car := newObstacle("c", 6, -50, ObstacleCar)
	ApplyCarBounce(car, &CarBounce{Displacement: -14, NewVelocity: -22.8}, 3)

	assert.InDelta(t, -64, car.Z, 1e-9)
	assert.InDelta(t, -22.8, car.Car.Velocity, 1e-9)
	assert.Equal(t, TrafficVelocity, car.Car.OriginalVelocity)
	assert.True(t, car.Car.Recovering)
	assert.InDelta(t, 5, car.Car.RecoverAt, 1e-9)

	cone := newObstacle("k", 0, -50, ObstacleCone)
	ApplyCarBounce(cone, &CarBounce{Displacement: 5}, 0)
	assert.Equal(t, -50.0, cone.Z)
}

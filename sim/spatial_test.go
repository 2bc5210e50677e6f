package sim

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialGridQueryOrder(t *testing.T) {
	g := NewSpatialGrid()
	a := newObstacle("a", 6, -12, ObstacleCone)
	b := newObstacle("b", 0, -3, ObstacleReward)
	c := newObstacle("c", -12, -90, ObstacleCar)
	g.Rebuild([]*Obstacle{a, b, c})

	assert.Equal(t, []*Obstacle{a, b}, g.Query(0, 0, NearbyRange))
	assert.Equal(t, []*Obstacle{c}, g.Query(-12, -90, 1))

	b.removed = true
	assert.Equal(t, []*Obstacle{a}, g.Query(0, 0, NearbyRange))
}

func TestSpatialGridRebuildDropsPassedCells(t *testing.T) {
	g := NewSpatialGrid()
	for step := 0; step < 2000; step++ {
		z := -float64(step) * 5
		g.Rebuild([]*Obstacle{
			newObstacle("near", 6, z-40, ObstacleCar),
			newObstacle("far", -6, z-250, ObstacleCone),
		})
		require.LessOrEqual(t, len(g.cells), 2)
	}
	assert.Len(t, g.Query(6, -9995-40, 1), 1)
}

func TestLongDriveKeepsGridBounded(t *testing.T) {
	s := NewSession(DefaultConfig(ModeArcade), NewRNG(5), zerolog.Nop())
	for i := 0; i < 20000; i++ {
		s.Tick(Intent{Accelerate: true, SteerLeft: i%400 < 40}, 1.0/60)
		require.LessOrEqual(t, len(s.stream.grid.cells), s.stream.Len(), "tick %d", i)
	}
	assert.Less(t, s.Vehicle().Z, -1000.0)
}

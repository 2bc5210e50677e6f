package sim

import (
	"math"
	"strconv"
)

const (
	SpacingMin   = 30.0 // min gap between generated obstacles
	SpacingMax   = 60.0
	SpawnGrid    = 10.0  // generation starts on a multiple of this
	WindowAhead  = 300.0 // keep obstacles this far in front of the vehicle
	WindowBehind = 50.0  // and this far behind it
	RefillSlack  = 50.0  // refill once coverage falls this far short
	InitialAhead = 400.0
	InitialGap   = 20.0 // nothing spawns this close in front at start
	NearbyRange  = 10.0 // broad-phase half-size around the vehicle
)

// Stream owns the obstacles around the vehicle. It generates them ahead in
// ranges, moves traffic, and drops whatever leaves the window.
type Stream struct {
	rng       RNG
	weights   TypeWeights
	nextID    uint64
	obstacles []*Obstacle
	grid      *SpatialGrid
	// lead is the furthest-ahead stop generation has reached and next is
	// the stop drawn after it. Refills resume from next so the spacing
	// rule holds across them.
	lead, next float64
}

// NewStream creates an empty stream drawing from rng
func NewStream(rng RNG, weights TypeWeights) *Stream {
	return &Stream{
		rng:     rng,
		weights: weights,
		grid:    NewSpatialGrid(),
	}
}

// Fill seeds the stream in front of a vehicle at vehicleZ and returns the
// new obstacle ids
func (s *Stream) Fill(vehicleZ float64) []string {
	start := vehicleZ - InitialAhead
	added := s.GenerateRange(start, vehicleZ-InitialGap)
	s.obstacles = append(s.obstacles, added...)
	s.lead = vehicleZ - InitialGap
	if len(added) > 0 {
		s.lead = added[0].Z
	}
	s.next = s.lead - s.spacing()
	s.grid.Rebuild(s.obstacles)
	return ids(added)
}

// GenerateRange creates obstacles with Z in (startZ, endZ). Positions
// increase strictly and consecutive obstacles are SpacingMin..SpacingMax
// apart. The obstacles are returned, not added to the stream.
func (s *Stream) GenerateRange(startZ, endZ float64) []*Obstacle {
	var out []*Obstacle
	z := math.Ceil(startZ/SpawnGrid) * SpawnGrid
	for z < endZ {
		z += s.spacing()
		if z >= endZ {
			break
		}
		out = append(out, s.spawn(z))
	}
	return out
}

func (s *Stream) spacing() float64 {
	return SpacingMin + s.rng.Float64()*(SpacingMax-SpacingMin)
}

// spawn draws a type and lane for a new obstacle at z
func (s *Stream) spawn(z float64) *Obstacle {
	t := s.drawType()
	var x float64
	if t == ObstacleCar {
		x = CarLanes[pick(s.rng, len(CarLanes))]
	} else {
		x = AllLanes[pick(s.rng, len(AllLanes))]
	}
	s.nextID++
	return newObstacle("ob-"+strconv.FormatUint(s.nextID, 10), x, z, t)
}

func (s *Stream) drawType() ObstacleType {
	w := s.weights
	total := w.Reward + w.Cone + w.RocketLauncher + w.TripleRocket + w.Car
	if total <= 0 {
		return ObstacleCar
	}
	r := s.rng.Float64() * total
	for _, c := range []struct {
		t ObstacleType
		w float64
	}{
		{ObstacleReward, w.Reward},
		{ObstacleCone, w.Cone},
		{ObstacleRocketLauncher, w.RocketLauncher},
		{ObstacleTripleRocket, w.TripleRocket},
	} {
		if r < c.w {
			return c.t
		}
		r -= c.w
	}
	return ObstacleCar
}

// Advance moves traffic by dt at session time now, drops obstacles outside
// the window around vehicleZ or consumed by gameplay, and generates more
// ahead when coverage runs short. It returns the ids that entered and left
// the active set. Advancing by zero is a no-op once the window is filled.
func (s *Stream) Advance(vehicleZ, now, dt float64) (added, removed []string) {
	lo := vehicleZ - WindowAhead
	hi := vehicleZ + WindowBehind

	kept := s.obstacles[:0]
	for _, o := range s.obstacles {
		if !o.removed {
			o.Update(now, dt)
		}
		if o.removed || o.Z <= lo || o.Z >= hi {
			removed = append(removed, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	clear(s.obstacles[len(kept):])
	s.obstacles = kept

	// Stops are only consumed once they fall inside the window, so a
	// refill that lands nothing leaves the next one to pick up the gap.
	// Stops already behind the window after a jump are skipped.
	if lo < s.lead-RefillSlack {
		for s.next > lo {
			if s.next < hi {
				o := s.spawn(s.next)
				s.obstacles = append(s.obstacles, o)
				added = append(added, o.ID)
			}
			s.lead = s.next
			s.next -= s.spacing()
		}
	}

	s.grid.Rebuild(s.obstacles)
	return added, removed
}

// Obstacles returns the active set in generation order. The slice is owned
// by the stream and valid until the next Advance.
func (s *Stream) Obstacles() []*Obstacle {
	return s.obstacles
}

// Len returns the active obstacle count
func (s *Stream) Len() int {
	return len(s.obstacles)
}

// Remove marks o as consumed; it leaves the active set on the next Advance
func (s *Stream) Remove(o *Obstacle) {
	o.removed = true
}

// Nearby returns live obstacles whose centers are within r of (x, z) on
// both axes, in generation order
func (s *Stream) Nearby(x, z, r float64) []*Obstacle {
	candidates := s.grid.Query(x, z, r)
	out := candidates[:0]
	for _, o := range candidates {
		if math.Abs(o.X-x) < r && math.Abs(o.Z-z) < r {
			out = append(out, o)
		}
	}
	return out
}

// Window returns the obstacles with Z strictly inside (lo, hi)
func Window(obs []*Obstacle, lo, hi float64) []*Obstacle {
	var out []*Obstacle
	for _, o := range obs {
		if o.Z > lo && o.Z < hi {
			out = append(out, o)
		}
	}
	return out
}

func ids(obs []*Obstacle) []string {
	if len(obs) == 0 {
		return nil
	}
	out := make([]string, len(obs))
	for i, o := range obs {
		out[i] = o.ID
	}
	return out
}

// Reindex refreshes the broad-phase grid after obstacles were displaced
// outside Advance
func (s *Stream) Reindex() {
	s.grid.Rebuild(s.obstacles)
}

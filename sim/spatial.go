package sim

import (
	"math"
	"sort"
)

const SpatialCellSize = 10.0 // ~3x the longest footprint (CarLength)

type cellKey struct {
	cx, cz int
}

// SpatialGrid buckets obstacles by position for broad-phase queries. The road
// is unbounded along Z, so cells live in a map rather than a fixed array.
type SpatialGrid struct {
	cells map[cellKey][]*Obstacle
	order map[*Obstacle]int
}

// NewSpatialGrid returns an empty grid
func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{
		cells: make(map[cellKey][]*Obstacle),
		order: make(map[*Obstacle]int),
	}
}

func cellOf(x, z float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / SpatialCellSize)),
		cz: int(math.Floor(z / SpatialCellSize)),
	}
}

// Clear drops every cell. The road scrolls, so cells passed by are never
// reused and must not be kept around.
func (g *SpatialGrid) Clear() {
	clear(g.cells)
	clear(g.order)
}

// Rebuild indexes obs, remembering their order for stable query results
func (g *SpatialGrid) Rebuild(obs []*Obstacle) {
	g.Clear()
	for i, o := range obs {
		g.Insert(o)
		g.order[o] = i
	}
}

// Insert adds an obstacle at its center position
func (g *SpatialGrid) Insert(o *Obstacle) {
	k := cellOf(o.X, o.Z)
	g.cells[k] = append(g.cells[k], o)
}

// Query returns obstacles whose centers lie in cells overlapping the square
// of half-size r around (x, z), in indexing order. Removed obstacles are
// skipped.
func (g *SpatialGrid) Query(x, z, r float64) []*Obstacle {
	lo := cellOf(x-r, z-r)
	hi := cellOf(x+r, z+r)
	var result []*Obstacle
	for cz := lo.cz; cz <= hi.cz; cz++ {
		for cx := lo.cx; cx <= hi.cx; cx++ {
			for _, o := range g.cells[cellKey{cx, cz}] {
				if !o.removed {
					result = append(result, o)
				}
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return g.order[result[i]] < g.order[result[j]]
	})
	return result
}

package sim

// VehicleState is the vehicle part of a snapshot
type VehicleState struct {
	X        float64 `json:"x" msgpack:"x"`
	Z        float64 `json:"z" msgpack:"z"`
	Rotation float64 `json:"r" msgpack:"r"`
	Speed    float64 `json:"s" msgpack:"s"`
	Steer    float64 `json:"st" msgpack:"st"`
	Boost    float64 `json:"b" msgpack:"b"` // smoothed multiplier
}

// HUD is what the heads-up display shows
type HUD struct {
	SpeedPercent    int     `json:"spd" msgpack:"spd"`
	Score           int     `json:"sc" msgpack:"sc"`
	Boosted         bool    `json:"bst" msgpack:"bst"`
	BoostRemaining  float64 `json:"bstT" msgpack:"bstT"` // seconds
	SpreadActive    bool    `json:"spr" msgpack:"spr"`
	SpreadRemaining float64 `json:"sprT" msgpack:"sprT"`
	TripleActive    bool    `json:"tri" msgpack:"tri"`
	TripleRemaining float64 `json:"triT" msgpack:"triT"`
	Missiles        int     `json:"ms" msgpack:"ms"`
}

// ObstacleState is broadcast per obstacle
type ObstacleState struct {
	ID       string  `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Z        float64 `json:"z" msgpack:"z"`
	Type     string  `json:"t" msgpack:"t"`
	Velocity float64 `json:"v,omitempty" msgpack:"v,omitempty"`
	Lane     string  `json:"l,omitempty" msgpack:"l,omitempty"`
}

// ProjectileState is broadcast per projectile
type ProjectileState struct {
	ID       string  `json:"id" msgpack:"id"`
	Position Vec3    `json:"p" msgpack:"p"`
	Angle    float64 `json:"a" msgpack:"a"`
}

// MissileState is broadcast per missile
type MissileState struct {
	ID       string `json:"id" msgpack:"id"`
	Position Vec3   `json:"p" msgpack:"p"`
	Velocity Vec3   `json:"v" msgpack:"v"`
}

// Snapshot is an immutable copy of the simulation after one tick
type Snapshot struct {
	Tick        uint64            `json:"tick" msgpack:"tick"`
	Time        float64           `json:"time" msgpack:"time"`
	Vehicle     VehicleState      `json:"car" msgpack:"car"`
	Camera      Vec3              `json:"cam" msgpack:"cam"`
	HUD         HUD               `json:"hud" msgpack:"hud"`
	Obstacles   []ObstacleState   `json:"ob" msgpack:"ob"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Missiles    []MissileState    `json:"ms" msgpack:"ms"`
}

// Changes lists obstacle ids that entered or left the active set
type Changes struct {
	Added   []string `json:"add,omitempty" msgpack:"add,omitempty"`
	Removed []string `json:"rm,omitempty" msgpack:"rm,omitempty"`
}

// Dirty reports whether the obstacle set changed
func (c Changes) Dirty() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

// TickResult is everything one tick produced
type TickResult struct {
	Snapshot Snapshot
	Events   []Event
	Changes  Changes
}

// Stats summarizes a run so far
type Stats struct {
	Duration      float64 // seconds of simulated time
	Distance      float64 // units traveled forward
	Score         int
	ShotsFired    int
	MissilesFired int
	CarsDestroyed int
	Rewards       int
	Crashes       int
}

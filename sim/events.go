package sim

// EventKind names something that happened during a tick
type EventKind string

const (
	EventReward         EventKind = "reward"   // reward collected
	EventBoost          EventKind = "boost"    // cone collected
	EventLauncher       EventKind = "launcher" // rocket launcher collected
	EventTriple         EventKind = "triple"   // triple rocket collected
	EventBump           EventKind = "bump"     // traffic car shoved
	EventCrash          EventKind = "crash"    // vehicle bounced off traffic
	EventShot           EventKind = "shot"
	EventMissile        EventKind = "missile"
	EventProjectileHit  EventKind = "hit"
	EventProjectileGone EventKind = "expire"
	EventExplosion      EventKind = "explode"
	EventMissileGone    EventKind = "missile_expire"
	EventBoostEnd       EventKind = "boost_end"
	EventSpreadStart    EventKind = "spread_start"
	EventSpreadEnd      EventKind = "spread_end"
	EventTripleEnd      EventKind = "triple_end"
)

// Score awards
const (
	PointsReward       = 100
	PointsProjectileKO = 10
	PointsMissileKO    = 25 // per car caught in a blast
)

// Event is one entry in a tick's event log. EntityID is the fired entity
// or pickup involved, Obstacles the ids of obstacles destroyed or struck.
type Event struct {
	Kind      EventKind `json:"k" msgpack:"k"`
	EntityID  string    `json:"id,omitempty" msgpack:"id,omitempty"`
	Position  Vec3      `json:"p" msgpack:"p"`
	Obstacles []string  `json:"ob,omitempty" msgpack:"ob,omitempty"`
	Points    int       `json:"pts,omitempty" msgpack:"pts,omitempty"`
}

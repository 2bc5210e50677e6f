package sim

import (
	"math"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	CameraOffset   = 10.0 // camera sits this far behind the vehicle
	CameraHeight   = 5.0
	CameraLerp     = 0.1 // per-tick follow factor
	maxProjectiles = 200
	maxMissiles    = 50
)

// Session is one endless run: the vehicle, the obstacles around it, buffs,
// weapons and everything in flight. It is not safe for concurrent use; the
// host drives Tick from a single loop.
type Session struct {
	cfg     Config
	log     zerolog.Logger
	vehicle *Vehicle
	stream  *Stream
	power   *Powerups
	weapons *Weapons

	projectiles []*Projectile
	missiles    []*Missile
	nextFired   uint64

	camera Vec3
	now    float64
	tick   uint64
	stats  Stats

	events  []Event
	pending []string // obstacle ids generated before the first tick
}

// NewSession starts a run with the vehicle at the origin and the road ahead
// already populated
func NewSession(cfg Config, rng RNG, log zerolog.Logger) *Session {
	s := &Session{
		cfg:     cfg,
		log:     log,
		vehicle: NewVehicle(),
		stream:  NewStream(rng, cfg.Weights),
		power:   NewPowerups(cfg),
		weapons: NewWeapons(cfg),
		camera:  Vec3{Y: CameraHeight, Z: CameraOffset},
	}
	s.pending = s.stream.Fill(s.vehicle.Z)
	return s
}

// Tick advances the run by dt seconds. Order: physics, collision, buff
// timers, weapons, fired entities, obstacles. A negative dt is treated as
// zero.
func (s *Session) Tick(in Intent, dt float64) TickResult {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	s.now += dt
	s.tick++
	s.events = nil
	v := s.vehicle

	x, z := v.Integrate(in, dt)
	res := TestCollision(x, z, s.stream.Nearby(x, z, NearbyRange), v.Speed)
	s.resolve(res, x, z)

	tr := s.power.Update(s.now, s.stats.Score)
	v.BoostMultiplier = s.power.SmoothBoost(v.BoostMultiplier, dt)
	s.transitions(tr)

	if in.Fire {
		for _, shot := range s.weapons.Fire(s.now, v, s.power.Spread.Active) {
			if len(s.projectiles) >= maxProjectiles {
				break
			}
			p := NewProjectile(s.firedID("p"), shot)
			s.projectiles = append(s.projectiles, p)
			s.stats.ShotsFired++
			s.emit(Event{Kind: EventShot, EntityID: p.ID, Position: p.Position})
		}
	}
	if in.FireMissile {
		for _, shot := range s.weapons.FireMissile(s.now, v, s.power) {
			if len(s.missiles) >= maxMissiles {
				break
			}
			m := NewMissile(s.firedID("m"), shot)
			s.missiles = append(s.missiles, m)
			s.stats.MissilesFired++
			s.emit(Event{Kind: EventMissile, EntityID: m.ID, Position: m.Position})
		}
	}

	s.updateProjectiles(dt)
	s.updateMissiles(dt)

	added, removed := s.stream.Advance(v.Z, s.now, dt)
	if s.pending != nil {
		added = append(s.pending, added...)
		s.pending = nil
	}

	s.camera = s.camera.Lerp(Vec3{X: v.X, Y: CameraHeight, Z: v.Z + CameraOffset}, CameraLerp)
	s.stats.Duration = s.now
	s.stats.Distance = math.Max(s.stats.Distance, -v.Z)

	return TickResult{
		Snapshot: s.Snapshot(),
		Events:   s.events,
		Changes:  Changes{Added: added, Removed: removed},
	}
}

// resolve applies a collision outcome and commits the vehicle position
func (s *Session) resolve(res CollisionResult, x, z float64) {
	v := s.vehicle
	if !res.Hit {
		v.CommitPosition(x, z)
		return
	}
	o := res.Obstacle
	at := Vec3{X: o.X, Y: 1, Z: o.Z}
	switch res.Kind {
	case HitReward:
		s.stream.Remove(o)
		s.addScore(PointsReward)
		s.stats.Rewards++
		s.emit(Event{Kind: EventReward, EntityID: o.ID, Position: at, Points: PointsReward})
		v.CommitPosition(x, z)
	case HitBoost:
		s.stream.Remove(o)
		s.power.CollectBoost(s.now)
		s.log.Debug().Float64("target", s.power.TargetBoost).Msg("boost collected")
		s.emit(Event{Kind: EventBoost, EntityID: o.ID, Position: at})
		v.CommitPosition(x, z)
	case HitRocketLauncher:
		s.stream.Remove(o)
		s.power.CollectRocketLauncher()
		s.emit(Event{Kind: EventLauncher, EntityID: o.ID, Position: at})
		v.CommitPosition(x, z)
	case HitTripleRocket:
		s.stream.Remove(o)
		s.power.CollectTripleRocket(s.now)
		s.log.Debug().Int("missiles", s.power.Missiles).Msg("triple rocket collected")
		s.emit(Event{Kind: EventTriple, EntityID: o.ID, Position: at})
		v.CommitPosition(x, z)
	default:
		if res.Bounce != nil {
			// Shoved cars move out of the way; the vehicle holds its
			// previous position this tick
			ApplyCarBounce(o, res.Bounce, s.now)
			s.stream.Reindex()
			s.emit(Event{Kind: EventBump, EntityID: o.ID, Position: at, Obstacles: []string{o.ID}})
			return
		}
		v.ApplyBounce()
		s.stats.Crashes++
		s.emit(Event{Kind: EventCrash, EntityID: o.ID, Position: at, Obstacles: []string{o.ID}})
	}
}

func (s *Session) transitions(tr Transitions) {
	v := s.vehicle
	at := Vec3{X: v.X, Z: v.Z}
	if tr.BoostEnded {
		s.log.Debug().Msg("boost ended")
		s.emit(Event{Kind: EventBoostEnd, Position: at})
	}
	if tr.SpreadStarted {
		s.log.Debug().Int("score", s.stats.Score).Msg("spread shot armed")
		s.emit(Event{Kind: EventSpreadStart, Position: at})
	}
	if tr.SpreadEnded {
		s.emit(Event{Kind: EventSpreadEnd, Position: at})
	}
	if tr.TripleEnded {
		s.emit(Event{Kind: EventTripleEnd, Position: at})
	}
}

func (s *Session) updateProjectiles(dt float64) {
	live := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.Update(dt)
		if !p.Alive {
			s.emit(Event{Kind: EventProjectileGone, EntityID: p.ID, Position: p.Position})
			continue
		}
		near := s.stream.Nearby(p.Position.X, p.Position.Z, ProjectileHitZ+CarLength)
		if o := p.HitTest(near); o != nil {
			p.Alive = false
			s.stream.Remove(o)
			s.addScore(PointsProjectileKO)
			s.stats.CarsDestroyed++
			s.emit(Event{
				Kind:      EventProjectileHit,
				EntityID:  p.ID,
				Position:  Vec3{X: o.X, Y: 1, Z: o.Z},
				Obstacles: []string{o.ID},
				Points:    PointsProjectileKO,
			})
			continue
		}
		live = append(live, p)
	}
	clear(s.projectiles[len(live):])
	s.projectiles = live
}

func (s *Session) updateMissiles(dt float64) {
	live := s.missiles[:0]
	for _, m := range s.missiles {
		switch m.Update(dt) {
		case MissileFlying:
			live = append(live, m)
		case MissileLanded:
			hit := m.Splash(s.stream.Nearby(m.Position.X, m.Position.Z, MissileSplashRadius+CarLength))
			var hitIDs []string
			for _, o := range hit {
				s.stream.Remove(o)
				hitIDs = append(hitIDs, o.ID)
			}
			pts := PointsMissileKO * len(hit)
			s.addScore(pts)
			s.stats.CarsDestroyed += len(hit)
			s.emit(Event{Kind: EventExplosion, EntityID: m.ID, Position: m.Position, Obstacles: hitIDs, Points: pts})
		default:
			s.log.Warn().
				Str("missile", m.ID).
				Float64("life", m.Life).
				Float64("x", m.Position.X).
				Float64("y", m.Position.Y).
				Float64("z", m.Position.Z).
				Msg("missile force-expired")
			s.emit(Event{Kind: EventMissileGone, EntityID: m.ID, Position: m.Position})
		}
	}
	clear(s.missiles[len(live):])
	s.missiles = live
}

func (s *Session) addScore(n int) {
	s.stats.Score += n
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) firedID(prefix string) string {
	s.nextFired++
	return prefix + strconv.FormatUint(s.nextFired, 10)
}

// Snapshot returns an immutable copy of the current state
func (s *Session) Snapshot() Snapshot {
	v := s.vehicle
	snap := Snapshot{
		Tick: s.tick,
		Time: s.now,
		Vehicle: VehicleState{
			X:        v.X,
			Z:        v.Z,
			Rotation: v.Rotation,
			Speed:    v.Speed,
			Steer:    v.Steer,
			Boost:    v.BoostMultiplier,
		},
		Camera: s.camera,
		HUD: HUD{
			SpeedPercent:    v.SpeedPercent(),
			Score:           s.stats.Score,
			Boosted:         s.power.Boost.Active,
			BoostRemaining:  s.power.Boost.Remaining(s.now),
			SpreadActive:    s.power.Spread.Active,
			SpreadRemaining: s.power.Spread.Remaining(s.now),
			TripleActive:    s.power.Triple.Active,
			TripleRemaining: s.power.Triple.Remaining(s.now),
			Missiles:        s.power.Missiles,
		},
		Obstacles:   make([]ObstacleState, 0, s.stream.Len()),
		Projectiles: make([]ProjectileState, 0, len(s.projectiles)),
		Missiles:    make([]MissileState, 0, len(s.missiles)),
	}
	for _, o := range s.stream.Obstacles() {
		if !o.removed {
			snap.Obstacles = append(snap.Obstacles, o.ToState())
		}
	}
	for _, p := range s.projectiles {
		snap.Projectiles = append(snap.Projectiles, p.ToState())
	}
	for _, m := range s.missiles {
		snap.Missiles = append(snap.Missiles, m.ToState())
	}
	return snap
}

// Stats returns the run summary so far
func (s *Session) Stats() Stats {
	return s.stats
}

// Mode returns the tuning preset of the run
func (s *Session) Mode() Mode {
	return s.cfg.Mode
}

// Vehicle exposes the vehicle for inspection. Callers must not mutate it.
func (s *Session) Vehicle() *Vehicle {
	return s.vehicle
}

// Stream exposes the obstacle stream for inspection
func (s *Session) Stream() *Stream {
	return s.stream
}

// Powerups exposes buff and ammo state for inspection
func (s *Session) Powerups() *Powerups {
	return s.power
}

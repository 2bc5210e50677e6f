package sim

import "math"

// Power-up timings and stacking
const (
	BoostDuration    = 5.0
	BoostFirstTarget = 1.35
	BoostStackStep   = 0.1
	BoostCap         = 2.0
	BoostRiseRate    = 5.0 // multiplier units/s toward target
	BoostDecayRate   = 2.0 // multiplier units/s back toward 1.0
	SpreadDuration   = 5.0
	TripleDuration   = 12.0
	TripleMissiles   = 12
	LauncherMissiles = 5
)

// Buff is a timed effect. It expires once now passes EndTime.
type Buff struct {
	Active  bool
	EndTime float64
}

// Activate starts the buff or extends it to now+d
func (b *Buff) Activate(now, d float64) {
	b.Active = true
	b.EndTime = now + d
}

// Expire deactivates the buff if its time is up and reports whether it did
func (b *Buff) Expire(now float64) bool {
	if b.Active && now > b.EndTime {
		b.Active = false
		return true
	}
	return false
}

// Remaining returns seconds left, zero when inactive
func (b *Buff) Remaining(now float64) float64 {
	if !b.Active {
		return 0
	}
	return math.Max(0, b.EndTime-now)
}

// Transitions reports which buffs changed state during one Update
type Transitions struct {
	BoostEnded    bool
	SpreadStarted bool
	SpreadEnded   bool
	TripleEnded   bool
}

// Powerups is the run's buff and ammo state
type Powerups struct {
	Boost       Buff
	TargetBoost float64
	Spread      Buff
	Triple      Buff
	Missiles    int

	spreadThreshold int
	lastSpreadScore int
}

// NewPowerups returns the starting state for cfg
func NewPowerups(cfg Config) *Powerups {
	th := cfg.SpreadThreshold
	if th <= 0 {
		th = DefaultConfig(cfg.Mode).SpreadThreshold
	}
	return &Powerups{
		TargetBoost:     1,
		Missiles:        cfg.InitialMissiles,
		spreadThreshold: th,
	}
}

// CollectBoost applies a cone pickup. The first pickup sets the target to
// 1.35; pickups while boosted stack +0.1 up to 2.0. Either way the timer
// restarts.
func (p *Powerups) CollectBoost(now float64) {
	if p.Boost.Active {
		p.TargetBoost = math.Min(BoostCap, p.TargetBoost+BoostStackStep)
	} else {
		p.TargetBoost = BoostFirstTarget
	}
	p.Boost.Activate(now, BoostDuration)
}

// CollectRocketLauncher adds missiles
func (p *Powerups) CollectRocketLauncher() {
	p.Missiles += LauncherMissiles
}

// CollectTripleRocket starts triple-rocket mode and adds missiles
func (p *Powerups) CollectTripleRocket(now float64) {
	p.Triple.Activate(now, TripleDuration)
	p.Missiles += TripleMissiles
}

// Update expires buffs and starts spread-shot when score crosses the next
// threshold
func (p *Powerups) Update(now float64, score int) Transitions {
	var tr Transitions
	if p.Boost.Expire(now) {
		p.TargetBoost = 1
		tr.BoostEnded = true
	}
	if score >= p.lastSpreadScore+p.spreadThreshold && !p.Spread.Active {
		p.Spread.Activate(now, SpreadDuration)
		p.lastSpreadScore = score / p.spreadThreshold * p.spreadThreshold
		tr.SpreadStarted = true
	}
	tr.SpreadEnded = p.Spread.Expire(now)
	tr.TripleEnded = p.Triple.Expire(now)
	return tr
}

// SmoothBoost moves multiplier m toward the current target at a limited
// rate: up at BoostRiseRate while boosted, down at BoostDecayRate otherwise.
// It never overshoots.
func (p *Powerups) SmoothBoost(m, dt float64) float64 {
	if !p.Boost.Active {
		return math.Max(1, m-BoostDecayRate*dt)
	}
	if m <= p.TargetBoost {
		return math.Min(p.TargetBoost, m+BoostRiseRate*dt)
	}
	return math.Max(p.TargetBoost, m-BoostDecayRate*dt)
}

// ConsumeMissiles removes n missiles, never going below zero
func (p *Powerups) ConsumeMissiles(n int) {
	p.Missiles = max(0, p.Missiles-n)
}

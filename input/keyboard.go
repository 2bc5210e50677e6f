package input

import (
	"strings"
	"sync"
	"time"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

// Action is what a bound key does
type Action int

const (
	ActionNone Action = iota
	ActionAccelerate
	ActionBrake
	ActionSteerLeft
	ActionSteerRight
	ActionFire
	ActionMissile
)

func (a Action) String() string {
	switch a {
	case ActionAccelerate:
		return "accelerate"
	case ActionBrake:
		return "brake"
	case ActionSteerLeft:
		return "left"
	case ActionSteerRight:
		return "right"
	case ActionFire:
		return "fire"
	case ActionMissile:
		return "missile"
	default:
		return "none"
	}
}

// Key names a physical key independent of the device backend, e.g. "up",
// "space" or "w". Names are case-insensitive.
type Key string

// Normalize lower-cases a key name
func (k Key) Normalize() Key {
	return Key(strings.ToLower(string(k)))
}

// Bindings maps keys to actions. Several keys may share an action.
type Bindings map[Key]Action

// DefaultBindings returns arrows and WASD for driving, space to fire and m
// for missiles
func DefaultBindings() Bindings {
	return Bindings{
		"up":    ActionAccelerate,
		"w":     ActionAccelerate,
		"down":  ActionBrake,
		"s":     ActionBrake,
		"left":  ActionSteerLeft,
		"a":     ActionSteerLeft,
		"right": ActionSteerRight,
		"d":     ActionSteerRight,
		"space": ActionFire,
		" ":     ActionFire,
		"m":     ActionMissile,
	}
}

// Keyboard turns key down/up events into a per-tick sim.Intent.
//
// Terminals report auto-repeat presses but never releases. With hold > 0 a
// key counts as held until hold has passed since its last press; repeats
// refresh it. With hold == 0 keys stay down until Release.
type Keyboard struct {
	mu       sync.Mutex
	bindings Bindings
	hold     time.Duration
	down     map[Key]time.Time // last press per held key
}

// NewKeyboard creates a keyboard for bindings
func NewKeyboard(bindings Bindings, hold time.Duration) *Keyboard {
	b := make(Bindings, len(bindings))
	for k, a := range bindings {
		b[k.Normalize()] = a
	}
	return &Keyboard{
		bindings: b,
		hold:     hold,
		down:     make(map[Key]time.Time),
	}
}

// Action returns the action bound to key
func (k *Keyboard) Action(key Key) Action {
	return k.bindings[key.Normalize()]
}

// Press records key going down at now. It returns true for a fresh press
// and false for unbound keys and suppressed repeats of a held key.
func (k *Keyboard) Press(key Key, now time.Time) bool {
	key = key.Normalize()
	if k.bindings[key] == ActionNone {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	last, held := k.down[key]
	k.down[key] = now
	return !held || k.expired(last, now)
}

// Release records key going up
func (k *Keyboard) Release(key Key) {
	k.mu.Lock()
	delete(k.down, key.Normalize())
	k.mu.Unlock()
}

// Reset releases every key, e.g. when the window loses focus
func (k *Keyboard) Reset() {
	k.mu.Lock()
	clear(k.down)
	k.mu.Unlock()
}

// Intent samples the held keys at now
func (k *Keyboard) Intent(now time.Time) sim.Intent {
	k.mu.Lock()
	defer k.mu.Unlock()

	var in sim.Intent
	for key, at := range k.down {
		if k.expired(at, now) {
			delete(k.down, key)
			continue
		}
		switch k.bindings[key] {
		case ActionAccelerate:
			in.Accelerate = true
		case ActionBrake:
			in.Brake = true
		case ActionSteerLeft:
			in.SteerLeft = true
		case ActionSteerRight:
			in.SteerRight = true
		case ActionFire:
			in.Fire = true
		case ActionMissile:
			in.FireMissile = true
		}
	}
	return in
}

func (k *Keyboard) expired(at, now time.Time) bool {
	return k.hold > 0 && now.Sub(at) > k.hold
}

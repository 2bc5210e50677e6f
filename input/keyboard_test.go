package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPressAndRelease(t *testing.T) {
	kb := NewKeyboard(DefaultBindings(), 0)

	assert.True(t, kb.Press("up", t0))
	assert.True(t, kb.Press("Left", t0))
	assert.Equal(t, sim.Intent{Accelerate: true, SteerLeft: true}, kb.Intent(t0))

	kb.Release("LEFT")
	assert.Equal(t, sim.Intent{Accelerate: true}, kb.Intent(t0.Add(time.Hour)))

	kb.Release("up")
	assert.Equal(t, sim.Intent{}, kb.Intent(t0))
}

func TestRepeatSuppressed(t *testing.T) {
	kb := NewKeyboard(DefaultBindings(), 0)
	assert.True(t, kb.Press("space", t0))
	assert.False(t, kb.Press("space", t0.Add(30*time.Millisecond)))
	assert.False(t, kb.Press("space", t0.Add(60*time.Millisecond)))

	kb.Release("space")
	assert.True(t, kb.Press("space", t0.Add(90*time.Millisecond)))
}

func TestUnboundKey(t *testing.T) {
	kb := NewKeyboard(DefaultBindings(), 0)
	assert.False(t, kb.Press("x", t0))
	assert.Equal(t, sim.Intent{}, kb.Intent(t0))
	assert.Equal(t, ActionNone, kb.Action("x"))
	assert.Equal(t, ActionMissile, kb.Action("M"))
}

func TestHoldWindow(t *testing.T) {
	hold := 150 * time.Millisecond
	kb := NewKeyboard(DefaultBindings(), hold)

	assert.True(t, kb.Press("w", t0))
	assert.True(t, kb.Intent(t0.Add(hold)).Accelerate)

	// a repeat refreshes the window
	assert.False(t, kb.Press("w", t0.Add(100*time.Millisecond)))
	assert.True(t, kb.Intent(t0.Add(200*time.Millisecond)).Accelerate)

	assert.False(t, kb.Intent(t0.Add(300*time.Millisecond)).Accelerate)

	// once lapsed, the next press is a fresh one
	assert.True(t, kb.Press("w", t0.Add(400*time.Millisecond)))
}

func TestPressAfterLapsedHoldIsFresh(t *testing.T) {
	kb := NewKeyboard(DefaultBindings(), 100*time.Millisecond)
	kb.Press("m", t0)
	assert.True(t, kb.Press("m", t0.Add(time.Second)))
}

func TestEveryAction(t *testing.T) {
	kb := NewKeyboard(DefaultBindings(), 0)
	for _, k := range []Key{"w", "s", "a", "d", "space", "m"} {
		kb.Press(k, t0)
	}
	assert.Equal(t, sim.Intent{
		Accelerate:  true,
		Brake:       true,
		SteerLeft:   true,
		SteerRight:  true,
		Fire:        true,
		FireMissile: true,
	}, kb.Intent(t0))

	kb.Reset()
	assert.Equal(t, sim.Intent{}, kb.Intent(t0))
}

func TestCustomBindings(t *testing.T) {
	kb := NewKeyboard(Bindings{"J": ActionFire}, 0)
	assert.True(t, kb.Press("j", t0))
	assert.True(t, kb.Intent(t0).Fire)
	assert.False(t, kb.Press("space", t0))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "missile", ActionMissile.String())
	assert.Equal(t, "none", Action(99).String())
}

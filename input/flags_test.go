package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, byte(0), Encode(sim.Intent{}))
	assert.Equal(t, FlagAccelerate|FlagFire, Encode(sim.Intent{Accelerate: true, Fire: true}))
	assert.Equal(t, byte(0x3F), Encode(sim.Intent{
		Accelerate: true, Brake: true, SteerLeft: true, SteerRight: true, Fire: true, FireMissile: true,
	}))
}

func TestDecodeIgnoresUnknownBits(t *testing.T) {
	assert.Equal(t, sim.Intent{SteerRight: true, FireMissile: true}, Decode(0xC0|FlagSteerRight|FlagMissile))
}

func TestMerge(t *testing.T) {
	got := Merge(sim.Intent{Accelerate: true}, sim.Intent{SteerLeft: true, Fire: true})
	assert.Equal(t, sim.Intent{Accelerate: true, SteerLeft: true, Fire: true}, got)
}

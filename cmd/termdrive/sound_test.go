package main

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

func TestCuesForDedupes(t *testing.T) {
	events := []sim.Event{
		{Kind: sim.EventMissile},
		{Kind: sim.EventMissile},
		{Kind: sim.EventMissile},
		{Kind: sim.EventProjectileGone}, // silent
		{Kind: sim.EventReward},
	}
	got := cuesFor(events)
	assert.Len(t, got, 2)
	assert.Equal(t, cues[sim.EventMissile], got[0])
	assert.Equal(t, cues[sim.EventReward], got[1])
	assert.Empty(t, cuesFor(nil))
}

func TestToneFadesOut(t *testing.T) {
	c := cues[sim.EventShot]
	n := sampleRate.N(c.length)
	s := beep.Take(n, newTone(c, sampleRate))

	buf := make([][2]float64, n+100)
	got, _ := s.Stream(buf)
	assert.Equal(t, n, got)

	peak := 0.0
	for _, smp := range buf[:got] {
		assert.LessOrEqual(t, smp[0], c.volume+1e-9)
		assert.GreaterOrEqual(t, smp[0], -c.volume-1e-9)
		assert.Equal(t, smp[0], smp[1])
		if smp[0] > peak {
			peak = smp[0]
		}
	}
	assert.Greater(t, peak, 0.0)
	assert.InDelta(t, 0, buf[got-1][0], c.volume*2/float64(n)+1e-9)
}

func TestSilentSounds(t *testing.T) {
	s := NewSounds(false, zerolog.Nop())
	assert.NotPanics(t, func() {
		s.Play([]sim.Event{{Kind: sim.EventExplosion}})
		s.Close()
	})
}

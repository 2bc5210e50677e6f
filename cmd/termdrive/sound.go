package main

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const sampleRate = beep.SampleRate(44100)

type waveform int

const (
	waveSine waveform = iota
	waveSquare
	waveSaw
	waveNoise
)

// cue is a short synthesized sound for one event kind
type cue struct {
	wave   waveform
	freq   float64 // Hz at the start
	sweep  float64 // frequency multiplier per second
	length time.Duration
	volume float64
}

var cues = map[sim.EventKind]cue{
	sim.EventShot:          {waveSquare, 880, 0.3, 40 * time.Millisecond, 0.15},
	sim.EventMissile:       {waveSaw, 220, 2, 150 * time.Millisecond, 0.2},
	sim.EventProjectileHit: {waveSquare, 330, 0.5, 80 * time.Millisecond, 0.25},
	sim.EventExplosion:     {waveNoise, 0, 1, 300 * time.Millisecond, 0.35},
	sim.EventReward:        {waveSine, 1320, 1.5, 90 * time.Millisecond, 0.25},
	sim.EventBoost:         {waveSine, 440, 4, 250 * time.Millisecond, 0.25},
	sim.EventLauncher:      {waveSine, 523, 1.5, 140 * time.Millisecond, 0.25},
	sim.EventTriple:        {waveSine, 659, 1.5, 140 * time.Millisecond, 0.25},
	sim.EventBump:          {waveSquare, 110, 0.7, 90 * time.Millisecond, 0.25},
	sim.EventCrash:         {waveNoise, 0, 1, 180 * time.Millisecond, 0.3},
	sim.EventSpreadStart:   {waveSaw, 330, 3, 300 * time.Millisecond, 0.2},
}

// cuesFor returns the cues to play for a tick's events, one per kind in
// first-seen order
func cuesFor(events []sim.Event) []cue {
	var out []cue
	seen := make(map[sim.EventKind]bool)
	for _, e := range events {
		c, ok := cues[e.Kind]
		if !ok || seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		out = append(out, c)
	}
	return out
}

// tone generates a decaying oscillator; bound its length with beep.Take
type tone struct {
	c     cue
	phase float64
	pos   int
	total int
	rate  beep.SampleRate
}

func newTone(c cue, rate beep.SampleRate) *tone {
	return &tone{c: c, total: rate.N(c.length), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		elapsed := float64(t.pos) / float64(t.rate)
		freq := t.c.freq * math.Pow(t.c.sweep, elapsed)

		var val float64
		switch t.c.wave {
		case waveSine:
			val = math.Sin(2 * math.Pi * t.phase)
		case waveSquare:
			if t.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case waveSaw:
			val = 2 * (t.phase - 0.5)
		case waveNoise:
			val = rand.Float64()*2 - 1
		}

		// Linear fade out avoids a click at the cut
		fade := 1.0
		if t.total > 0 {
			fade = math.Max(0, 1-float64(t.pos)/float64(t.total))
		}
		val *= t.c.volume * fade
		samples[i][0] = val
		samples[i][1] = val

		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Sounds plays event cues through a single mixer. The zero value is silent.
type Sounds struct {
	mixer *beep.Mixer
	log   zerolog.Logger
}

// NewSounds initializes the speaker. Audio failure is not fatal: the
// returned Sounds is silent.
func NewSounds(enabled bool, log zerolog.Logger) *Sounds {
	s := &Sounds{log: log}
	if !enabled {
		return s
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		log.Warn().Err(err).Msg("audio unavailable")
		return s
	}
	s.mixer = &beep.Mixer{}
	speaker.Play(s.mixer)
	return s
}

// Play queues the cues for a tick's events
func (s *Sounds) Play(events []sim.Event) {
	if s.mixer == nil {
		return
	}
	cs := cuesFor(events)
	if len(cs) == 0 {
		return
	}
	speaker.Lock()
	for _, c := range cs {
		s.mixer.Add(beep.Take(sampleRate.N(c.length), newTone(c, sampleRate)))
	}
	speaker.Unlock()
}

// Close stops playback
func (s *Sounds) Close() {
	if s.mixer == nil {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

package sim

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects a tuning preset
type Mode int

const (
	ModeArcade  Mode = 0 // frequent spread-shot, fast spread cooldown
	ModeClassic Mode = 1 // spread-shot every 1000 points, slower cone
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	default:
		return "arcade"
	}
}

// ParseMode maps a mode name to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "arcade":
		return ModeArcade, nil
	case "classic":
		return ModeClassic, nil
	}
	return ModeArcade, fmt.Errorf("unknown mode %q", s)
}

// TypeWeights are the relative generation weights per obstacle type.
// They need not sum to one.
type TypeWeights struct {
	Reward         float64
	Cone           float64
	RocketLauncher float64
	TripleRocket   float64
	Car            float64
}

// Config holds the per-run tunables
type Config struct {
	Mode            Mode
	SpreadThreshold int     // score points between spread-shot activations
	SpreadCooldown  float64 // seconds between spread volleys
	SpreadHalfAngle float64 // radians either side of the heading
	InitialMissiles int
	Weights         TypeWeights
}

// DefaultConfig returns default config for the given mode
func DefaultConfig(mode Mode) Config {
	weights := TypeWeights{
		Reward:         0.15,
		Cone:           0.20,
		RocketLauncher: 0.06,
		TripleRocket:   0.03,
		Car:            0.56,
	}
	switch mode {
	case ModeClassic:
		return Config{
			Mode:            ModeClassic,
			SpreadThreshold: 1000,
			SpreadCooldown:  0.8,
			SpreadHalfAngle: math.Pi / 12,
			InitialMissiles: 5,
			Weights:         weights,
		}
	default:
		return Config{
			Mode:            ModeArcade,
			SpreadThreshold: 500,
			SpreadCooldown:  0.4,
			SpreadHalfAngle: 0.3,
			InitialMissiles: 5,
			Weights:         weights,
		}
	}
}

package input

import "github.com/badgerhoneymoon/retrowave-racer/sim"

// Intent flag bits of the compact binary input frame
const (
	FlagAccelerate byte = 1 << iota
	FlagBrake
	FlagSteerLeft
	FlagSteerRight
	FlagFire
	FlagMissile
)

// Encode packs an intent into one flags byte
func Encode(in sim.Intent) byte {
	var f byte
	if in.Accelerate {
		f |= FlagAccelerate
	}
	if in.Brake {
		f |= FlagBrake
	}
	if in.SteerLeft {
		f |= FlagSteerLeft
	}
	if in.SteerRight {
		f |= FlagSteerRight
	}
	if in.Fire {
		f |= FlagFire
	}
	if in.FireMissile {
		f |= FlagMissile
	}
	return f
}

// Decode unpacks a flags byte. Unknown bits are ignored.
func Decode(f byte) sim.Intent {
	return sim.Intent{
		Accelerate:  f&FlagAccelerate != 0,
		Brake:       f&FlagBrake != 0,
		SteerLeft:   f&FlagSteerLeft != 0,
		SteerRight:  f&FlagSteerRight != 0,
		Fire:        f&FlagFire != 0,
		FireMissile: f&FlagMissile != 0,
	}
}

// Merge ORs two intents, e.g. a desktop keyboard and a paired phone
func Merge(a, b sim.Intent) sim.Intent {
	return Decode(Encode(a) | Encode(b))
}

package sim

import "math/rand/v2"

// RNG is the random source for obstacle generation. Float64 returns a value
// in [0, 1).
type RNG interface {
	Float64() float64
}

// NewRNG returns a deterministic source for seed
func NewRNG(seed uint64) RNG {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// pick returns a uniform index in [0, n)
func pick(rng RNG, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Package util holds the seeded randomness every round draws from.
package util

import "math/rand"

// seedStride spaces derived seeds so neighbouring runs do not share streams.
const seedStride = 7919

// New returns the round RNG. A zero seed is promoted to 1 so that an unset
// seed still reproduces.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Derive is the seed of run i in a batch started from seed.
func Derive(seed int64, i int) int64 { return seed + int64(i)*seedStride }

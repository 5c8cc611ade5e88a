package randutil

import (
	"hash/fnv"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by
// rand/v2 so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// ForHand derives a per-hand rng from a base seed, a game id and a hand
// number. With a fixed base seed every hand of every game shuffles
// identically across runs, which is what replay-style tests rely on.
func ForHand(base int64, gameID string, handNumber int) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(gameID))
	derived := uint64(base) ^ h.Sum64() ^ (uint64(handNumber) * goldenRatio64)
	return rand.New(rand.NewPCG(mix(derived), mix(derived+goldenRatio64)))
}

// splitmix64 finalizer; spreads low-entropy seeds across the state space.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

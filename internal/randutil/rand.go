package randutil

import "math/rand"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Stream names an independent random sequence derived from one seed.
type Stream uint64

const (
	Deck Stream = iota + 1
	Opponent
	Player
)

// New returns a *rand.Rand seeded deterministically from seed and stream.
// One seed therefore reproduces the deck and both bots without any of them
// consuming the others' numbers.
func New(seed int64, stream Stream) *rand.Rand {
	u := uint64(seed) + uint64(stream)*goldenRatio64
	return rand.New(rand.NewSource(int64(mix(u))))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

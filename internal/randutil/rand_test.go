package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(seed int64, stream Stream) []int {
	rng := New(seed, stream)
	out := make([]int, 8)
	for i := range out {
		out[i] = rng.Intn(1000)
	}
	return out
}

func TestNewIsDeterministic(t *testing.T) {
	assert.Equal(t, draw(42, Deck), draw(42, Deck))
}

func TestStreamsDiffer(t *testing.T) {
	assert.NotEqual(t, draw(42, Deck), draw(42, Opponent))
	assert.NotEqual(t, draw(42, Opponent), draw(42, Player))
	assert.NotEqual(t, draw(42, Deck), draw(43, Deck))
}

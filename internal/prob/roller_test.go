package prob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := NewRoller(42)
	b := NewRoller(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Between(2, 6), b.Between(2, 6))
		assert.Equal(t, a.Walk(0.01), b.Walk(0.01))
	}
}

func TestChanceExtremes(t *testing.T) {
	roller := NewRoller(42)

	// Degenerate probabilities never touch the source
	for i := 0; i < 100; i++ {
		assert.False(t, roller.Chance(0))
		assert.False(t, roller.Chance(-1))
		assert.True(t, roller.Chance(1))
		assert.True(t, roller.Chance(1.5))
	}
}

func TestChanceConverges(t *testing.T) {
	roller := NewRoller(7)

	const trials = 10_000
	hits := 0
	for i := 0; i < trials; i++ {
		if roller.Chance(0.3) {
			hits++
		}
	}
	assert.InDelta(t, 0.3, float64(hits)/trials, 0.02)
}

func TestBetweenBounds(t *testing.T) {
	roller := NewRoller(42)

	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		v := roller.Between(2, 6)
		assert.GreaterOrEqual(t, v, int64(2))
		assert.LessOrEqual(t, v, int64(6))
		seen[v] = true
	}
	// Both endpoints are reachable
	assert.True(t, seen[2])
	assert.True(t, seen[6])

	// Degenerate range collapses to min
	assert.Equal(t, int64(5), roller.Between(5, 5))
	assert.Equal(t, int64(5), roller.Between(5, 3))
}

func TestWalkStaysInScale(t *testing.T) {
	roller := NewRoller(42)

	for i := 0; i < 1000; i++ {
		step := roller.Walk(0.05)
		assert.GreaterOrEqual(t, step, -0.05)
		assert.Less(t, step, 0.05)
	}
}

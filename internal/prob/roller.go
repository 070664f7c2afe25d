// Package prob provides the seedable random source injected into every
// probabilistic rule so outcomes stay reproducible in tests.
package prob

import (
	"math/rand"
	"time"
)

// Source is the minimal randomness contract a Roller needs. Tests may
// supply a scripted implementation to force specific outcomes.
type Source interface {
	Float64() float64
	Intn(n int) int
	NormFloat64() float64
}

// Roller draws the Bernoulli trials and random walks used by game rules
type Roller struct {
	src Source
}

// NewRoller creates a roller seeded with the given value.
// A zero seed falls back to the current time.
func NewRoller(seed int64) *Roller {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Roller{src: rand.New(rand.NewSource(seed))}
}

// NewRollerFrom wraps an explicit source
func NewRollerFrom(src Source) *Roller {
	return &Roller{src: src}
}

// Chance runs a single Bernoulli trial with probability p
func (r *Roller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.src.Float64() < p
}

// Intn returns a uniform value in [0, n)
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Float64 returns a uniform value in [0, 1)
func (r *Roller) Float64() float64 {
	return r.src.Float64()
}

// Between returns a uniform int64 in [min, max] inclusive
func (r *Roller) Between(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(r.src.Intn(int(max-min+1)))
}

// Walk returns a symmetric step in [-scale, scale)
func (r *Roller) Walk(scale float64) float64 {
	return (r.src.Float64()*2 - 1) * scale
}

// Package rng provides the single seeded random source shared by the
// generator algebra, so that a fixed --seed reproduces identical publish
// sequences across runs.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
	"sync"
)

// Source is a mutex-protected math/rand/v2 PCG generator. Every generator
// call that needs randomness (number_random, choice, and the expression
// generator's random/randint/uniform names) draws from the same Source.
type Source struct {
	mu  sync.Mutex
	rnd *mathrand.Rand
}

// New creates a Source seeded deterministically from seed.
func New(seed uint64) *Source {
	return &Source{rnd: mathrand.New(mathrand.NewPCG(seed, seed>>32|1))}
}

// NewFromPlatform creates a Source seeded from a platform non-deterministic
// source, for runs with no --seed given.
func NewFromPlatform() *Source {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return New(binary.BigEndian.Uint64(b[:]))
}

// Float64 returns a pseudo-random number in [0,1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// IntN returns a pseudo-random number in [0,n).
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// Int64N returns a pseudo-random number in [0,n).
func (s *Source) Int64N(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Int64N(n)
}

// IntRange returns a pseudo-random integer in [min,max] inclusive.
func (s *Source) IntRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rnd.Int64N(max-min+1)
}

// Uniform returns a pseudo-random float in [min,max).
func (s *Source) Uniform(min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rnd.Float64()*(max-min)
}

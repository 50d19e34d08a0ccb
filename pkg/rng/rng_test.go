package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_SameSeedProducesSameSequence(t *testing.T) {
	a := New(7)
	b := New(7)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSource_DifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestSource_IntRangeInclusiveBounds(t *testing.T) {
	s := New(1)
	for i := 0; i < 100; i++ {
		v := s.IntRange(3, 5)
		assert.GreaterOrEqual(t, v, int64(3))
		assert.LessOrEqual(t, v, int64(5))
	}
}

func TestSource_IntRangeCollapsedRangeReturnsMin(t *testing.T) {
	s := New(1)
	assert.Equal(t, int64(4), s.IntRange(4, 4))
}

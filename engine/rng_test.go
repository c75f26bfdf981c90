package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		require.Equal(t, rng1.Roll(6), rng2.Roll(6), "roll %d", i)
		require.Equal(t, rng1.Float64(), rng2.Float64(), "float %d", i)
	}
}

func TestRNG_Roll_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Roll(6)
		require.GreaterOrEqual(t, r, 1)
		require.LessOrEqual(t, r, 6)
	}
	assert.Equal(t, 1, rng.Roll(0), "degenerate die")
}

func TestRNG_Float64_Range(t *testing.T) {
	rng := NewRNG(7)

	for i := 0; i < 1000; i++ {
		f := rng.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestRNG_Chance_Boundaries(t *testing.T) {
	rng := NewRNG(3)

	for i := 0; i < 100; i++ {
		require.True(t, rng.Chance(1.0))
		require.False(t, rng.Chance(0))
	}
}

func TestRNG_Position_Tracks(t *testing.T) {
	rng := NewRNG(42)
	assert.Zero(t, rng.Position())

	rng.Roll(6)
	assert.Equal(t, int64(1), rng.Position())

	rng.Float64()
	rng.Chance(0.5)
	assert.Equal(t, int64(3), rng.Position())
}

func TestRNG_Restore_MatchesPosition(t *testing.T) {
	rng := NewRNG(42)
	for i := 0; i < 10; i++ {
		rng.Roll(6)
	}

	var expected [5]int
	for i := range expected {
		expected[i] = rng.Roll(6)
	}

	restored := RestoreRNG(42, 10)
	assert.Equal(t, int64(10), restored.Position())
	assert.Equal(t, int64(42), restored.Seed())
	for i, want := range expected {
		assert.Equal(t, want, restored.Roll(6), "roll %d", i)
	}
}

func TestRNG_DifferentSeeds_DifferentResults(t *testing.T) {
	rng1 := NewRNG(1)
	rng2 := NewRNG(2)

	differs := false
	for i := 0; i < 20; i++ {
		if rng1.Roll(100) != rng2.Roll(100) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "different seeds should diverge")
}

package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for range 32 {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDerive_IsolatedFromParent(t *testing.T) {
	parent := New(7)
	reference := New(7)

	child := parent.Derive("ai")
	for range 10 {
		child.Float64()
	}

	// Draws on the child must not move the parent.
	assert.Equal(t, reference.Float64(), parent.Float64())

	again := New(7).Derive("ai")
	assert.Equal(t, New(7).Derive("ai").Seed(), again.Seed())
	assert.NotEqual(t, New(7).Derive("other").Seed(), again.Seed())
}

func TestMustPercent(t *testing.T) {
	assert.Equal(t, Percent(0), MustPercent(0))
	assert.Equal(t, Percent(100), MustPercent(100))
	assert.Panics(t, func() { MustPercent(-0.1) })
	assert.Panics(t, func() { MustPercent(100.5) })
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, Percent(0), ClampPercent(-3))
	assert.Equal(t, Percent(100), ClampPercent(250))
	assert.Equal(t, Percent(33), ClampPercent(33))
}

func TestRoll_ConstSources(t *testing.T) {
	assert.True(t, Roll(Const(0), 1))
	assert.False(t, Roll(Const(0), 0))
	assert.False(t, Roll(Const(0.999), 99))
	assert.True(t, Roll(Const(0.999), 100))
}

func TestOneIn(t *testing.T) {
	c := &Counting{Source: Const(0.5)}
	assert.True(t, OneIn(c, 1))
	assert.Equal(t, 0, c.Draws, "n <= 1 must not draw")

	assert.True(t, OneIn(Const(0), 3))
	assert.False(t, OneIn(Const(0.5), 3))
}

func TestDice_Range(t *testing.T) {
	r := New(1)
	for range 100 {
		v := Dice(r, 8, 5501)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 8*5500)
	}
	assert.Equal(t, 0, Dice(Const(0), 8, 5501))
	assert.Equal(t, 8*5500, Dice(Const(0.99999999), 8, 5501))
}

func TestSequence_Wraps(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 3, s.Draws)
	assert.Equal(t, 9, s.IntN(10))
}

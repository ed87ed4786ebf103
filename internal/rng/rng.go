// Package rng provides the single seedable random source shared by a battle.
//
// Every stochastic function in the reaction pipeline takes a Source explicitly
// so that a given seed replays a battle exactly.
package rng

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// Source is the minimal random interface consumed by the pipeline.
type Source interface {
	// IntN returns a value in [0, n). Panics if n <= 0.
	IntN(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Rand is a PCG-backed Source that remembers its seed so isolated streams
// can be derived from it.
type Rand struct {
	seed uint64
	r    *rand.Rand
}

// New creates a Rand seeded with seed.
func New(seed uint64) *Rand {
	return &Rand{
		seed: seed,
		r:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the stream was created with.
func (r *Rand) Seed() uint64 { return r.seed }

// IntN implements Source.
func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

// Float64 implements Source.
func (r *Rand) Float64() float64 { return r.r.Float64() }

// Derive returns an independent stream keyed by label. The same seed and
// label always produce the same stream, and draws on the derived stream
// never advance the parent.
func (r *Rand) Derive(label string) *Rand {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], r.seed)
	h, err := blake2b.New256(buf[:])
	if err != nil {
		// blake2b only fails for keys longer than 64 bytes.
		panic(fmt.Sprintf("rng: derive %q: %v", label, err))
	}
	h.Write([]byte(label))
	sum := h.Sum(nil)
	return New(binary.LittleEndian.Uint64(sum[:8]))
}

// Percent is a probability expressed in percent, validated at construction.
type Percent float64

// MustPercent validates an authored probability. Values outside [0, 100]
// are data-table bugs and panic.
func MustPercent(v float64) Percent {
	if v < 0 || v > 100 {
		panic(fmt.Sprintf("rng: percent %v out of range [0, 100]", v))
	}
	return Percent(v)
}

// ClampPercent clamps a derived probability into [0, 100].
func ClampPercent(v float64) Percent {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return Percent(v)
}

// Roll draws once and reports whether the draw fell under p.
func Roll(src Source, p Percent) bool {
	return src.Float64()*100 < float64(p)
}

// Chance is Roll for a formula-derived percentage; the value is clamped.
func Chance(src Source, pct float64) bool {
	return Roll(src, ClampPercent(pct))
}

// OneIn reports a 1-in-n success. n <= 1 always succeeds without drawing.
func OneIn(src Source, n int) bool {
	if n <= 1 {
		return true
	}
	return src.IntN(n) == 0
}

// Uniform returns a value in [0, upper).
func Uniform(src Source, upper float64) float64 {
	return src.Float64() * upper
}

// Dice sums count throws of a die with faces 0..sides-1.
func Dice(src Source, count, sides int) int {
	total := 0
	for range count {
		total += src.IntN(sides)
	}
	return total
}

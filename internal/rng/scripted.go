package rng

// Const is a Source that always returns the same position in its range.
// Const(0) makes every Roll succeed, Const(0.999) makes every Roll fail.
type Const float64

// IntN implements Source.
func (c Const) IntN(n int) int {
	v := int(float64(c) * float64(n))
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Float64 implements Source.
func (c Const) Float64() float64 { return float64(c) }

// Sequence replays Float64 values in order and wraps around. IntN maps the
// next value onto [0, n). Used to script individual branches in tests.
type Sequence struct {
	Values []float64
	pos    int
	Draws  int
}

// NewSequence builds a Sequence from values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{Values: values}
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	s.Draws++
	return v
}

// IntN implements Source.
func (s *Sequence) IntN(n int) int {
	return Const(s.Float64()).IntN(n)
}

// Counting wraps a Source and counts draws.
type Counting struct {
	Source
	Draws int
}

// IntN implements Source.
func (c *Counting) IntN(n int) int {
	c.Draws++
	return c.Source.IntN(n)
}

// Float64 implements Source.
func (c *Counting) Float64() float64 {
	c.Draws++
	return c.Source.Float64()
}

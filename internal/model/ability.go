package model

import "fmt"

// Ability is one of the ten named ability keys. The declaration order is the
// total order used for iteration and serialization.
type Ability int8

const (
	AbilityBlade Ability = iota
	AbilityHeavy
	AbilityVolten
	AbilityFlame
	AbilityFrost
	AbilityThunder
	AbilityHoly
	AbilityDoom
	AbilityKereKere
	AbilityDream

	AbilityCount
)

var abilityNames = [AbilityCount]string{
	"blade", "heavy", "volten", "flame", "frost",
	"thunder", "holy", "doom", "kerekere", "dream",
}

// String returns the lowercase ability key.
func (a Ability) String() string {
	if a < 0 || a >= AbilityCount {
		return fmt.Sprintf("ability(%d)", int(a))
	}
	return abilityNames[a]
}

// ParseAbility resolves a key written in data tables.
func ParseAbility(s string) (Ability, error) {
	for i, name := range abilityNames {
		if name == s {
			return Ability(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ability %q", s)
}

// AbilityVector maps every ability key to a magnitude. Missing keys are zero.
type AbilityVector [AbilityCount]float64

// Get returns the magnitude for a, zero for out-of-range keys.
func (v AbilityVector) Get(a Ability) float64 {
	if a < 0 || a >= AbilityCount {
		return 0
	}
	return v[a]
}

// Add returns v + o elementwise.
func (v AbilityVector) Add(o AbilityVector) AbilityVector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Sub returns v - o elementwise.
func (v AbilityVector) Sub(o AbilityVector) AbilityVector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Scale returns v * f elementwise.
func (v AbilityVector) Scale(f float64) AbilityVector {
	for i := range v {
		v[i] *= f
	}
	return v
}

// Mul returns v * o elementwise.
func (v AbilityVector) Mul(o AbilityVector) AbilityVector {
	for i := range v {
		v[i] *= o[i]
	}
	return v
}

// Total is the scalar sum of all components.
func (v AbilityVector) Total() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum
}

// Dominant returns the key with the highest magnitude. Ties resolve to the
// earlier key.
func (v AbilityVector) Dominant() Ability {
	best := Ability(0)
	for i := 1; i < int(AbilityCount); i++ {
		if v[i] > v[best] {
			best = Ability(i)
		}
	}
	return best
}

// ClampNonNegative zeroes negative components.
func (v AbilityVector) ClampNonNegative() AbilityVector {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
	return v
}

// UnmarshalText parses a data-table key.
func (a *Ability) UnmarshalText(b []byte) error {
	v, err := ParseAbility(string(b))
	*a = v
	return err
}

// Package modifier holds the transient per-action stat corrections that
// passives and skills push onto a combatant before a reaction resolves.
package modifier

import "fmt"

// Stat identifies the quantity a modifier corrects.
type Stat int8

const (
	StatATK Stat = iota
	StatDEF
	StatEYE
	StatAGI
	StatDamage       // final body damage
	StatMentalDamage // final mental damage
)

// String returns the short stat name used in logs.
func (s Stat) String() string {
	switch s {
	case StatATK:
		return "atk"
	case StatDEF:
		return "def"
	case StatEYE:
		return "eye"
	case StatAGI:
		return "agi"
	case StatDamage:
		return "damage"
	case StatMentalDamage:
		return "mental_damage"
	}
	return "unknown"
}

// UnmarshalText parses a data-table stat name.
func (s *Stat) UnmarshalText(b []byte) error {
	for st := StatATK; st <= StatMentalDamage; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown modifier stat %q", b)
}

// Type defines how a modifier is applied.
type Type int8

const (
	Add Type = iota // additive bonus (e.g. +12 ATK)
	Mul             // multiplicative bonus (e.g. ×0.8 DEF)
)

// UnmarshalText parses "add" or "mul".
func (t *Type) UnmarshalText(b []byte) error {
	switch string(b) {
	case "add":
		*t = Add
	case "mul":
		*t = Mul
	default:
		return fmt.Errorf("unknown modifier type %q", b)
	}
	return nil
}

// Modifier is one correction. A non-empty TargetID restricts it to
// reactions against that combatant.
type Modifier struct {
	Stat     Stat
	Type     Type
	Value    float64
	TargetID string
	Source   string
}

// Stack collects the modifiers for the action in progress.
// Not safe for concurrent use: a stack belongs to one combatant and is only
// touched on the battle goroutine.
type Stack struct {
	mods []Modifier
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{mods: make([]Modifier, 0, 8)}
}

// Push adds a modifier.
func (s *Stack) Push(m Modifier) {
	s.mods = append(s.mods, m)
}

// Len returns the number of modifiers on the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.mods)
}

// Reset drops every modifier. Called once the action has resolved.
func (s *Stack) Reset() {
	if s == nil {
		return
	}
	s.mods = s.mods[:0]
}

// Apply returns base corrected by every matching modifier.
// Additive bonuses are summed first, then multiplicative bonuses are
// applied. Modifiers bound to another target are skipped.
func (s *Stack) Apply(stat Stat, base float64, targetID string) float64 {
	if s == nil {
		return base
	}
	add := 0.0
	mul := 1.0
	for _, m := range s.mods {
		if m.Stat != stat {
			continue
		}
		if m.TargetID != "" && m.TargetID != targetID {
			continue
		}
		switch m.Type {
		case Add:
			add += m.Value
		case Mul:
			mul *= m.Value
		}
	}
	return (base + add) * mul
}

// RemoveSource drops every modifier pushed by source.
func (s *Stack) RemoveSource(source string) {
	if s == nil {
		return
	}
	kept := s.mods[:0]
	for _, m := range s.mods {
		if m.Source != source {
			kept = append(kept, m)
		}
	}
	s.mods = kept
}

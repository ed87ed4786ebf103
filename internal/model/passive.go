package model

import "github.com/udisondev/battlecore/internal/game/modifier"

// Passive is an active passive effect on a combatant.
type Passive struct {
	ID   string
	Name string

	// IsBad marks debuffs. Immunity passives refuse them.
	IsBad    bool
	Immunity bool

	// FlatReduction is subtracted from incoming body damage.
	FlatReduction float64
	// Modifiers are pushed onto the holder's stack while the passive is active.
	Modifiers []modifier.Modifier
	// Turns left; <= 0 means permanent.
	Turns int
}

// StatModifiers returns the passive's modifiers tagged with its ID.
func (p *Passive) StatModifiers() []modifier.Modifier {
	mods := make([]modifier.Modifier, len(p.Modifiers))
	for i, m := range p.Modifiers {
		m.Source = p.ID
		mods[i] = m
	}
	return mods
}

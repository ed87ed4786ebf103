package model

import (
	"github.com/udisondev/battlecore/internal/game/modifier"
)

// Stats are the scalar combat stats of a combatant.
type Stats struct {
	ATK float64
	DEF float64
	EYE float64
	AGI float64

	SpiritualPotential float64
	// KerenRate is the showmanship rate in percent.
	KerenRate float64
	// OverkillCap is the excess damage this combatant needs to break a
	// victim. Zero falls back to 2×ATK.
	OverkillCap float64
}

// Sequence is the state of a combatant's own consecutive attack.
type Sequence struct {
	Active            bool
	SkillID           string
	Remaining         int
	Cancelled         bool
	ActivelyCancelled bool
}

// Combatant is the mutable state of one participant. It is created at
// battle entry, mutated by every reaction and partially reset at battle end.
// A Combatant is only touched from the battle goroutine.
type Combatant struct {
	ID          string
	Name        string
	Kind        Kind
	Temperament Temperament
	Condition   Condition
	Power       PowerLevel
	Impression  Impression

	HP          float64
	MaxHP       float64
	MentalHP    float64
	MaxMentalHP float64
	// HPFloor and MentalFloor are the species clamp floors.
	HPFloor     float64
	MentalFloor float64

	ResonanceValue float64

	Stats          Stats
	Abilities      AbilityVector
	PhysicalResist map[PhysicalProperty]float64
	Vanguard       bool

	Layers   []*BarrierLayer
	Passives []*Passive

	Adaptation   *AdaptationMemory
	DefenseStyle DefenseStyleMemory
	Mods         *modifier.Stack
	Sequence     Sequence

	// ReservedCounter is set when an interrupt grants a same-turn counter.
	ReservedCounter bool
	Broken          bool

	History []ActionRecord
}

// NewCombatant creates a combatant at full HP with empty memories.
func NewCombatant(id, name string, maxHP, maxMentalHP float64) *Combatant {
	return &Combatant{
		ID:          id,
		Name:        name,
		HP:          maxHP,
		MaxHP:       maxHP,
		MentalHP:    maxMentalHP,
		MaxMentalHP: maxMentalHP,
		Adaptation:  NewAdaptationMemory(),
		Mods:        modifier.NewStack(),
		DefenseStyle: DefenseStyleMemory{
			Threshold: 3,
		},
	}
}

// IsDead reports whether HP reached zero.
func (c *Combatant) IsDead() bool {
	return c.HP <= 0
}

// HPRatio returns HP/MaxHP.
func (c *Combatant) HPRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return c.HP / c.MaxHP
}

// Stat returns the base stat corrected by the modifier stack for a
// reaction against targetID.
func (c *Combatant) Stat(s modifier.Stat, targetID string) float64 {
	var base float64
	switch s {
	case modifier.StatATK:
		base = c.Stats.ATK
	case modifier.StatDEF:
		base = c.Stats.DEF
	case modifier.StatEYE:
		base = c.Stats.EYE
	case modifier.StatAGI:
		base = c.Stats.AGI
	default:
		base = 1
	}
	return c.Mods.Apply(s, base, targetID)
}

// PhysicalResistFor returns the body resistance ratio for p (default 1.0).
func (c *Combatant) PhysicalResistFor(p PhysicalProperty) float64 {
	if r, ok := c.PhysicalResist[p]; ok {
		return r
	}
	return 1.0
}

// ApplyDamage subtracts body damage and clamps HP to [HPFloor, MaxHP].
// The floor applies only while the combatant is still alive; a lethal hit
// takes HP to 0 unless the floor is positive.
func (c *Combatant) ApplyDamage(amount float64) {
	c.HP = clamp(c.HP-amount, c.HPFloor, c.MaxHP)
}

// ApplyMentalDamage subtracts mental damage with the mental clamp rule.
func (c *Combatant) ApplyMentalDamage(amount float64) {
	c.MentalHP = clamp(c.MentalHP-amount, c.MentalFloor, c.MaxMentalHP)
}

// SetHP sets HP within [HPFloor, MaxHP].
func (c *Combatant) SetHP(hp float64) {
	c.HP = clamp(hp, c.HPFloor, c.MaxHP)
}

// HasPassive reports whether a passive with id is active.
func (c *Combatant) HasPassive(id string) bool {
	for _, p := range c.Passives {
		if p.ID == id {
			return true
		}
	}
	return false
}

// HasImmunity reports whether any immunity passive is active.
func (c *Combatant) HasImmunity() bool {
	for _, p := range c.Passives {
		if p.Immunity {
			return true
		}
	}
	return false
}

// AddPassive adds p, replacing a passive with the same ID, and pushes its
// stat modifiers.
func (c *Combatant) AddPassive(p *Passive) {
	if c.Mods == nil {
		c.Mods = modifier.NewStack()
	}
	c.Mods.RemoveSource(p.ID)
	for _, m := range p.StatModifiers() {
		c.Mods.Push(m)
	}
	for i, existing := range c.Passives {
		if existing.ID == p.ID {
			c.Passives[i] = p
			return
		}
	}
	c.Passives = append(c.Passives, p)
}

// RemovePassive removes the passive with id and its modifiers. It reports
// whether the passive existed.
func (c *Combatant) RemovePassive(id string) bool {
	for i, p := range c.Passives {
		if p.ID == id {
			c.Passives = append(c.Passives[:i], c.Passives[i+1:]...)
			c.Mods.RemoveSource(id)
			return true
		}
	}
	return false
}

// RebuildModifiers resets the stack to the modifiers of the active passives.
func (c *Combatant) RebuildModifiers() {
	if c.Mods == nil {
		c.Mods = modifier.NewStack()
	}
	c.Mods.Reset()
	for _, p := range c.Passives {
		for _, m := range p.StatModifiers() {
			c.Mods.Push(m)
		}
	}
}

// TickPassives counts one turn off every timed passive and drops the ones
// that ran out. It returns the expired IDs.
func (c *Combatant) TickPassives() []string {
	var expired []string
	n := 0
	for _, p := range c.Passives {
		if p.Turns > 0 {
			p.Turns--
			if p.Turns == 0 {
				expired = append(expired, p.ID)
				c.Mods.RemoveSource(p.ID)
				continue
			}
		}
		c.Passives[n] = p
		n++
	}
	clear(c.Passives[n:])
	c.Passives = c.Passives[:n]
	return expired
}

// FlatReduction sums the flat damage reduction of all passives.
func (c *Combatant) FlatReduction() float64 {
	sum := 0.0
	for _, p := range c.Passives {
		sum += p.FlatReduction
	}
	return sum
}

// Record appends an action record to the history.
func (c *Combatant) Record(r ActionRecord) {
	c.History = append(c.History, r)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

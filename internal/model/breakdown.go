package model

// DamageBreakdown is the result of every damage-producing formula.
// Total is the damage number; Abilities records how much of it each
// ability key contributed so later stages can inspect or extend one key.
type DamageBreakdown struct {
	Abilities AbilityVector
	Total     float64
}

// NewBreakdown builds a breakdown from a base amount plus ability parts.
func NewBreakdown(base float64, parts AbilityVector) DamageBreakdown {
	return DamageBreakdown{Abilities: parts, Total: base + parts.Total()}
}

// AbilitySum returns the ability part of the damage.
func (d DamageBreakdown) AbilitySum() float64 {
	return d.Abilities.Total()
}

// Scale multiplies the whole breakdown by f.
func (d DamageBreakdown) Scale(f float64) DamageBreakdown {
	d.Abilities = d.Abilities.Scale(f)
	d.Total *= f
	return d
}

// ScaleTo rescales the breakdown so Total becomes total, keeping proportions.
func (d DamageBreakdown) ScaleTo(total float64) DamageBreakdown {
	if d.Total == 0 {
		d.Total = total
		return d
	}
	return d.Scale(total / d.Total)
}

// AddAbility adds v to one ability key and to Total.
func (d DamageBreakdown) AddAbility(a Ability, v float64) DamageBreakdown {
	if a < 0 || a >= AbilityCount {
		return d
	}
	d.Abilities[a] += v
	d.Total += v
	return d
}

// AddFlat adds v to Total without touching the ability parts.
func (d DamageBreakdown) AddFlat(v float64) DamageBreakdown {
	d.Total += v
	return d
}

// ClampNonNegative forces Total and every component to be >= 0 so damage
// never heals. Ability parts never exceed Total: when the formula base is
// negative the parts shrink with it, and a zero Total carries no parts.
func (d DamageBreakdown) ClampNonNegative() DamageBreakdown {
	d.Abilities = d.Abilities.ClampNonNegative()
	if d.Total < 0 {
		d.Total = 0
	}
	if sum := d.Abilities.Total(); sum > d.Total {
		d.Abilities = d.Abilities.Scale(d.Total / sum)
	}
	return d
}

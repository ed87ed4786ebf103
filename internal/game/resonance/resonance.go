// Package resonance computes the empathic damage channel. It bypasses
// barriers and drains the defender's resonance pool instead of HP.
package resonance

import (
	"log/slog"
	"math"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

const (
	gateRatio       = 1.4
	baseRate        = 0.06
	triggerBoost    = 1.29
	maxDanger       = 0.8
	spiritualRate   = 0.06
	skillCountStep  = 0.05
	skillCountLimit = 10
)

// Input is one resonance computation.
type Input struct {
	Attacker *model.Combatant
	Defender *model.Combatant
	// Damage is the body breakdown of the reaction before any vital layer
	// absorbed it.
	Damage model.DamageBreakdown
	// Profile is the defender's temperament profile.
	Profile *data.TemperamentProfile
	// SkillCount is the number of skills the attacker carries.
	SkillCount int
}

// PowerRatio is attacker ability total over defender ability total.
func PowerRatio(att, def *model.Combatant) float64 {
	a, d := att.Abilities.Total(), def.Abilities.Total()
	if d <= 0 {
		if a > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return a / d
}

// PowerMultiplier maps the attacker's power tier to its resonance weight.
func PowerMultiplier(p model.PowerLevel) float64 {
	switch p {
	case model.PowerLowest:
		return 0.5
	case model.PowerLow:
		return 0.8
	case model.PowerMedium:
		return 1.0
	case model.PowerHigh:
		return 1.25
	}
	panic("resonance: unhandled power level " + p.String())
}

// DangerRatio is min(0.8, 1 − avg(HP, mentalHP)/maxHP), never negative.
func DangerRatio(def *model.Combatant) float64 {
	if def.MaxHP <= 0 {
		return maxDanger
	}
	r := 1 - (def.HP+def.MentalHP)/2/def.MaxHP
	return math.Max(0, math.Min(maxDanger, r))
}

// Compute returns the resonance damage of a reaction. The gate
// attacker/defender power ≥ 1.4 must hold; otherwise nothing is drawn.
//
//	base  = AbilitySum×0.06 + Σ bonus[a]×Damage[a]   (×1.29 on trigger)
//	final = base × danger × power × (1 − spiritual×0.06) × (1 + F×0.05×min(skills, 10))
func Compute(in Input, src rng.Source) model.DamageBreakdown {
	att, def := in.Attacker, in.Defender
	if PowerRatio(att, def) < gateRatio {
		return model.DamageBreakdown{}
	}

	parts := in.Damage.Abilities.ClampNonNegative()
	base := parts.Total() * baseRate
	if in.Profile != nil {
		for a := range model.AbilityCount {
			base += in.Profile.ResonanceBonus[a] * parts[a]
		}
		if in.Profile.IsTrigger(att.Impression) || in.Profile.IsTrigger(def.Impression) {
			base *= triggerBoost
		}
	}

	spirit := math.Max(0, 1-def.Stats.SpiritualPotential*spiritualRate)
	amount := base * DangerRatio(def) * PowerMultiplier(att.Power) * spirit
	if n := min(in.SkillCount, skillCountLimit); n > 0 {
		amount *= 1 + src.Float64()*skillCountStep*float64(n)
	}
	if amount <= 0 {
		return model.DamageBreakdown{}
	}

	slog.Debug("resonance damage",
		"attacker", att.ID,
		"defender", def.ID,
		"amount", amount)
	return model.NewBreakdown(0, parts).ScaleTo(amount)
}

// Apply subtracts d from the defender's resonance pool.
func Apply(def *model.Combatant, d model.DamageBreakdown) {
	def.ResonanceValue -= d.Total
}

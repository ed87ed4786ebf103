package damage

import (
	"math"

	"github.com/udisondev/battlecore/internal/model"
)

const (
	magicThreshold = 10.0
	magicSlope     = 4.0
	abilityDivisor = 10.0
	minRatioDEF    = 1.0
)

// Physical is the non-magic formula: (ATK − DEF)×power + power.
func Physical(atk, def, power float64) float64 {
	return (atk-def)*power + power
}

// Ratio is the magic ratio formula: power×ATK/DEF. It keeps a floor of
// damage when DEF outgrows ATK.
func Ratio(atk, def, power float64) float64 {
	return power * atk / math.Max(def, minRatioDEF)
}

// MagicWeight is the logistic weight of the difference formula:
// 1 / (1 + e^{−(ATK − DEF − 10)/4}).
func MagicWeight(atk, def float64) float64 {
	return 1 / (1 + math.Exp(-(atk-def-magicThreshold)/magicSlope))
}

// Magic blends the difference and ratio formulas. When ATK ≤ DEF the ratio
// formula applies alone.
func Magic(atk, def, power float64) float64 {
	ratio := Ratio(atk, def, power)
	if atk <= def {
		return ratio
	}
	w := MagicWeight(atk, def)
	return w*Physical(atk, def, power) + (1-w)*ratio
}

// Base returns the formula damage of one channel as a breakdown: the
// formula base plus attacker abilities weighted by the skill, scaled by
// power/10.
func Base(atk, def, power float64, magic bool, abilities, weights model.AbilityVector) model.DamageBreakdown {
	var base float64
	if magic {
		base = Magic(atk, def, power)
	} else {
		base = Physical(atk, def, power)
	}
	parts := abilities.Mul(weights).Scale(power / abilityDivisor)
	return model.NewBreakdown(base, parts)
}

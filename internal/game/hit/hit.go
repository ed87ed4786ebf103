// Package hit decides the hit tier of an incoming skill.
package hit

import (
	"log/slog"
	"math"

	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// Result is the hit tier.
type Result int8

const (
	CompleteEvade Result = iota
	Graze
	Hit
	Critical
)

func (r Result) String() string {
	switch r {
	case CompleteEvade:
		return "complete_evade"
	case Graze:
		return "graze"
	case Hit:
		return "hit"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// Landed reports whether any damage connects.
func (r Result) Landed() bool {
	return r != CompleteEvade
}

const (
	kerenScale          = 0.05 // percent of min-hit per keren point
	kerenSynergyLine    = 30.0 // both sides above → synergy
	kerenSynergyBoost   = 1.5
	kereKereBoost       = 0.02 // percent per KereKere point of the leading side
	statWeightedBoost   = 1.7
	rearLinePenalty     = 0.1 // share of EYE lost when attacking from the rear
	critGapScale        = 10.0
	explosionHardEvade  = 3.0
	explosionHardChance = 84.0
	explosionSoftEvade  = 1.6
	explosionSoftChance = 50.0
)

// MinimumHitChance returns the keren-derived percentage that bypasses the
// standard accuracy roll. Zero when both sides carry default keren.
func MinimumHitChance(attacker, defender *model.Combatant) float64 {
	a := attacker.Stats.KerenRate
	d := defender.Stats.KerenRate
	chance := (a + d) * kerenScale
	if chance <= 0 {
		return 0
	}
	if a > kerenSynergyLine && d > kerenSynergyLine {
		chance *= kerenSynergyBoost
	}
	switch {
	case a > d:
		chance += attacker.Abilities.Get(model.AbilityKereKere) * kereKereBoost
	case d > a:
		chance += defender.Abilities.Get(model.AbilityKereKere) * kereKereBoost
	}
	return float64(rng.ClampPercent(chance))
}

// Resolve computes the hit tier of skill from attacker against defender.
func Resolve(attacker, defender *model.Combatant, skill *model.Skill, src rng.Source) Result {
	if minHit := MinimumHitChance(attacker, defender); minHit > 0 && rng.Chance(src, minHit) {
		r := minimumHitOutcome(attacker, defender, src)
		slog.Debug("minimum hit fired",
			"attacker", attacker.ID,
			"defender", defender.ID,
			"chance", minHit,
			"result", r)
		return r
	}

	r := standard(attacker, defender, skill, src)

	if r == CompleteEvade && skill.IsMagic && rng.OneIn(src, 3) {
		r = Graze
	}
	if r == CompleteEvade && skill.IsExplosion && defender.Vanguard {
		r = explosionEvade(attacker, defender, src)
	}
	return r
}

// minimumHitOutcome splits a fired minimum hit into Critical or Graze.
func minimumHitOutcome(attacker, defender *model.Combatant, src rng.Source) Result {
	if rng.OneIn(src, 3) {
		if src.IntN(2) == 0 {
			return Critical
		}
		return Graze
	}

	a := weightedValue(attacker, defender.ID)
	d := weightedValue(defender, attacker.ID)
	switch {
	case a > d:
		a *= statWeightedBoost
	case d > a:
		d *= statWeightedBoost
	}
	if a+d <= 0 {
		return Graze
	}
	if rng.Uniform(src, a+d) < a {
		return Critical
	}
	return Graze
}

func weightedValue(c *model.Combatant, targetID string) float64 {
	eye := c.Stat(modifier.StatEYE, targetID)
	agi := c.Stat(modifier.StatAGI, targetID)
	return math.Max(eye, eye*0.8+agi)
}

// Evasion is the defender's evasion term.
func Evasion(defender *model.Combatant, attackerID string) float64 {
	return math.Max(0, defender.Stat(modifier.StatAGI, attackerID))
}

// standard is the EYE-vs-evasion roll followed by the skill's own
// accuracy layer.
func standard(attacker, defender *model.Combatant, skill *model.Skill, src rng.Source) Result {
	eye := math.Max(0, attacker.Stat(modifier.StatEYE, defender.ID))
	eva := Evasion(defender, attacker.ID)

	threshold := eye
	if !attacker.Vanguard {
		threshold -= eye * rearLinePenalty
	}
	if eye+eva <= 0 || rng.Uniform(src, eye+eva) >= threshold {
		return CompleteEvade
	}
	return skillHitCalc(eye, eva, skill, src)
}

// skillHitCalc is the skill's independent accuracy layer.
func skillHitCalc(eye, eva float64, skill *model.Skill, src rng.Source) Result {
	if !rng.Chance(src, skill.HitAccuracy()) {
		return Graze
	}
	crit := skill.CritRate
	if eye > eva && eye > 0 {
		crit += (eye - eva) / eye * critGapScale
	}
	if crit > 0 && rng.Chance(src, crit) {
		return Critical
	}
	return Hit
}

// explosionEvade downgrades a complete evade of an explosion against a
// vanguard defender to a graze unless the defender is much faster.
func explosionEvade(attacker, defender *model.Combatant, src rng.Source) Result {
	atkAGI := attacker.Stat(modifier.StatAGI, defender.ID)
	defAGI := defender.Stat(modifier.StatAGI, attacker.ID)

	var keep float64
	switch {
	case atkAGI <= 0 && defAGI > 0:
		keep = explosionHardChance
	case atkAGI > 0 && defAGI >= atkAGI*explosionHardEvade:
		keep = explosionHardChance
	case atkAGI > 0 && defAGI >= atkAGI*explosionSoftEvade:
		keep = explosionSoftChance
	default:
		return Graze
	}
	if rng.Chance(src, keep) {
		return CompleteEvade
	}
	return Graze
}

// AllyRoll is the independent interception roll of a squadmate standing in
// for the defender. It uses the standard formula with the ally's evasion.
func AllyRoll(attacker, ally *model.Combatant, skill *model.Skill, src rng.Source) Result {
	return standard(attacker, ally, skill, src)
}

// Mix combines the primary result with the ally interception result.
func Mix(primary, ally Result, src rng.Source) Result {
	if primary == ally {
		return primary
	}
	switch ally {
	case Hit, Critical:
		return primary
	case Graze:
		if primary == Critical {
			return Hit
		}
		return primary
	case CompleteEvade:
		switch primary {
		case Critical:
			if src.IntN(2) == 0 {
				return Hit
			}
			return Graze
		case Hit:
			return Graze
		case Graze:
			return CompleteEvade
		}
	}
	return primary
}

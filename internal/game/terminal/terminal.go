// Package terminal resolves the conditions that end or bend a reaction:
// blade instant death, mutual-kill survival, overkill "broken" and the
// interrupt counter.
package terminal

import (
	"log/slog"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// Blade instant death.
const (
	bladeBaseChance   = 2.0 // %
	bladeAbilityScale = 0.1
	bladeAbilityCap   = 8.0 // %
	bladeSurvivalBase = 5.0
	bladeSurvivalMax  = 30.0
)

// Mutual-kill survival.
const (
	survivalMinHPRatio  = 0.20
	survivalMaxAbility  = 1.6
	survivalMinDamage   = 0.34
	survivalMaxDamage   = 0.66
	survivalMaxPercent  = 14.0
	SurvivalSnapHPRatio = 0.07
)

// Overkill.
const (
	DefaultBrokenRate = 0.5
	machineBrokenPct  = 33.0
	lifeBrokenPct     = 93.0
	overkillCapPerATK = 2.0
	angryPassFactor   = 1.5
	calmPassFactor    = 0.5
)

// Interrupt counter.
const (
	interruptGate1 = 30.0 // % before defense-ignore
	interruptGate2 = 50.0 // % at equal abilities
)

// BladeOutcome is the result of the blade instant-death check.
type BladeOutcome struct {
	Triggered bool
	// Deficit is the live HP the hit was short of; the caller adds it to
	// the blade component of body and resonance damage.
	Deficit float64
	// Survived means the victim clings on at 1 HP.
	Survived bool
}

// BladeCrit checks the blade instant death for a hit of damage that would
// leave the defender alive. Non-blade skills and lethal hits draw nothing.
//
// First roll: 2% + min(blade×0.1, 8)%.
// Second roll: attBlade / (attBlade + defBlade).
// Survival:    clamp((defBlade − attBlade)×0.5 + 5, 0, 30)%.
func BladeCrit(att, def *model.Combatant, skill *model.Skill, damage float64, src rng.Source) BladeOutcome {
	if !skill.IsBlade || damage >= def.HP {
		return BladeOutcome{}
	}
	attBlade := att.Abilities.Get(model.AbilityBlade)
	defBlade := def.Abilities.Get(model.AbilityBlade)

	if !rng.Chance(src, bladeBaseChance+min(attBlade*bladeAbilityScale, bladeAbilityCap)) {
		return BladeOutcome{}
	}
	ratio := 0.0
	if sum := attBlade + defBlade; sum > 0 {
		ratio = attBlade / sum
	}
	if !rng.Chance(src, ratio*100) {
		return BladeOutcome{}
	}

	out := BladeOutcome{Triggered: true, Deficit: def.HP - damage}
	surv := (defBlade-attBlade)*0.5 + bladeSurvivalBase
	out.Survived = rng.Roll(src, rng.ClampPercent(min(surv, bladeSurvivalMax)))

	slog.Debug("blade instant death",
		"attacker", att.ID,
		"defender", def.ID,
		"deficit", out.Deficit,
		"survived", out.Survived)
	return out
}

// SurvivalGates reports whether mutual-kill survival may be rolled:
// HP ≥ 20% max, attacker ability total ≤ 1.6× defender's, and damage
// between 34% and 66% of max HP.
func SurvivalGates(att, def *model.Combatant, damage float64) bool {
	if def.MaxHP <= 0 {
		return false
	}
	if def.HP < def.MaxHP*survivalMinHPRatio {
		return false
	}
	if att.Abilities.Total() > def.Abilities.Total()*survivalMaxAbility {
		return false
	}
	ratio := damage / def.MaxHP
	return ratio >= survivalMinDamage && ratio <= survivalMaxDamage
}

// SurvivalPercent is the chance, 0 to 14%, that the defender survives a
// lethal hit. A named override for (condition, power) wins over the table;
// an override outside [0, 100] panics.
func SurvivalPercent(def *model.Combatant, profile *data.TemperamentProfile) float64 {
	if v, ok := profile.SurvivalOverride(def.Condition, def.Power); ok {
		return clamp(float64(rng.MustPercent(v)), 0, survivalMaxPercent)
	}
	pct := profile.SurvivalBase + powerShift(def.Power) + conditionShift(def.Condition)
	return clamp(pct, 0, survivalMaxPercent)
}

func powerShift(p model.PowerLevel) float64 {
	switch p {
	case model.PowerLowest:
		return -4
	case model.PowerLow:
		return -2
	case model.PowerMedium:
		return 0
	case model.PowerHigh:
		return 2
	}
	panic("terminal: unhandled power level " + p.String())
}

func conditionShift(c model.Condition) float64 {
	switch c {
	case model.ConditionNormal:
		return 0
	case model.ConditionAngry:
		return -1
	case model.ConditionCalm, model.ConditionJoy:
		return 1
	case model.ConditionFear:
		return -3
	case model.ConditionFrenzy:
		return -2
	}
	panic("terminal: unhandled condition " + c.String())
}

// MutualKillSurvival rolls the survival of a lethal hit. Nothing is drawn
// unless the hit is lethal and every gate holds. On success the caller
// snaps HP to SurvivalSnapHPRatio of max.
func MutualKillSurvival(att, def *model.Combatant, damage float64, profile *data.TemperamentProfile, src rng.Source) bool {
	if damage < def.HP || !SurvivalGates(att, def, damage) {
		return false
	}
	ok := rng.Chance(src, SurvivalPercent(def, profile))
	if ok {
		slog.Debug("mutual kill survived", "defender", def.ID, "damage", damage)
	}
	return ok
}

// OverkillInput describes the excess of a killing blow.
type OverkillInput struct {
	Attacker *model.Combatant
	Victim   *model.Combatant
	// Overflow is the damage beyond the victim's remaining HP.
	Overflow float64
	// Profile belongs to the attacker.
	Profile    *data.TemperamentProfile
	BrokenRate float64
}

// Overkill decides whether a killed victim becomes broken.
//
// The overflow must exceed cap×passRate, where cap is the attacker's
// OverkillCap (2×ATK when unset) and passRate comes from the attacker's
// profile and condition, and must exceed maxHP×BrokenRate. Machines then
// break at 33%. Life victims break at 93% only under a Machine attacker, a
// temperament that may break life, or an angry or frenzied attacker.
// Spirits never break.
func Overkill(in OverkillInput, src rng.Source) bool {
	att, victim := in.Attacker, in.Victim
	if victim.Kind == model.KindSpirit || in.Overflow <= 0 {
		return false
	}

	limit := att.Stats.OverkillCap
	if limit <= 0 {
		limit = overkillCapPerATK * att.Stats.ATK
	}
	pass := in.Profile.OverkillPassRate * passFactor(att.Condition)
	if in.Overflow <= limit*pass || in.Overflow <= victim.MaxHP*in.BrokenRate {
		return false
	}

	var pct float64
	switch victim.Kind {
	case model.KindMachine:
		pct = machineBrokenPct
	case model.KindLife:
		if !canBreakLife(att, in.Profile) {
			return false
		}
		pct = lifeBrokenPct
	}
	broken := rng.Chance(src, pct)
	if broken {
		slog.Debug("victim broken", "attacker", att.ID, "victim", victim.ID, "overflow", in.Overflow)
	}
	return broken
}

func passFactor(c model.Condition) float64 {
	switch c {
	case model.ConditionAngry:
		return angryPassFactor
	case model.ConditionCalm:
		return calmPassFactor
	}
	return 1
}

func canBreakLife(att *model.Combatant, profile *data.TemperamentProfile) bool {
	if att.Kind == model.KindMachine || profile.CanBreakLife {
		return true
	}
	return att.Condition == model.ConditionFrenzy || att.Condition == model.ConditionAngry
}

// InterruptOutcome is the result of the interrupt check.
type InterruptOutcome struct {
	Triggered bool
	// Counter is set when the defender gets a same-turn counter action.
	Counter bool
}

// Interrupt lets a defender in the middle of its own consecutive attack cut
// the incoming attacker off. Requires power ≥ Medium and two passes:
//
//	gate 1: 30% × (1 − defenseIgnoreRatio)
//	gate 2: 50% × 2×defAbility / (defAbility + attAbility)
//
// On success the attacker's sequence is cancelled and flagged as actively
// cancelled; Life defenders reserve a counter.
func Interrupt(att, def *model.Combatant, skill *model.Skill, src rng.Source) InterruptOutcome {
	seq := def.Sequence
	if !seq.Active || seq.Cancelled || seq.Remaining <= 0 || def.Power < model.PowerMedium {
		return InterruptOutcome{}
	}

	if !rng.Chance(src, interruptGate1*(1-clamp(skill.DefenseIgnoreRatio, 0, 1))) {
		return InterruptOutcome{}
	}
	defTotal := def.Abilities.Total()
	attTotal := att.Abilities.Total()
	share := 0.5
	if sum := defTotal + attTotal; sum > 0 {
		share = defTotal / sum
	}
	if !rng.Chance(src, interruptGate2*2*share) {
		return InterruptOutcome{}
	}

	att.Sequence.Active = false
	att.Sequence.Remaining = 0
	att.Sequence.Cancelled = true
	att.Sequence.ActivelyCancelled = true

	out := InterruptOutcome{Triggered: true}
	if def.Kind == model.KindLife {
		def.ReservedCounter = true
		out.Counter = true
	}
	slog.Debug("interrupt counter",
		"attacker", att.ID,
		"defender", def.ID,
		"counter", out.Counter)
	return out
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

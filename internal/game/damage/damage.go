// Package damage computes body and mental damage for one reaction.
//
// Pipeline order, every step switchable by Policy:
//
//	formula → variance → damage modifiers → defense-style clamp (on DEF)
//	→ physical resist → passive flat reduction → frenzy → adaptation
//	→ barrier penetration → blade instant death → hit tier → caps → clamp
package damage

import (
	"log/slog"
	"math"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/adapt"
	"github.com/udisondev/battlecore/internal/game/barrier"
	"github.com/udisondev/battlecore/internal/game/defstyle"
	"github.com/udisondev/battlecore/internal/game/hit"
	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/game/terminal"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

const (
	mismatchDEF    = 0.7
	frenzyPerIndex = 0.06
	frenzyGapMin   = 0.5
	frenzyGapMax   = 2.0
)

// Policy switches pipeline stages on or off.
type Policy struct {
	DefenseStyle     bool
	PhysicalResist   bool
	PassiveReduction bool
	Frenzy           bool
	Adaptation       bool
	Barrier          bool
	BladeDeath       bool
	HitTier          bool
	Caps             bool
}

// FullPolicy runs every stage. Used for live combat.
func FullPolicy() Policy {
	return Policy{
		DefenseStyle:     true,
		PhysicalResist:   true,
		PassiveReduction: true,
		Frenzy:           true,
		Adaptation:       true,
		Barrier:          true,
		BladeDeath:       true,
		HitTier:          true,
		Caps:             true,
	}
}

// SimplePolicy is the non-combat application: resistances, passives,
// barriers and caps only. No memory is touched and nothing is rolled
// beyond what the caller passes in.
func SimplePolicy() Policy {
	return Policy{
		PhysicalResist:   true,
		PassiveReduction: true,
		Barrier:          true,
		Caps:             true,
	}
}

// Rules are the tunable constants of the pipeline.
type Rules struct {
	GrazeMultiplier    float64
	CriticalMultiplier float64
	// TLOACap is the share of max HP a TLOA skill may deal in one hit.
	TLOACap float64
	Adapt   adapt.Params
}

// DefaultRules returns the standard constants.
func DefaultRules() Rules {
	return Rules{
		GrazeMultiplier:    0.5,
		CriticalMultiplier: 1.5,
		TLOACap:            0.4,
		Adapt:              adapt.DefaultParams(),
	}
}

// Input is one damage computation.
type Input struct {
	Attacker *model.Combatant
	Defender *model.Combatant
	Skill    *model.Skill
	// Power and MentalPower override the skill's values when non-zero.
	Power       float64
	MentalPower float64
	Hit         hit.Result
	Variance    float64
	Policy      Policy
	Rules       Rules
	// Profile is the defender's temperament profile, used by adaptation.
	Profile *data.TemperamentProfile
	Turn    int
}

// Output is the damage that reaches the defender's HP and mental HP.
type Output struct {
	Body   model.DamageBreakdown
	Mental model.DamageBreakdown
	// Unshielded is the body damage as it would land with no vital layers:
	// the breakdown taken before barrier penetration, hit tier applied.
	// Resonance is computed from it.
	Unshielded model.DamageBreakdown
	// Familiarity is the adaptation multiplier that was applied.
	Familiarity float64
	Blade       terminal.BladeOutcome
	Broken      []string
	Capped      bool
}

// Compute runs the pipeline. It mutates the defender's adaptation memory
// and barrier layers when those stages are enabled. A complete evade deals
// nothing and draws nothing.
func Compute(in Input, src rng.Source) Output {
	out := Output{Familiarity: 1}
	if !in.Hit.Landed() {
		return out
	}
	att, def, skill := in.Attacker, in.Defender, in.Skill
	p := in.Policy

	power := in.Power
	if power == 0 {
		power = skill.Power
	}
	mentalPower := in.MentalPower
	if mentalPower == 0 {
		mentalPower = skill.MentalPower
	}

	atkValue := att.Stat(modifier.StatATK, def.ID)
	defValue := def.Stat(modifier.StatDEF, att.ID) * (1 - clamp(skill.DefenseIgnoreRatio, 0, 1))
	if p.DefenseStyle {
		defValue = StyleDefense(def, skill.AimStyle, defValue)
	}

	body := Base(atkValue, defValue, power, skill.IsMagic, att.Abilities, skill.AbilityWeights)
	mental := Base(atkValue, defValue, mentalPower, skill.IsMagic, att.Abilities, skill.AbilityWeights)
	if mentalPower == 0 {
		mental = model.DamageBreakdown{}
	}

	body = body.Scale(1 + in.Variance)
	mental = mental.Scale(1 + in.Variance)

	body = body.ScaleTo(att.Mods.Apply(modifier.StatDamage, body.Total, def.ID))
	mental = mental.ScaleTo(att.Mods.Apply(modifier.StatMentalDamage, mental.Total, def.ID))

	if p.PhysicalResist {
		body = body.Scale(def.PhysicalResistFor(skill.Property))
	}
	if p.PassiveReduction {
		if flat := def.FlatReduction(); flat != 0 {
			body = body.ScaleTo(body.Total - flat)
		}
	}
	if p.Frenzy {
		f := Frenzy(skill, att.Stat(modifier.StatEYE, def.ID), def.Stat(modifier.StatAGI, att.ID))
		body = body.Scale(f)
		mental = mental.Scale(f)
	}
	body = body.ClampNonNegative()
	mental = mental.ClampNonNegative()

	if p.Adaptation && in.Profile != nil {
		out.Familiarity = adapt.ApplyFamiliarity(adapt.Input{
			Defender: def,
			Attacker: att,
			Skill:    skill,
			Damage:   body.Total,
			Turn:     in.Turn,
			Profile:  in.Profile,
			Params:   in.Rules.Adapt,
		}, src)
		body = body.Scale(out.Familiarity)
		mental = mental.Scale(out.Familiarity)
	}

	unshielded := body
	if p.Barrier && len(def.Layers) > 0 {
		var res barrier.Result
		def.Layers, res = barrier.Penetrate(def.Layers, barrier.Attack{
			Body:     body,
			Mental:   mental,
			Property: skill.Property,
			ATK:      atkValue,
			KereKere: att.Abilities.Get(model.AbilityKereKere),
		})
		body, mental, out.Broken = res.Body, res.Mental, res.Broken
	}

	tier := 1.0
	if p.HitTier {
		tier = in.Rules.tierMultiplier(in.Hit)
	}
	if p.BladeDeath {
		out.Blade = terminal.BladeCrit(att, def, skill, body.Total*tier, src)
	}
	body = body.Scale(tier)
	mental = mental.Scale(tier)
	out.Unshielded = unshielded.Scale(tier).ClampNonNegative()
	if out.Blade.Triggered {
		body = body.AddAbility(model.AbilityBlade, out.Blade.Deficit)
	}

	if p.Caps {
		body, out.Capped = in.Rules.applyCaps(body, def, skill)
	}

	out.Body = body.ClampNonNegative()
	out.Mental = mental.ClampNonNegative()

	slog.Debug("damage computed",
		"attacker", att.ID,
		"defender", def.ID,
		"skill", skill.ID,
		"hit", in.Hit,
		"body", out.Body.Total,
		"mental", out.Mental.Total,
		"familiarity", out.Familiarity)
	return out
}

// StyleDefense clamps DEF when the defender's posture does not match the
// incoming aim style. Power ≥ Medium keeps 0.7×DEF; below Medium the
// clamp is relaxed toward full DEF by the defender's transform progress.
func StyleDefense(def *model.Combatant, incoming model.AimStyle, defValue float64) float64 {
	if defstyle.Matches(def.DefenseStyle, incoming) {
		return defValue
	}
	clamped := defValue * mismatchDEF
	if def.Power >= model.PowerMedium {
		return clamped
	}
	return clamped + (defValue-clamped)*def.DefenseStyle.ProgressRatio()
}

// Frenzy is the consecutive-attack multiplier:
// 1 + 0.06 × index × clamp(EYE/AGI, 0.5, 2).
func Frenzy(skill *model.Skill, eye, agi float64) float64 {
	if !skill.IsConsecutive() || skill.ConsecutiveIndex <= 0 {
		return 1
	}
	gap := frenzyGapMax
	if agi > 0 {
		gap = clamp(eye/agi, frenzyGapMin, frenzyGapMax)
	}
	return 1 + frenzyPerIndex*float64(skill.ConsecutiveIndex)*gap
}

func (r Rules) tierMultiplier(res hit.Result) float64 {
	switch res {
	case hit.Graze:
		return r.GrazeMultiplier
	case hit.Critical:
		return r.CriticalMultiplier
	case hit.Hit:
		return 1
	}
	panic("damage: unhandled hit result " + res.String())
}

// applyCaps limits cannot-kill skills to HP−1 and TLOA skills to a share
// of max HP.
func (r Rules) applyCaps(body model.DamageBreakdown, def *model.Combatant, skill *model.Skill) (model.DamageBreakdown, bool) {
	limit := math.Inf(1)
	if skill.CannotKill {
		limit = math.Max(def.HP-1, 0)
	}
	if skill.TLOA {
		limit = math.Min(limit, def.MaxHP*r.TLOACap)
	}
	if body.Total <= limit {
		return body, false
	}
	return body.ScaleTo(limit), true
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

package combat

import (
	"context"
	"log/slog"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/barrier"
	"github.com/udisondev/battlecore/internal/game/damage"
	"github.com/udisondev/battlecore/internal/game/defstyle"
	"github.com/udisondev/battlecore/internal/game/hit"
	"github.com/udisondev/battlecore/internal/game/resonance"
	"github.com/udisondev/battlecore/internal/game/terminal"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// ProfileLookup resolves temperament profiles.
type ProfileLookup interface {
	Profile(t model.Temperament) *data.TemperamentProfile
}

// PassiveLookup resolves passive templates.
type PassiveLookup interface {
	Passive(id string) (*model.Passive, bool)
	IsBad(id string) bool
}

// Rules are the tunable constants of a battle.
type Rules struct {
	Damage damage.Rules
	// BrokenRate is OverKillBrokenRate: the share of max HP the overflow
	// must exceed for a victim to break.
	BrokenRate float64
	// CarryRate is the share of familiarity kept at battle end.
	CarryRate float64
	// DisturbedPassive is handed to the attacker's squad on a disturbed
	// attack. Empty disables the hook.
	DisturbedPassive string
}

// DefaultRules returns the standard battle constants.
func DefaultRules() Rules {
	return Rules{
		Damage:           damage.DefaultRules(),
		BrokenRate:       terminal.DefaultBrokenRate,
		CarryRate:        0.5,
		DisturbedPassive: "shaken",
	}
}

// Reaction is one defender reacting to one attacker's skill.
type Reaction struct {
	Attacker *model.Combatant
	Defender *model.Combatant
	Skill    *model.Skill
	Turn     int

	// Guard is a squadmate of the defender that rolls an assisted evade.
	Guard *model.Combatant
	// DefenderSquad receives pass-through passives.
	DefenderSquad []*model.Combatant
	// AttackerSquad receives the disturbed-attack passive.
	AttackerSquad []*model.Combatant
	// SkillCount is the number of skills the attacker carries.
	SkillCount int
}

// Outcome is everything a reaction produced.
type Outcome struct {
	AttackerID string
	DefenderID string
	SkillID    string

	Hit         hit.Result
	Interrupted bool
	Counter     bool

	Variance  float64
	Disturbed bool

	Body        model.DamageBreakdown
	Mental      model.DamageBreakdown
	Resonance   model.DamageBreakdown
	Familiarity float64

	BladeDeath    bool
	BladeSurvived bool
	Survived      bool
	Killed        bool
	Broken        bool
	Overflow      float64

	BrokenLayers   []string
	PostureChanged bool
	Effects        Effects
	Pending        *PendingSelection
}

// Manager runs reactions. A battle owns one Manager and drives it from a
// single goroutine; the RNG source is shared by every reaction so a seed
// reproduces the whole battle.
type Manager struct {
	profiles ProfileLookup
	passives PassiveLookup
	layers   barrier.VitalLayerLookup
	rules    Rules
	src      rng.Source

	// observer: callback для наблюдения за результатами реакций (nil в production).
	observer func(Outcome)

	// squadHook is called after the disturbed passive was handed out.
	squadHook func(attacker *model.Combatant, squad []*model.Combatant)
}

// NewManager creates a Manager. The registry usually serves all three
// lookups.
func NewManager(profiles ProfileLookup, passives PassiveLookup, layers barrier.VitalLayerLookup, rules Rules, src rng.Source) *Manager {
	return &Manager{
		profiles: profiles,
		passives: passives,
		layers:   layers,
		rules:    rules,
		src:      src,
	}
}

// SetObserver sets callback for observing reaction outcomes (for tests).
func (m *Manager) SetObserver(fn func(Outcome)) {
	m.observer = fn
}

// SetSquadHook sets the callback fired on a disturbed attack.
func (m *Manager) SetSquadHook(fn func(attacker *model.Combatant, squad []*model.Combatant)) {
	m.squadHook = fn
}

// Rules returns the manager's rules.
func (m *Manager) Rules() Rules {
	return m.rules
}

// React resolves one reaction.
//
// Workflow:
//  1. Interrupt counter (aborts the reaction on success)
//  2. Hit resolution, mixed with the guard's assisted evade
//  3. Base variance and the disturbed-attack hook
//  4. Damage pipeline
//  5. Resonance
//  6. Mutual-kill survival, HP application, overkill
//  7. Passive and layer effects, posture, records
func (m *Manager) React(ctx context.Context, r Reaction) Outcome {
	att, def, skill := r.Attacker, r.Defender, r.Skill
	out := Outcome{
		AttackerID:  att.ID,
		DefenderID:  def.ID,
		SkillID:     skill.ID,
		Familiarity: 1,
	}

	if ir := terminal.Interrupt(att, def, skill, m.src); ir.Triggered {
		out.Interrupted = true
		out.Counter = ir.Counter
		m.record(r, false)
		m.notify(out)
		return out
	}
	m.advanceSequence(att, skill)

	out.Hit = hit.Resolve(att, def, skill, m.src)
	if g := r.Guard; g != nil && g != def && !g.IsDead() {
		out.Hit = hit.Mix(out.Hit, hit.AllyRoll(att, g, skill, m.src), m.src)
	}

	out.Variance, out.Disturbed = damage.Variance(att.Power, m.src)
	if out.Disturbed {
		m.disturbed(att, r.AttackerSquad)
	}

	if !out.Hit.Landed() {
		m.record(r, false)
		m.notify(out)
		return out
	}

	defProfile := m.profiles.Profile(def.Temperament)
	dmg := damage.Compute(damage.Input{
		Attacker: att,
		Defender: def,
		Skill:    skill,
		Hit:      out.Hit,
		Variance: out.Variance,
		Policy:   damage.FullPolicy(),
		Rules:    m.rules.Damage,
		Profile:  defProfile,
		Turn:     r.Turn,
	}, m.src)
	out.Body, out.Mental = dmg.Body, dmg.Mental
	out.Familiarity = dmg.Familiarity
	out.BrokenLayers = dmg.Broken
	out.BladeDeath = dmg.Blade.Triggered
	out.BladeSurvived = dmg.Blade.Survived

	out.Resonance = resonance.Compute(resonance.Input{
		Attacker:   att,
		Defender:   def,
		Damage:     dmg.Unshielded,
		Profile:    defProfile,
		SkillCount: r.SkillCount,
	}, m.src)
	if dmg.Blade.Triggered {
		out.Resonance = out.Resonance.AddAbility(model.AbilityBlade, dmg.Blade.Deficit)
	}

	m.applyDamage(att, def, defProfile, &out)
	resonance.Apply(def, out.Resonance)

	out.Effects = m.applyEffects(att, def, skill)
	if skill.PassThroughPassive != "" {
		out.Pending = m.passThrough(def, skill, r.DefenderSquad, &out.Effects)
	}

	out.PostureChanged = defstyle.Observe(ctx, def, skill.AimStyle, skill.IsConsecutive())

	m.record(r, true)
	m.notify(out)

	slog.Debug("reaction resolved",
		"attacker", att.ID,
		"defender", def.ID,
		"skill", skill.ID,
		"hit", out.Hit,
		"body", out.Body.Total,
		"hp", def.HP,
		"killed", out.Killed)
	return out
}

// applyDamage applies body and mental damage with the terminal rules:
// a lethal hit that is not a blade instant death may be survived at 7%
// HP; a killing blow may break the victim.
func (m *Manager) applyDamage(att, def *model.Combatant, defProfile *data.TemperamentProfile, out *Outcome) {
	body := out.Body.Total
	hpBefore := def.HP

	if body >= hpBefore && !out.BladeDeath &&
		terminal.MutualKillSurvival(att, def, body, defProfile, m.src) {
		out.Survived = true
		def.SetHP(def.MaxHP * terminal.SurvivalSnapHPRatio)
	} else {
		def.ApplyDamage(body)
	}

	if out.BladeDeath && out.BladeSurvived {
		def.SetHP(1)
	}
	def.ApplyMentalDamage(out.Mental.Total)

	if def.IsDead() {
		out.Killed = true
		out.Overflow = body - hpBefore
		out.Broken = terminal.Overkill(terminal.OverkillInput{
			Attacker:   att,
			Victim:     def,
			Overflow:   out.Overflow,
			Profile:    m.profiles.Profile(att.Temperament),
			BrokenRate: m.rules.BrokenRate,
		}, m.src)
		def.Broken = out.Broken
		slog.Info("combatant died",
			"victim", def.ID,
			"killer", att.ID,
			"broken", out.Broken)
	}
}

// advanceSequence tracks the attacker's own consecutive attack.
func (m *Manager) advanceSequence(att *model.Combatant, skill *model.Skill) {
	if !skill.IsConsecutive() {
		att.Sequence = model.Sequence{}
		return
	}
	remaining := skill.ConsecutiveCount - 1 - skill.ConsecutiveIndex
	att.Sequence = model.Sequence{
		Active:    remaining > 0,
		SkillID:   skill.ID,
		Remaining: max(remaining, 0),
	}
}

// record appends the action record to both histories.
func (m *Manager) record(r Reaction, success bool) {
	rec := model.ActionRecord{
		Turn:       r.Turn,
		AttackerID: r.Attacker.ID,
		DefenderID: r.Defender.ID,
		SkillID:    r.Skill.ID,
		Impression: r.Skill.Impression,
		Divergent:  IsDivergent(r.Attacker, r.Skill),
		Success:    success,
	}
	r.Attacker.Record(rec)
	if r.Defender != r.Attacker {
		r.Defender.Record(rec)
	}
}

func (m *Manager) notify(out Outcome) {
	if m.observer != nil {
		m.observer(out)
	}
}

// EndAction closes the action of the given actors: per-action modifiers
// are dropped, leaving only those of active passives, and a sequence that
// was cut short stops being active.
func EndAction(cs ...*model.Combatant) {
	for _, c := range cs {
		c.RebuildModifiers()
		c.Sequence = model.Sequence{}
	}
}

// EndTurn counts one turn off the timed passives of the given combatants.
func EndTurn(cs ...*model.Combatant) {
	for _, c := range cs {
		if expired := c.TickPassives(); len(expired) > 0 {
			slog.Debug("passives expired", "combatant", c.ID, "passives", expired)
		}
	}
}

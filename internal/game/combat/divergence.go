package combat

import (
	"log/slog"

	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

const divergenceScale = 0.97

// impressionAbility is the ability a default impression trains.
var impressionAbility = map[model.Impression]model.Ability{
	model.ImpressionFlame:  model.AbilityFlame,
	model.ImpressionFrost:  model.AbilityFrost,
	model.ImpressionStorm:  model.AbilityThunder,
	model.ImpressionLight:  model.AbilityHoly,
	model.ImpressionShadow: model.AbilityDoom,
	model.ImpressionBeast:  model.AbilityBlade,
	model.ImpressionSteel:  model.AbilityHeavy,
	model.ImpressionMind:   model.AbilityDream,
}

// IsDivergent reports whether skill's impression differs from the
// attacker's default impression.
func IsDivergent(att *model.Combatant, skill *model.Skill) bool {
	return skill.Impression != model.ImpressionNone &&
		att.Impression != model.ImpressionNone &&
		skill.Impression != att.Impression
}

// DefaultAbility returns the ability tied to c's default impression, or
// its dominant ability when the impression trains none.
func DefaultAbility(c *model.Combatant) model.Ability {
	if a, ok := impressionAbility[c.Impression]; ok {
		return a
	}
	return c.Abilities.Dominant()
}

// ResolveDivergentSkillOutcome penalises c for skills it used against its
// default impression. Every divergent, not yet penalised record of c's own
// actions rolls the temperament's divergence chance; a success shrinks the
// default-impression ability by 3%. A temperament with 0% returns at once
// without touching c or drawing from src. It reports whether any ability
// changed.
func (m *Manager) ResolveDivergentSkillOutcome(c *model.Combatant, src rng.Source) bool {
	chance := rng.MustPercent(m.profiles.Profile(c.Temperament).DivergenceChance)
	if chance <= 0 {
		return false
	}

	ability := DefaultAbility(c)
	changed := false
	for i := range c.History {
		rec := &c.History[i]
		if rec.AttackerID != c.ID || !rec.Divergent || rec.Penalized {
			continue
		}
		rec.Penalized = true
		if rng.Roll(src, chance) {
			c.Abilities[ability] *= divergenceScale
			changed = true
		}
	}
	if changed {
		slog.Debug("divergence penalty",
			"combatant", c.ID,
			"ability", ability,
			"value", c.Abilities[ability])
	}
	return changed
}

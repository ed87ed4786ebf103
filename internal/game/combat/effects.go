package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/battlecore/internal/game/barrier"
	"github.com/udisondev/battlecore/internal/model"
)

// ErrInvalidSelection is returned when a pending selection is resolved with
// a target that was not offered.
var ErrInvalidSelection = errors.New("combat: target not among selection candidates")

// Effects lists the on-hit effects that were applied. A requested effect
// that could not apply is absent from the Added/Removed lists.
type Effects struct {
	PassivesAdded   []string
	PassivesRemoved []string
	// PassivesRefused were bad passives blocked by an immunity.
	PassivesRefused []string
	LayersAdded     []string
	LayersRemoved   []string
}

// PendingSelection is a pass-through passive waiting for the orchestrator
// to pick which squadmate receives it.
type PendingSelection struct {
	PassiveID  string
	SourceID   string
	Candidates []string
}

// applyEffects runs the skill's on-hit passive and layer edits on def.
func (m *Manager) applyEffects(att, def *model.Combatant, skill *model.Skill) Effects {
	var fx Effects
	for _, id := range skill.RemovePassives {
		if def.RemovePassive(id) {
			fx.PassivesRemoved = append(fx.PassivesRemoved, id)
		}
	}
	for _, id := range skill.AddPassives {
		switch m.applyPassive(def, id) {
		case passiveApplied:
			fx.PassivesAdded = append(fx.PassivesAdded, id)
		case passiveRefused:
			fx.PassivesRefused = append(fx.PassivesRefused, id)
		}
	}
	for _, id := range skill.RemoveLayers {
		if barrier.RemoveLayer(def, id) {
			fx.LayersRemoved = append(fx.LayersRemoved, id)
		}
	}
	for _, id := range skill.AddLayers {
		if barrier.AddLayer(m.layers, def, id) {
			fx.LayersAdded = append(fx.LayersAdded, id)
		}
	}
	if len(fx.PassivesAdded)+len(fx.PassivesRemoved)+len(fx.LayersAdded)+len(fx.LayersRemoved) > 0 {
		slog.Debug("on-hit effects applied",
			"attacker", att.ID,
			"defender", def.ID,
			"passives_added", fx.PassivesAdded,
			"passives_removed", fx.PassivesRemoved,
			"layers_added", fx.LayersAdded,
			"layers_removed", fx.LayersRemoved)
	}
	return fx
}

type passiveResult int8

const (
	passiveMissing passiveResult = iota
	passiveRefused
	passiveApplied
)

// applyPassive adds passive id to target. Bad passives are refused while
// the target holds an immunity.
func (m *Manager) applyPassive(target *model.Combatant, id string) passiveResult {
	p, ok := m.passives.Passive(id)
	if !ok {
		slog.Warn("passive template not found", "passive", id, "combatant", target.ID)
		return passiveMissing
	}
	if m.passives.IsBad(id) && target.HasImmunity() {
		return passiveRefused
	}
	target.AddPassive(p)
	return passiveApplied
}

// passThrough hands the skill's pass-through passive to a squadmate of def.
// A single candidate receives it at once; several produce a pending
// selection for the orchestrator.
func (m *Manager) passThrough(def *model.Combatant, skill *model.Skill, squad []*model.Combatant, fx *Effects) *PendingSelection {
	var candidates []*model.Combatant
	for _, c := range squad {
		if c != def && !c.IsDead() {
			candidates = append(candidates, c)
		}
	}
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		if m.applyPassive(candidates[0], skill.PassThroughPassive) == passiveApplied {
			fx.PassivesAdded = append(fx.PassivesAdded, skill.PassThroughPassive)
		}
		return nil
	}
	ps := &PendingSelection{PassiveID: skill.PassThroughPassive, SourceID: def.ID}
	for _, c := range candidates {
		ps.Candidates = append(ps.Candidates, c.ID)
	}
	return ps
}

// ResolveSelection completes a pending pass-through by giving the passive
// to target. It reports whether the passive was applied.
func (m *Manager) ResolveSelection(ps *PendingSelection, target *model.Combatant) (bool, error) {
	if ps == nil || !slices.Contains(ps.Candidates, target.ID) {
		return false, fmt.Errorf("resolve selection for %s: %w", target.ID, ErrInvalidSelection)
	}
	return m.applyPassive(target, ps.PassiveID) == passiveApplied, nil
}

// disturbed hands the disturbed-attack passive to the attacker's squad.
func (m *Manager) disturbed(att *model.Combatant, squad []*model.Combatant) {
	if id := m.rules.DisturbedPassive; id != "" {
		for _, c := range squad {
			if !c.IsDead() {
				m.applyPassive(c, id)
			}
		}
	}
	slog.Debug("disturbed attack", "attacker", att.ID, "squad", len(squad))
	if m.squadHook != nil {
		m.squadHook(att, squad)
	}
}

// Package aisim estimates skill damage for action scoring. It mirrors the
// damage pipeline without touching combatant state and without rolling.
package aisim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/battlecore/internal/game/barrier"
	"github.com/udisondev/battlecore/internal/game/damage"
	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/model"
)

const spiritualRate = 0.06

// Fidelity is how closely the estimate models the defender's DEF.
type Fidelity int8

const (
	// DefNone ignores DEF.
	DefNone Fidelity = iota
	// DefBasic uses base DEF.
	DefBasic
	// DefFull uses modified DEF with defense ignore and posture clamp.
	DefFull
)

// Policy selects the optional stages of an estimate.
type Policy struct {
	Spiritual      bool
	DEF            Fidelity
	PhysicalResist bool
	Barrier        bool
	// Mental returns the mental channel instead of body damage.
	Mental bool
}

// FullPolicy enables every stage.
func FullPolicy() Policy {
	return Policy{Spiritual: true, DEF: DefFull, PhysicalResist: true, Barrier: true}
}

// Estimate returns the expected damage of skill against def. Barrier layers
// are copied before penetration math runs; att and def are only read.
func Estimate(att, def *model.Combatant, skill *model.Skill, p Policy) float64 {
	atk := att.Stat(modifier.StatATK, def.ID)

	var defValue float64
	switch p.DEF {
	case DefNone:
	case DefBasic:
		defValue = def.Stats.DEF
	case DefFull:
		defValue = def.Stat(modifier.StatDEF, att.ID) * (1 - math.Max(0, math.Min(1, skill.DefenseIgnoreRatio)))
		defValue = damage.StyleDefense(def, skill.AimStyle, defValue)
	default:
		panic(fmt.Sprintf("aisim: unhandled DEF fidelity %d", p.DEF))
	}

	body := damage.Base(atk, defValue, skill.Power, skill.IsMagic, att.Abilities, skill.AbilityWeights).Total
	mental := 0.0
	if skill.MentalPower > 0 {
		mental = damage.Base(atk, defValue, skill.MentalPower, skill.IsMagic, att.Abilities, skill.AbilityWeights).Total
	}
	body = math.Max(body, 0)
	mental = math.Max(mental, 0)

	if p.Spiritual {
		f := math.Max(0, 1-def.Stats.SpiritualPotential*spiritualRate)
		body *= f
		mental *= f
	}
	if p.PhysicalResist {
		body *= def.PhysicalResistFor(skill.Property)
	}
	if p.Barrier && len(def.Layers) > 0 {
		body, mental = barrier.Simulate(def.Layers, body, mental, skill.Property,
			atk, att.Abilities.Get(model.AbilityKereKere))
	}

	if p.Mental {
		return mental
	}
	return body
}

// Score is the estimate of one candidate skill.
type Score struct {
	Skill  *model.Skill
	Damage float64
}

// Rank estimates every skill concurrently and returns the scores sorted by
// damage, highest first, ties by skill ID. The combatants must not be
// mutated while Rank runs.
func Rank(ctx context.Context, att, def *model.Combatant, skills []*model.Skill, p Policy) ([]Score, error) {
	scores := make([]Score, len(skills))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range skills {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = Score{Skill: s, Damage: Estimate(att, def, s, p)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank skills: %w", err)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Damage != scores[j].Damage {
			return scores[i].Damage > scores[j].Damage
		}
		return scores[i].Skill.ID < scores[j].Skill.ID
	})
	return scores, nil
}

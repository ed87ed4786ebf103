package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/aisim"
	"github.com/udisondev/battlecore/internal/game/combat"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// fighter is a combatant with the skills it carries.
type fighter struct {
	c      *model.Combatant
	skills []*model.Skill
	// recent holds the skill IDs of the latest actions, newest last.
	recent []string
}

type squad struct {
	id      string
	members []*fighter
}

func newSquad(roster *data.Roster, reg *data.Registry, sq data.Squad) (*squad, error) {
	s := &squad{id: sq.ID}
	for _, id := range sq.Members {
		c, skills, err := roster.Combatant(id, reg)
		if err != nil {
			return nil, fmt.Errorf("building %s of squad %s: %w", id, sq.ID, err)
		}
		s.members = append(s.members, &fighter{c: c, skills: skills})
	}
	return s, nil
}

func (s *squad) combatants() []*model.Combatant {
	cs := make([]*model.Combatant, len(s.members))
	for i, f := range s.members {
		cs[i] = f.c
	}
	return cs
}

func (s *squad) living() []*model.Combatant {
	var cs []*model.Combatant
	for _, f := range s.members {
		if !f.c.IsDead() {
			cs = append(cs, f.c)
		}
	}
	return cs
}

func (s *squad) wiped() bool {
	return len(s.living()) == 0
}

// weakest returns the living member with the lowest HP ratio.
func (s *squad) weakest() *fighter {
	var best *fighter
	for _, f := range s.members {
		if f.c.IsDead() {
			continue
		}
		if best == nil || f.c.HPRatio() < best.c.HPRatio() {
			best = f
		}
	}
	return best
}

// guardFor returns the first living squadmate of def.
func (s *squad) guardFor(def *fighter) *model.Combatant {
	for _, f := range s.members {
		if f != def && !f.c.IsDead() {
			return f.c
		}
	}
	return nil
}

// battleStats counts the reaction paths a battle went through.
type battleStats struct {
	interrupts int
	counters   int
	guarded    int
	pending    int
}

type battleResult struct {
	a, b    *squad
	summary model.BattleSummary
	stats   battleStats
}

// action is one fighter working through the hits of its chosen skill.
type action struct {
	actor  *fighter
	own    *squad
	foe    *squad
	skill  *model.Skill
	target *fighter
	next   int
	done   bool
}

func (a *action) hits() int {
	return max(a.skill.ConsecutiveCount, 1)
}

type battle struct {
	mgr    *combat.Manager
	res    *battleResult
	round  int
	active []*action
}

// runBattle fights squads a and b until one is wiped out or rounds run
// out. Every round each living fighter starts an action; the actions then
// advance one hit at a time in turn, so a fighter in the middle of a
// consecutive skill can be attacked and may interrupt.
func runBattle(ctx context.Context, mgr *combat.Manager, src rng.Source, a, b *squad, rounds int) (*battleResult, error) {
	res := &battleResult{a: a, b: b}
	bt := &battle{mgr: mgr, res: res}
	everyone := append(a.combatants(), b.combatants()...)

	for round := 1; round <= rounds; round++ {
		res.summary.Rounds = round
		bt.round = round
		if err := bt.playRound(ctx, a, b); err != nil {
			return res, err
		}
		for _, c := range everyone {
			mgr.ResolveDivergentSkillOutcome(c, src)
		}
		combat.EndTurn(everyone...)

		if a.wiped() || b.wiped() {
			break
		}
	}

	switch {
	case a.wiped() && !b.wiped():
		res.summary.WinnerID = b.id
	case b.wiped() && !a.wiped():
		res.summary.WinnerID = a.id
	}
	return res, nil
}

func (bt *battle) playRound(ctx context.Context, a, b *squad) error {
	bt.active = bt.active[:0]
	for i := range max(len(a.members), len(b.members)) {
		for _, side := range [2][2]*squad{{a, b}, {b, a}} {
			own, foe := side[0], side[1]
			if i >= len(own.members) || own.members[i].c.IsDead() {
				continue
			}
			act, err := plan(ctx, own.members[i], own, foe)
			if err != nil {
				return err
			}
			if act != nil {
				bt.active = append(bt.active, act)
			}
		}
	}

	for pending := true; pending; {
		pending = false
		for _, act := range bt.active {
			if act.done {
				continue
			}
			if err := bt.step(ctx, act); err != nil {
				return err
			}
			pending = pending || !act.done
		}
	}
	return nil
}

// plan picks the actor's skill and target. Skills are taken in damage
// order, skipping the ones used in the actor's latest actions so every
// skill comes around.
func plan(ctx context.Context, f *fighter, own, foe *squad) (*action, error) {
	target := foe.weakest()
	if target == nil {
		return nil, nil
	}
	skill, err := chooseSkill(ctx, f, target)
	if err != nil || skill == nil {
		return nil, err
	}
	return &action{actor: f, own: own, foe: foe, skill: skill, target: target}, nil
}

func chooseSkill(ctx context.Context, f *fighter, target *fighter) (*model.Skill, error) {
	scores, err := aisim.Rank(ctx, f.c, target.c, f.skills, aisim.FullPolicy())
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, nil
	}
	skill := scores[0].Skill
	for _, s := range scores {
		if !slices.Contains(f.recent, s.Skill.ID) {
			skill = s.Skill
			break
		}
	}
	f.recent = append(f.recent, skill.ID)
	if keep := len(f.skills) - 1; len(f.recent) > keep {
		f.recent = f.recent[len(f.recent)-keep:]
	}
	return skill, nil
}

// step resolves the next hit of act.
func (bt *battle) step(ctx context.Context, act *action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	att := act.actor
	if act.target == nil || act.target.c.IsDead() {
		act.target = act.foe.weakest()
	}
	if att.c.IsDead() || act.target == nil {
		bt.finish(act)
		return nil
	}

	def := act.target
	hitSkill := *act.skill
	hitSkill.ConsecutiveIndex = act.next
	r := combat.Reaction{
		Attacker:      att.c,
		Defender:      def.c,
		Skill:         &hitSkill,
		Turn:          bt.round,
		Guard:         act.foe.guardFor(def),
		DefenderSquad: act.foe.living(),
		AttackerSquad: act.own.living(),
		SkillCount:    len(att.skills),
	}
	if err := combat.ValidateReaction(r); err != nil {
		bt.finish(act)
		return nil
	}
	out := bt.react(ctx, r)
	act.next++

	if out.Pending != nil {
		bt.res.stats.pending++
		if mate := weakestOf(act.foe, out.Pending.Candidates); mate != nil {
			if _, err := bt.mgr.ResolveSelection(out.Pending, mate); err != nil {
				return err
			}
		}
	}
	if out.Counter && def.c.ReservedCounter {
		def.c.ReservedCounter = false
		if err := bt.counter(ctx, def, att, act); err != nil {
			return err
		}
	}
	if out.Interrupted || att.c.Sequence.Cancelled || act.next >= act.hits() {
		bt.finish(act)
	}
	return nil
}

func (bt *battle) react(ctx context.Context, r combat.Reaction) combat.Outcome {
	out := bt.mgr.React(ctx, r)
	s := &bt.res.stats
	bt.res.summary.Reactions++
	bt.res.summary.Broken = bt.res.summary.Broken || out.Broken
	if out.Interrupted {
		s.interrupts++
	}
	if r.Guard != nil {
		s.guarded++
	}
	return out
}

// counter lets def answer att at once with a single hit of its best skill.
// The counter spends def's own action for the round.
func (bt *battle) counter(ctx context.Context, def, att *fighter, cause *action) error {
	bt.res.stats.counters++
	for _, other := range bt.active {
		if other.actor == def && !other.done {
			bt.finish(other)
		}
	}
	if att.c.IsDead() || def.c.IsDead() {
		return nil
	}
	skill, err := chooseSkill(ctx, def, att)
	if err != nil || skill == nil {
		return err
	}
	single := *skill
	single.ConsecutiveCount = 1
	single.ConsecutiveIndex = 0
	r := combat.Reaction{
		Attacker:      def.c,
		Defender:      att.c,
		Skill:         &single,
		Turn:          bt.round,
		Guard:         cause.own.guardFor(att),
		DefenderSquad: cause.own.living(),
		AttackerSquad: cause.foe.living(),
		SkillCount:    len(def.skills),
	}
	if err := combat.ValidateReaction(r); err != nil {
		return nil
	}
	bt.react(ctx, r)
	combat.EndAction(def.c)
	return nil
}

func (bt *battle) finish(act *action) {
	act.done = true
	combat.EndAction(act.actor.c)
}

// weakestOf returns the candidate of s with the lowest HP ratio.
func weakestOf(s *squad, candidates []string) *model.Combatant {
	var best *model.Combatant
	for _, f := range s.members {
		if !slices.Contains(candidates, f.c.ID) {
			continue
		}
		if best == nil || f.c.HPRatio() < best.HPRatio() {
			best = f.c
		}
	}
	return best
}

package combat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/hit"
	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

func registry(t *testing.T) *data.Registry {
	t.Helper()
	reg, err := data.Load()
	require.NoError(t, err)
	return reg
}

func newManager(t *testing.T, src rng.Source) *Manager {
	t.Helper()
	reg := registry(t)
	return NewManager(reg, reg, reg, DefaultRules(), src)
}

// duel returns an attacker whose power-2 skill deals exactly 50 and lands
// as a plain Hit under Const(0.3).
func duel() (*model.Combatant, *model.Combatant) {
	a := model.NewCombatant("a", "attacker", 100, 100)
	a.Stats.ATK = 25
	a.Stats.EYE = 50
	a.Vanguard = true
	a.Power = model.PowerLowest

	d := model.NewCombatant("d", "defender", 100, 100)
	d.Stats.DEF = 1
	d.Stats.AGI = 50
	return a, d
}

func bash() *model.Skill {
	return &model.Skill{ID: "bash", Power: 2}
}

func TestReact_BarrierScenario(t *testing.T) {
	mgr := newManager(t, rng.Const(0.3))
	a, d := duel()
	d.Layers = []*model.BarrierLayer{{ID: "wall", HP: 30, MaxHP: 30, Mode: model.ResistA}}

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash(), Turn: 1})

	assert.Equal(t, hit.Hit, out.Hit)
	assert.Equal(t, []string{"wall"}, out.BrokenLayers)
	assert.Empty(t, d.Layers)
	assert.InDelta(t, 20.0, out.Body.Total, 1e-9)
	assert.InDelta(t, 80.0, d.HP, 1e-9)
	assert.False(t, out.Killed)

	require.Len(t, a.History, 1)
	require.Len(t, d.History, 1)
	assert.Equal(t, model.ActionRecord{Turn: 1, AttackerID: "a", DefenderID: "d", SkillID: "bash", Success: true}, a.History[0])
}

func TestReact_ResonanceIgnoresBarriers(t *testing.T) {
	react := func(layers ...*model.BarrierLayer) Outcome {
		mgr := newManager(t, rng.Const(0.3))
		a, d := duel()
		a.Abilities[model.AbilityFlame] = 100
		d.MaxHP = 200
		d.HP, d.MentalHP = 120, 120
		d.Layers = layers
		skill := bash()
		skill.AbilityWeights[model.AbilityFlame] = 1
		return mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: skill})
	}

	open := react()
	shielded := react(&model.BarrierLayer{ID: "bulwark", HP: 1000, MaxHP: 1000, Mode: model.ResistA})

	require.Equal(t, hit.Hit, open.Hit)
	require.Equal(t, hit.Hit, shielded.Hit)
	assert.Positive(t, open.Body.Total)
	assert.Zero(t, shielded.Body.Total, "the layer absorbs the whole body hit")
	assert.Positive(t, open.Resonance.Total)
	assert.InDelta(t, open.Resonance.Total, shielded.Resonance.Total, 1e-9)
}

func TestReact_CompleteEvade(t *testing.T) {
	mgr := newManager(t, rng.Const(0.3))
	a, d := duel()
	d.Stats.AGI = 1e9

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash()})
	assert.Equal(t, hit.CompleteEvade, out.Hit)
	assert.Zero(t, out.Body.Total)
	assert.Equal(t, 100.0, d.HP)
	require.Len(t, d.History, 1)
	assert.False(t, d.History[0].Success)
}

func TestReact_Interrupt(t *testing.T) {
	mgr := newManager(t, rng.Const(0))
	a, d := duel()
	a.Sequence = model.Sequence{Active: true, SkillID: "bash", Remaining: 2}
	d.Power = model.PowerMedium
	d.Sequence = model.Sequence{Active: true, SkillID: "piston", Remaining: 1}

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash()})
	assert.True(t, out.Interrupted)
	assert.True(t, out.Counter)
	assert.True(t, d.ReservedCounter)
	assert.True(t, a.Sequence.ActivelyCancelled)
	assert.Equal(t, 100.0, d.HP, "interrupted reaction deals nothing")
	require.Len(t, a.History, 1)
	assert.False(t, a.History[0].Success)
}

func TestReact_GuardAssistedEvade(t *testing.T) {
	mgr := newManager(t, rng.Const(0.3))
	a, d := duel()
	guard := model.NewCombatant("g", "guard", 100, 100)
	guard.Stats.AGI = 1e9

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash(), Guard: guard})
	assert.Equal(t, hit.Graze, out.Hit)
	assert.InDelta(t, 25.0, out.Body.Total, 1e-9)
}

func TestReact_MutualKillSurvival(t *testing.T) {
	tests := []struct {
		name     string
		roll     float64
		survived bool
	}{
		{name: "survives", roll: 0, survived: true},
		{name: "dies", roll: 0.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newManager(t, rng.NewSequence(0.3, 0.3, tt.roll))
			a, d := duel()
			d.HP = 50

			out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash()})
			assert.Equal(t, tt.survived, out.Survived)
			assert.Equal(t, !tt.survived, out.Killed)
			if tt.survived {
				assert.InDelta(t, 7.0, d.HP, 1e-9)
			} else {
				assert.Zero(t, d.HP)
				assert.False(t, out.Broken, "no overflow, no break")
			}
		})
	}
}

func TestReact_OverkillBreaksMachine(t *testing.T) {
	mgr := newManager(t, rng.Const(0))
	a, d := duel()
	a.Stats.ATK = 200
	a.Stats.OverkillCap = 100
	d.Stats.DEF = 0
	d.Kind = model.KindMachine

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash()})
	require.True(t, out.Killed)
	assert.Equal(t, hit.Hit, out.Hit)
	assert.InDelta(t, 402-100, out.Overflow, 1e-9)
	assert.True(t, out.Broken)
	assert.True(t, d.Broken)
}

func TestReact_PassiveAndLayerEffects(t *testing.T) {
	reg := registry(t)
	skill := &model.Skill{
		ID:             "hex",
		Power:          1,
		AddPassives:    []string{"bleeding", "unknown"},
		RemovePassives: []string{"guard_stance"},
		AddLayers:      []string{"stone_wall"},
		RemoveLayers:   []string{"mirror_veil"},
	}

	t.Run("applied", func(t *testing.T) {
		mgr := NewManager(reg, reg, reg, DefaultRules(), rng.Const(0.3))
		a, d := duel()
		guard, _ := reg.Passive("guard_stance")
		d.AddPassive(guard)
		veil, _ := reg.Layer("mirror_veil")
		d.Layers = append(d.Layers, veil)
		// the veil absorbs the hit first
		d.Layers[0].HP = 1000

		out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: skill})
		assert.Equal(t, []string{"bleeding"}, out.Effects.PassivesAdded)
		assert.Equal(t, []string{"guard_stance"}, out.Effects.PassivesRemoved)
		assert.Equal(t, []string{"mirror_veil"}, out.Effects.LayersRemoved)
		assert.Equal(t, []string{"stone_wall"}, out.Effects.LayersAdded)
		assert.True(t, d.HasPassive("bleeding"))
		require.Len(t, d.Layers, 1)
		assert.Equal(t, "stone_wall", d.Layers[0].ID)
	})

	t.Run("immunity refuses bad passives", func(t *testing.T) {
		mgr := NewManager(reg, reg, reg, DefaultRules(), rng.Const(0.3))
		a, d := duel()
		immune, _ := reg.Passive("clear_mind")
		d.AddPassive(immune)

		out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: skill})
		assert.Empty(t, out.Effects.PassivesAdded)
		assert.Equal(t, []string{"bleeding"}, out.Effects.PassivesRefused)
		assert.False(t, d.HasPassive("bleeding"))
	})
}

func TestReact_PassThroughSelection(t *testing.T) {
	skill := &model.Skill{ID: "rally_call", Power: 1, PassThroughPassive: "rally"}

	t.Run("single squadmate receives it at once", func(t *testing.T) {
		mgr := newManager(t, rng.Const(0.3))
		a, d := duel()
		mate := model.NewCombatant("m1", "m1", 100, 100)

		out := mgr.React(context.Background(), Reaction{
			Attacker: a, Defender: d, Skill: skill,
			DefenderSquad: []*model.Combatant{d, mate},
		})
		assert.Nil(t, out.Pending)
		assert.True(t, mate.HasPassive("rally"))
	})

	t.Run("several squadmates need a selection", func(t *testing.T) {
		mgr := newManager(t, rng.Const(0.3))
		a, d := duel()
		m1 := model.NewCombatant("m1", "m1", 100, 100)
		m2 := model.NewCombatant("m2", "m2", 100, 100)
		dead := model.NewCombatant("m3", "m3", 100, 100)
		dead.HP = 0

		out := mgr.React(context.Background(), Reaction{
			Attacker: a, Defender: d, Skill: skill,
			DefenderSquad: []*model.Combatant{d, m1, m2, dead},
		})
		require.NotNil(t, out.Pending)
		assert.Equal(t, []string{"m1", "m2"}, out.Pending.Candidates)
		assert.Equal(t, "d", out.Pending.SourceID)

		_, err := mgr.ResolveSelection(out.Pending, dead)
		require.ErrorIs(t, err, ErrInvalidSelection)

		ok, err := mgr.ResolveSelection(out.Pending, m2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, m2.HasPassive("rally"))
		assert.False(t, m1.HasPassive("rally"))
	})
}

func TestReact_DisturbedAttack(t *testing.T) {
	mgr := newManager(t, rng.Const(0))
	a, d := duel()
	a.Power = model.PowerMedium
	mate := model.NewCombatant("m", "mate", 100, 100)

	var hooked []*model.Combatant
	mgr.SetSquadHook(func(_ *model.Combatant, squad []*model.Combatant) { hooked = squad })

	out := mgr.React(context.Background(), Reaction{
		Attacker: a, Defender: d, Skill: bash(),
		AttackerSquad: []*model.Combatant{a, mate},
	})
	assert.True(t, out.Disturbed)
	assert.InDelta(t, -0.22, out.Variance, 1e-12)
	assert.True(t, a.HasPassive("shaken"))
	assert.True(t, mate.HasPassive("shaken"))
	assert.Len(t, hooked, 2)
}

func TestReact_SequenceAndPosture(t *testing.T) {
	mgr := newManager(t, rng.Const(0.3))
	a, d := duel()
	piston := &model.Skill{ID: "piston", Power: 1, AimStyle: model.AimMelee, ConsecutiveCount: 3}

	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: piston})
	assert.Equal(t, model.Sequence{Active: true, SkillID: "piston", Remaining: 2}, a.Sequence)
	assert.True(t, out.PostureChanged, "first aimed hit sets the posture")
	assert.Equal(t, model.AimMelee, d.DefenseStyle.Posture)

	mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: bash()})
	assert.Equal(t, model.Sequence{}, a.Sequence)
}

func TestReact_DivergentRecord(t *testing.T) {
	mgr := newManager(t, rng.Const(0.3))
	a, d := duel()
	a.Impression = model.ImpressionFlame
	frost := &model.Skill{ID: "frost_needle", Power: 1, Impression: model.ImpressionFrost}

	mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: frost, Turn: 3})
	require.Len(t, a.History, 1)
	assert.True(t, a.History[0].Divergent)
	assert.Equal(t, model.ImpressionFrost, a.History[0].Impression)
}

func TestReactUntilLanded(t *testing.T) {
	mgr := newManager(t, rng.New(5))
	a, d := duel()
	a.Vanguard = false

	out, attempts := ReactUntilLanded(context.Background(), mgr, Reaction{Attacker: a, Defender: d, Skill: bash()}, 50)
	require.True(t, out.Hit.Landed(), "no hit landed in %d attempts", attempts)
	assert.LessOrEqual(t, attempts, 50)

	killer := newManager(t, rng.New(6))
	a2, d2 := duel()
	n := ReactUntilDead(context.Background(), killer, Reaction{Attacker: a2, Defender: d2, Skill: bash()}, d2, 100)
	assert.True(t, d2.IsDead(), "defender still alive after %d attempts", n)
}

func TestEndAction(t *testing.T) {
	reg := registry(t)
	a, d := duel()
	rally, _ := reg.Passive("rally")
	a.AddPassive(rally)

	guard := modifier.Modifier{Stat: modifier.StatDEF, Type: modifier.Add, Value: 5, Source: "guard"}
	a.Mods.Push(guard)
	d.Mods.Push(guard)
	a.Sequence = model.Sequence{SkillID: "piston", Remaining: 1, Cancelled: true, ActivelyCancelled: true}
	EndAction(a, d)
	assert.Equal(t, 1, a.Mods.Len(), "passive modifiers survive the action")
	assert.Zero(t, d.Mods.Len())
	assert.InDelta(t, 27.5, a.Stat(modifier.StatATK, d.ID), 1e-9)
	assert.Equal(t, model.Sequence{}, a.Sequence)
}

func TestReact_PassiveModifiers(t *testing.T) {
	reg := registry(t)
	mgr := NewManager(reg, reg, reg, DefaultRules(), rng.Const(0.3))
	a, d := duel()
	rally, _ := reg.Passive("rally")
	a.AddPassive(rally)

	skill := bash()
	skill.AddPassives = []string{"bleeding"}
	out := mgr.React(context.Background(), Reaction{Attacker: a, Defender: d, Skill: skill})
	require.Equal(t, hit.Hit, out.Hit)
	assert.InDelta(t, 55.0, out.Body.Total, 1e-9, "rally raises ATK by 10%")
	assert.InDelta(t, 45.0, d.Stat(modifier.StatAGI, a.ID), 1e-9, "bleeding slows the defender")

	EndTurn(a, d)
	assert.False(t, a.HasPassive("rally"))
	assert.InDelta(t, 25.0, a.Stat(modifier.StatATK, d.ID), 1e-9)
	assert.True(t, d.HasPassive("bleeding"))
	assert.Equal(t, 2, d.Passives[0].Turns)
}

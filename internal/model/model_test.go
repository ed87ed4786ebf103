package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/battlecore/internal/game/modifier"
)

func TestAbilityVector_Arithmetic(t *testing.T) {
	var a, b AbilityVector
	a[AbilityBlade] = 3
	a[AbilityFrost] = 1
	b[AbilityBlade] = 1
	b[AbilityDream] = 2

	assert.Equal(t, 4.0, a.Total())
	assert.Equal(t, 4.0, a.Add(b).Get(AbilityBlade))
	assert.Equal(t, 2.0, a.Sub(b).Get(AbilityBlade))
	assert.Equal(t, 8.0, a.Scale(2).Total())
	assert.Equal(t, 0.0, a.Get(Ability(99)), "out-of-range keys read as zero")
	assert.Equal(t, AbilityBlade, a.Dominant())
	assert.Equal(t, AbilityDream, b.Scale(-1).Add(b).Add(b).Dominant())
}

func TestParseAbility(t *testing.T) {
	for i := Ability(0); i < AbilityCount; i++ {
		got, err := ParseAbility(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	_, err := ParseAbility("nope")
	assert.Error(t, err)
}

func TestDamageBreakdown(t *testing.T) {
	var parts AbilityVector
	parts[AbilityHeavy] = 10
	d := NewBreakdown(40, parts)
	assert.Equal(t, 50.0, d.Total)
	assert.Equal(t, 10.0, d.AbilitySum())

	d = d.AddAbility(AbilityBlade, 5)
	assert.Equal(t, 55.0, d.Total)
	assert.Equal(t, 5.0, d.Abilities.Get(AbilityBlade))

	half := d.Scale(0.5)
	assert.InDelta(t, 27.5, half.Total, 1e-9)
	assert.InDelta(t, 5.0, half.Abilities.Get(AbilityHeavy), 1e-9)

	neg := NewBreakdown(-30, parts).ClampNonNegative()
	assert.Equal(t, 0.0, neg.Total)
	assert.Zero(t, neg.AbilitySum(), "a clamped hit carries no ability parts")

	shrunk := NewBreakdown(-5, parts).ClampNonNegative()
	assert.InDelta(t, 5.0, shrunk.Total, 1e-9)
	assert.InDelta(t, 5.0, shrunk.AbilitySum(), 1e-9)

	scaled := NewBreakdown(40, parts).ScaleTo(25)
	assert.InDelta(t, 25.0, scaled.Total, 1e-9)
	assert.InDelta(t, 5.0, scaled.Abilities.Get(AbilityHeavy), 1e-9)
}

func TestCombatant_DamageClamps(t *testing.T) {
	c := NewCombatant("c1", "Tester", 100, 50)
	c.ApplyDamage(30)
	assert.Equal(t, 70.0, c.HP)

	c.ApplyDamage(-500)
	assert.Equal(t, 100.0, c.HP, "healing past max is clamped")

	c.HPFloor = 1
	c.ApplyDamage(1000)
	assert.Equal(t, 1.0, c.HP, "species floor holds")

	c.ApplyMentalDamage(80)
	assert.Equal(t, 0.0, c.MentalHP)
}

func TestCombatant_Passives(t *testing.T) {
	c := NewCombatant("c1", "Tester", 100, 50)
	c.AddPassive(&Passive{ID: "guard", FlatReduction: 3})
	c.AddPassive(&Passive{ID: "ward", FlatReduction: 2, Immunity: true})
	c.AddPassive(&Passive{ID: "guard", FlatReduction: 4})

	assert.Len(t, c.Passives, 2)
	assert.Equal(t, 6.0, c.FlatReduction())
	assert.True(t, c.HasImmunity())
	assert.True(t, c.RemovePassive("ward"))
	assert.False(t, c.RemovePassive("ward"))
	assert.False(t, c.HasImmunity())
}

func TestCombatant_StatUsesModifiers(t *testing.T) {
	c := NewCombatant("c1", "Tester", 100, 50)
	c.Stats.ATK = 20
	c.Mods.Push(modifier.Modifier{Stat: modifier.StatATK, Type: modifier.Mul, Value: 1.5})
	assert.Equal(t, 30.0, c.Stat(modifier.StatATK, ""))
}

func TestCombatant_PassiveModifiers(t *testing.T) {
	c := NewCombatant("c1", "Tester", 100, 50)
	c.Stats.ATK = 20
	c.Stats.EYE = 30
	rally := &Passive{ID: "rally", Turns: 1, Modifiers: []modifier.Modifier{{Stat: modifier.StatATK, Type: modifier.Mul, Value: 1.5}}}
	shaken := &Passive{ID: "shaken", Turns: 2, Modifiers: []modifier.Modifier{{Stat: modifier.StatEYE, Type: modifier.Add, Value: -6}}}

	c.AddPassive(rally)
	c.AddPassive(shaken)
	c.AddPassive(rally)
	assert.Equal(t, 2, c.Mods.Len(), "re-adding a passive replaces its modifiers")
	assert.Equal(t, 30.0, c.Stat(modifier.StatATK, ""))
	assert.Equal(t, 24.0, c.Stat(modifier.StatEYE, ""))

	c.Mods.Push(modifier.Modifier{Stat: modifier.StatATK, Type: modifier.Add, Value: 100, Source: "skill"})
	c.RebuildModifiers()
	assert.Equal(t, 30.0, c.Stat(modifier.StatATK, ""), "rebuild keeps only passive modifiers")

	assert.Equal(t, []string{"rally"}, c.TickPassives())
	assert.Equal(t, 20.0, c.Stat(modifier.StatATK, ""))
	assert.Equal(t, 24.0, c.Stat(modifier.StatEYE, ""))
	require.Len(t, c.Passives, 1)
	assert.Equal(t, 1, c.Passives[0].Turns)

	assert.Equal(t, []string{"shaken"}, c.TickPassives())
	assert.Empty(t, c.Passives)
	assert.Equal(t, 30.0, c.Stat(modifier.StatEYE, ""))

	c.AddPassive(&Passive{ID: "iron_skin", FlatReduction: 8})
	assert.Empty(t, c.TickPassives(), "permanent passives never expire")
	assert.True(t, c.HasPassive("iron_skin"))

	c.AddPassive(shaken)
	assert.True(t, c.RemovePassive("shaken"))
	assert.Equal(t, 30.0, c.Stat(modifier.StatEYE, ""))
}

func TestDefenseStyleMemory_ProgressRatio(t *testing.T) {
	m := DefenseStyleMemory{Posture: AimMelee, Toward: AimRanged, Progress: 2, Threshold: 4}
	assert.Equal(t, 0.5, m.ProgressRatio())
	m.Toward = AimNone
	assert.Equal(t, 0.0, m.ProgressRatio())
}

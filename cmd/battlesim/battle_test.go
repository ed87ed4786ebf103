package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/battlecore/internal/config"
	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/combat"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

func loadTables(t *testing.T) (*data.Registry, *data.Roster) {
	t.Helper()
	reg, err := data.Load()
	require.NoError(t, err)
	roster, err := data.LoadRoster()
	require.NoError(t, err)
	return reg, roster
}

func squadsFor(t *testing.T, reg *data.Registry, roster *data.Roster, aID, bID string) (*squad, *squad) {
	t.Helper()
	var a, b *squad
	for _, sq := range roster.Squads() {
		s, err := newSquad(roster, reg, sq)
		require.NoError(t, err)
		switch sq.ID {
		case aID:
			a = s
		case bID:
			b = s
		}
	}
	require.NotNil(t, a, aID)
	require.NotNil(t, b, bID)
	return a, b
}

func battleFor(t *testing.T, seed uint64, aID, bID string, rounds int) *battleResult {
	t.Helper()
	reg, roster := loadTables(t)
	a, b := squadsFor(t, reg, roster, aID, bID)

	src := rng.New(seed)
	mgr := combat.NewManager(reg, reg, reg, combatRules(config.DefaultRules()), src)
	res, err := runBattle(context.Background(), mgr, src, a, b, rounds)
	require.NoError(t, err)
	return res
}

func passiveModifiers(c *model.Combatant) int {
	n := 0
	for _, p := range c.Passives {
		n += len(p.Modifiers)
	}
	return n
}

func TestRunBattle_Reproducible(t *testing.T) {
	first := battleFor(t, 7, "order", "foundry", 30)
	second := battleFor(t, 7, "order", "foundry", 30)

	assert.Equal(t, first.summary, second.summary)
	assert.Equal(t, first.stats, second.stats)
	for i := range first.a.members {
		assert.Equal(t, first.a.members[i].c.HP, second.a.members[i].c.HP)
		assert.Equal(t, first.b.members[i].c.HP, second.b.members[i].c.HP)
	}
	assert.Positive(t, first.summary.Reactions)
}

func TestRunBattle_Invariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		res := battleFor(t, seed, "pack", "foundry", 40)
		for _, c := range append(res.a.combatants(), res.b.combatants()...) {
			require.GreaterOrEqual(t, c.HP, c.HPFloor, "seed %d: %s", seed, c.ID)
			require.LessOrEqual(t, c.HP, c.MaxHP, "seed %d: %s", seed, c.ID)
			require.Equal(t, passiveModifiers(c), c.Mods.Len(), "seed %d: %s keeps only passive modifiers", seed, c.ID)
			require.Equal(t, model.Sequence{}, c.Sequence, "seed %d: %s sequence closed with its action", seed, c.ID)
		}
		if res.summary.WinnerID != "" {
			assert.False(t, res.a.wiped() && res.b.wiped())
			assert.Contains(t, []string{"pack", "foundry"}, res.summary.WinnerID)
		}
		assert.LessOrEqual(t, res.summary.Rounds, 40)
	}
}

func TestRunBattle_ReachesEveryReactionPath(t *testing.T) {
	var total battleStats
	pairs := [][2]string{{"order", "foundry"}, {"order", "pack"}, {"pack", "foundry"}}
	for seed := uint64(1); seed <= 30; seed++ {
		for _, p := range pairs {
			s := battleFor(t, seed, p[0], p[1], 40).stats
			total.interrupts += s.interrupts
			total.counters += s.counters
			total.guarded += s.guarded
		}
	}
	assert.Positive(t, total.interrupts, "interleaved hits let a defender cut in")
	assert.Positive(t, total.counters, "life defenders answer an interrupt")
	assert.Positive(t, total.guarded, "squadmates roll assisted evades")
}

func TestRunBattle_Cancelled(t *testing.T) {
	reg, roster := loadTables(t)
	a, b := squadsFor(t, reg, roster, "order", "pack")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := rng.New(1)
	mgr := combat.NewManager(reg, reg, reg, combat.DefaultRules(), src)
	_, err := runBattle(ctx, mgr, src, a, b, 5)
	require.ErrorIs(t, err, context.Canceled)
}

func TestChooseSkill_Rotates(t *testing.T) {
	reg, roster := loadTables(t)
	a, b := squadsFor(t, reg, roster, "order", "foundry")
	knight, golem := a.members[0], b.members[0]

	seen := make(map[string]int)
	for range 6 {
		s, err := chooseSkill(context.Background(), knight, golem)
		require.NoError(t, err)
		seen[s.ID]++
	}
	assert.Equal(t, map[string]int{"cleave": 2, "shield_bash": 2, "twin_slash": 2}, seen)
}

func TestSquad_Helpers(t *testing.T) {
	reg, roster := loadTables(t)
	a, _ := squadsFor(t, reg, roster, "order", "foundry")
	knight, seer := a.members[0], a.members[1]

	assert.Equal(t, seer.c, a.guardFor(knight))
	seer.c.HP = 10
	assert.Equal(t, seer, a.weakest())
	assert.Equal(t, seer.c, weakestOf(a, []string{"seer", "knight"}))
	assert.Equal(t, knight.c, weakestOf(a, []string{"knight"}))

	seer.c.HP = 0
	assert.Nil(t, a.guardFor(knight))
	assert.Equal(t, []*model.Combatant{knight.c}, a.living())
	assert.False(t, a.wiped())
	knight.c.HP = 0
	assert.True(t, a.wiped())
	assert.Nil(t, a.weakest())
}

func TestPairings(t *testing.T) {
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, pairings([]string{"a", "b", "c"}))
	assert.Empty(t, pairings([]string{"solo"}))
}

func TestCombatRules(t *testing.T) {
	assert.Equal(t, combat.DefaultRules(), combatRules(config.DefaultRules()))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := openStore(ctx, config.Storage{Driver: config.DriverNone})
	require.NoError(t, err)
	assert.Nil(t, s)
	closeFn()

	s, closeFn, err = openStore(ctx, config.Storage{Driver: config.DriverSQLite, SQLitePath: t.TempDir() + "/b.db"})
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NoError(t, s.RecordBattle(ctx, model.BattleSummary{ID: "x", Rounds: 1}))
	closeFn()

	_, _, err = openStore(ctx, config.Storage{Driver: "mysql"})
	require.Error(t, err)
}

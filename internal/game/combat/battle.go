package combat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/battlecore/internal/game/adapt"
	"github.com/udisondev/battlecore/internal/model"
)

// FamiliarityStore persists the familiarity a combatant carries between
// battles.
type FamiliarityStore interface {
	LoadFamiliarity(ctx context.Context, combatantID string) (map[model.Impression]float64, error)
	SaveFamiliarity(ctx context.Context, combatantID string, values map[model.Impression]float64) error
}

// BeginBattle seeds every combatant's memory from store. A nil store is
// allowed and loads nothing.
func BeginBattle(ctx context.Context, store FamiliarityStore, combatants ...*model.Combatant) error {
	if store == nil {
		return nil
	}
	for _, c := range combatants {
		values, err := store.LoadFamiliarity(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load familiarity of %s: %w", c.ID, err)
		}
		if c.Adaptation == nil {
			c.Adaptation = model.NewAdaptationMemory()
		}
		adapt.Restore(c.Adaptation, values)
	}
	return nil
}

// EndBattle carries each combatant's familiarity into its persistent
// dictionary at the manager's carry rate, clears battle-only state and
// saves the result to store when one is given.
func (m *Manager) EndBattle(ctx context.Context, store FamiliarityStore, combatants ...*model.Combatant) error {
	for _, c := range combatants {
		carried := adapt.Carry(c.Adaptation, m.rules.CarryRate)
		c.Sequence = model.Sequence{}
		c.ReservedCounter = false
		c.DefenseStyle.Toward = model.AimNone
		c.DefenseStyle.Progress = 0
		c.RebuildModifiers()

		if store == nil {
			continue
		}
		if err := store.SaveFamiliarity(ctx, c.ID, carried); err != nil {
			return fmt.Errorf("save familiarity of %s: %w", c.ID, err)
		}
		slog.Debug("familiarity carried", "combatant", c.ID, "impressions", len(carried))
	}
	return nil
}

package main

import (
	"github.com/udisondev/battlecore/internal/config"
	"github.com/udisondev/battlecore/internal/game/adapt"
	"github.com/udisondev/battlecore/internal/game/combat"
	"github.com/udisondev/battlecore/internal/game/damage"
)

// combatRules maps configured rules onto the battle constants.
func combatRules(r config.Rules) combat.Rules {
	return combat.Rules{
		Damage: damage.Rules{
			GrazeMultiplier:    r.GrazeMultiplier,
			CriticalMultiplier: r.CriticalMultiplier,
			TLOACap:            r.TLOACap,
			Adapt:              adapt.Params{BaseAdaptValue: r.BaseAdaptValue},
		},
		BrokenRate:       r.OverkillBrokenRate,
		CarryRate:        r.AdaptationCarryRate,
		DisturbedPassive: r.DisturbedPassive,
	}
}

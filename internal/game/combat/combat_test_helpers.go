package combat

import (
	"context"

	"github.com/udisondev/battlecore/internal/model"
)

// ReactUntilLanded повторяет реакцию до первого попадания.
// Возвращает Outcome и число попыток.
func ReactUntilLanded(ctx context.Context, mgr *Manager, r Reaction, maxAttempts int) (Outcome, int) {
	var last Outcome
	mgr.SetObserver(func(o Outcome) { last = o })
	defer mgr.SetObserver(nil)

	for attempt := range maxAttempts {
		mgr.React(ctx, r)
		if last.Hit.Landed() && !last.Interrupted {
			return last, attempt + 1
		}
	}
	return last, maxAttempts
}

// ReactUntilDead повторяет реакцию до смерти защитника.
// Возвращает число попыток.
func ReactUntilDead(ctx context.Context, mgr *Manager, r Reaction, defender *model.Combatant, maxAttempts int) int {
	for attempt := range maxAttempts {
		if defender.IsDead() {
			return attempt
		}
		mgr.React(ctx, r)
	}
	return maxAttempts
}

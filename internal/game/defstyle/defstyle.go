// Package defstyle tracks which aim style a defender is postured against and
// how repeated mismatched consecutive attacks transform that posture.
package defstyle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/udisondev/battlecore/internal/model"
)

var styles = []model.AimStyle{model.AimNone, model.AimMelee, model.AimRanged, model.AimAerial}

func eventName(s model.AimStyle) string {
	return "posture_" + s.String()
}

// newMachine builds the posture FSM starting at posture. Every style can be
// reached from every other style through its posture_<style> event.
func newMachine(posture model.AimStyle, ownerID string) *fsm.FSM {
	events := make(fsm.Events, 0, len(styles))
	for _, dst := range styles {
		src := make([]string, 0, len(styles)-1)
		for _, s := range styles {
			if s != dst {
				src = append(src, s.String())
			}
		}
		events = append(events, fsm.EventDesc{Name: eventName(dst), Src: src, Dst: dst.String()})
	}
	return fsm.NewFSM(posture.String(), events, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			slog.Debug("defense posture changed",
				"combatant", ownerID,
				"from", e.Src,
				"to", e.Dst)
		},
	})
}

// Matches reports whether the defender's posture covers incoming. An
// unpostured defender and an unaimed skill always match.
func Matches(mem model.DefenseStyleMemory, incoming model.AimStyle) bool {
	if mem.Posture == model.AimNone || incoming == model.AimNone {
		return true
	}
	return mem.Posture == incoming
}

// Observe records a hit of style incoming against the defender and returns
// true when the posture transformed.
//
// A matching hit clears transformation progress. A mismatched hit inside a
// consecutive sequence advances progress toward incoming; reaching the
// threshold switches the posture. A first aimed hit on an unpostured
// defender sets the posture immediately.
func Observe(ctx context.Context, c *model.Combatant, incoming model.AimStyle, consecutive bool) bool {
	mem := &c.DefenseStyle
	if incoming == model.AimNone {
		return false
	}
	if mem.Posture == model.AimNone {
		return transform(ctx, c, incoming)
	}
	if mem.Posture == incoming {
		mem.Toward = model.AimNone
		mem.Progress = 0
		return false
	}
	if !consecutive {
		return false
	}

	if mem.Toward != incoming {
		mem.Toward = incoming
		mem.Progress = 0
	}
	mem.Progress++
	if mem.Progress < threshold(mem) {
		return false
	}
	return transform(ctx, c, incoming)
}

func threshold(mem *model.DefenseStyleMemory) int {
	if mem.Threshold <= 0 {
		return 1
	}
	return mem.Threshold
}

func transform(ctx context.Context, c *model.Combatant, to model.AimStyle) bool {
	mem := &c.DefenseStyle
	m := newMachine(mem.Posture, c.ID)
	if err := m.Event(ctx, eventName(to)); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			slog.Warn("defense posture transition rejected",
				"combatant", c.ID,
				"to", to,
				"err", err)
			return false
		}
	}
	next, err := model.ParseAimStyle(m.Current())
	if err != nil {
		// States are generated from styles; an unknown state is a bug.
		panic(err)
	}
	mem.Posture = next
	mem.Toward = model.AimNone
	mem.Progress = 0
	return true
}

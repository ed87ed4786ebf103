// Package barrier resolves damage against a combatant's vital layers.
//
// Layers are ordered front first. The front layer absorbs damage scaled by
// its resistance for the attack's physical property; when it breaks, its
// resist mode decides how much damage passes on to the next layer or HP.
package barrier

import (
	"log/slog"

	"github.com/udisondev/battlecore/internal/model"
)

const (
	heavyBreakRate  = 0.015 // +1.5% per KereKere
	voltenBreakRate = 0.022 // −2.2% per (ATK − KereKere)
)

// VitalLayerLookup resolves layer templates by ID.
type VitalLayerLookup interface {
	// Layer returns a fresh layer built from the template.
	Layer(id string) (*model.BarrierLayer, bool)
}

// Attack describes what hits the layers.
type Attack struct {
	Body     model.DamageBreakdown
	Mental   model.DamageBreakdown
	Property model.PhysicalProperty
	// ATK and KereKere of the attacker drive break effects.
	ATK      float64
	KereKere float64
}

// Result is the damage that reaches the combatant behind the layers.
type Result struct {
	Body   model.DamageBreakdown
	Mental model.DamageBreakdown
	// Broken lists destroyed layer IDs, front first.
	Broken []string
}

// Penetrate runs atk through layers, mutating damaged layers and dropping
// destroyed ones. It returns the surviving layers and the forwarded damage.
func Penetrate(layers []*model.BarrierLayer, atk Attack) ([]*model.BarrierLayer, Result) {
	res := Result{Body: atk.Body, Mental: atk.Mental}
	if len(layers) == 0 {
		return layers, res
	}

	kept := make([]*model.BarrierLayer, 0, len(layers))
	i := 0
	for ; i < len(layers); i++ {
		if res.Body.Total <= 0 && res.Mental.Total <= 0 {
			break
		}
		l := layers[i]
		rr := l.ResistFor(atk.Property)
		st := breach(l.HP, l.MaxHP, rr, l.MentalPassRatio, l.Mode, res.Body.Total, res.Mental.Total)
		res.Mental = res.Mental.ScaleTo(st.mental)

		if !st.broken {
			l.HP = st.layerHP
			res.Body = res.Body.ScaleTo(0)
			kept = append(kept, l)
			i++
			break
		}

		res.Body = res.Body.ScaleTo(st.pass)
		res.Body = breakEffect(res.Body, atk).ClampNonNegative()
		res.Broken = append(res.Broken, l.ID)

		slog.Debug("vital layer broken",
			"layer", l.ID,
			"mode", l.Mode,
			"resist", rr,
			"forwarded", res.Body.Total)
	}
	kept = append(kept, layers[i:]...)
	return kept, res
}

// Simulate mirrors Penetrate on copies of the layer numbers and returns the
// forwarded body and mental totals. layers are not touched.
func Simulate(layers []*model.BarrierLayer, body, mental float64, prop model.PhysicalProperty, atkValue, kereKere float64) (float64, float64) {
	type tuple struct {
		hp, maxHP, rr, pass float64
		mode                model.ResistMode
	}
	local := make([]tuple, len(layers))
	for i, l := range layers {
		local[i] = tuple{hp: l.HP, maxHP: l.MaxHP, rr: l.ResistFor(prop), pass: l.MentalPassRatio, mode: l.Mode}
	}

	for _, t := range local {
		if body <= 0 && mental <= 0 {
			break
		}
		st := breach(t.hp, t.maxHP, t.rr, t.pass, t.mode, body, mental)
		mental = st.mental
		if !st.broken {
			body = 0
			break
		}
		body = st.pass + breakDelta(st.pass, prop, atkValue, kereKere)
		if body < 0 {
			body = 0
		}
	}
	return body, mental
}

// step is the outcome of one layer taking one hit.
type step struct {
	broken  bool
	layerHP float64 // remaining HP when the layer holds
	pass    float64 // body damage forwarded when it breaks
	mental  float64
}

// breach applies dmg and mental to a single layer.
//
// Mental damage is reduced by layerHP×(1−mentalPass) whether or not the
// layer breaks. Overflow on break by mode:
//
//	A:         dmg×rr − hp, never more than dmg
//	B:         (dmg×rr − hp) / rr
//	C current: dmg − hp
//	C max:     dmg − maxHP
func breach(hp, maxHP, rr, mentalPass float64, mode model.ResistMode, dmg, mental float64) step {
	st := step{mental: mental - hp*(1-mentalPass)}
	if st.mental < 0 {
		st.mental = 0
	}
	if dmg < 0 {
		dmg = 0
	}

	after := dmg * rr
	if hp-after > 0 {
		st.layerHP = hp - after
		return st
	}

	st.broken = true
	overkill := after - hp
	switch mode {
	case model.ResistA:
		st.pass = min(overkill, dmg)
	case model.ResistB:
		if rr > 0 {
			st.pass = overkill / rr
		}
	case model.ResistCCurrent:
		st.pass = dmg - hp
	case model.ResistCMax:
		st.pass = dmg - maxHP
	default:
		panic("barrier: unhandled resist mode " + mode.String())
	}
	if st.pass < 0 {
		st.pass = 0
	}
	return st
}

// breakDelta is the damage change caused by breaking a layer:
// heavy gains overflow×1.5%×KereKere, volten loses
// overflow×2.2%×(ATK−KereKere). The volten loss turns into a gain when
// KereKere exceeds ATK.
func breakDelta(overflow float64, prop model.PhysicalProperty, atk, kereKere float64) float64 {
	switch prop {
	case model.PropertyHeavy:
		return overflow * heavyBreakRate * kereKere
	case model.PropertyVolten:
		return -overflow * voltenBreakRate * (atk - kereKere)
	}
	return 0
}

func breakEffect(d model.DamageBreakdown, atk Attack) model.DamageBreakdown {
	delta := breakDelta(d.Total, atk.Property, atk.ATK, atk.KereKere)
	switch atk.Property {
	case model.PropertyHeavy:
		return d.AddAbility(model.AbilityHeavy, delta)
	case model.PropertyVolten:
		return d.AddAbility(model.AbilityVolten, delta)
	}
	return d
}

// AddLayer puts a fresh copy of template id in front of c's layers. An
// existing layer with the same ID is refreshed in place.
func AddLayer(lookup VitalLayerLookup, c *model.Combatant, id string) bool {
	l, ok := lookup.Layer(id)
	if !ok {
		slog.Warn("vital layer template not found", "layer", id, "combatant", c.ID)
		return false
	}
	for i, existing := range c.Layers {
		if existing.ID == id {
			c.Layers[i] = l
			return true
		}
	}
	c.Layers = append([]*model.BarrierLayer{l}, c.Layers...)
	return true
}

// RemoveLayer drops layer id from c and reports whether it was present.
func RemoveLayer(c *model.Combatant, id string) bool {
	for i, l := range c.Layers {
		if l.ID == id {
			c.Layers = append(c.Layers[:i], c.Layers[i+1:]...)
			return true
		}
	}
	return false
}

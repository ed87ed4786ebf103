// Package adapt implements the defender's familiarity with skill
// impressions: memory grows on every hit, decays for impressions that are
// not used, and reduces damage from the impressions the defender knows best.
package adapt

import (
	"log/slog"
	"math"
	"sort"

	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// DefaultBaseAdapt is the per-count reduction used when no config is set.
const DefaultBaseAdapt = 0.04

const (
	jitterSpan    = 0.08 // ±4%
	floorEyeScale = 0.002
	minFloor      = 0.1
	blinkOdds     = 25
	blinkRelax    = 0.25
	decaySlowdown = 3.0
	bucketFalloff = 0.5
)

// Params are the rule constants shared by every defender.
type Params struct {
	// BaseAdaptValue is the damage reduction per memory count at full
	// density.
	BaseAdaptValue float64
}

// DefaultParams returns the standard rule constants.
func DefaultParams() Params {
	return Params{BaseAdaptValue: DefaultBaseAdapt}
}

// Multiplier is the raw familiarity multiplier for a floored memory count
// and a slot density weight. It never increases with count.
func Multiplier(base, count, weight float64) float64 {
	if count < 0 {
		count = 0
	}
	m := 1 - base*count*weight
	if m < 0 {
		return 0
	}
	return m
}

// Floor is the lowest multiplier a defender can reach: the temperament's
// floor lowered by EYE.
func Floor(profile *data.TemperamentProfile, eye float64) float64 {
	f := profile.AdaptFloor - eye*floorEyeScale
	switch {
	case f < minFloor:
		return minFloor
	case f > 1:
		return 1
	}
	return f
}

// DecayPerTurn is the DEF-based exponential decay applied to impressions
// that were not used this reaction.
func DecayPerTurn(profile *data.TemperamentProfile, def float64) float64 {
	if def < 0 {
		def = 0
	}
	return profile.DecayBase * math.Exp(-def/profile.DecayScale)
}

// Input is one familiarity application.
type Input struct {
	Defender *model.Combatant
	Attacker *model.Combatant
	Skill    *model.Skill
	// Damage is the damage of this hit before familiarity, recorded as a
	// candidate peak.
	Damage  float64
	Turn    int
	Profile *data.TemperamentProfile
	Params  Params
}

// ApplyFamiliarity records the hit in the defender's memory and returns the
// damage multiplier for it. The multiplier is computed from the memory as it
// stood before this hit; the hit's own growth is applied afterwards.
func ApplyFamiliarity(in Input, src rng.Source) float64 {
	imp := in.Skill.Impression
	if imp == model.ImpressionNone {
		return 1
	}
	def := in.Defender
	if def.Adaptation == nil {
		def.Adaptation = model.NewAdaptationMemory()
	}
	mem := def.Adaptation
	profile := in.Profile

	rec, firstAttacker := record(mem, imp, in.Attacker.ID, in.Damage)

	decayOthers(mem, imp, in.Turn, DecayPerTurn(profile, def.Stat(modifier.StatDEF, in.Attacker.ID)), src)

	mult := 1.0
	focus := rankedBy(mem, byCount)
	k := profile.TopK()
	if slot := indexOf(focus, imp); slot >= 0 && slot < k {
		confused := firstAttacker && !profile.ConfusionExempt
		if !confused {
			eye := def.Stat(modifier.StatEYE, in.Attacker.ID)
			mult = familiarity(rec, profile.Density[slot].Weight(), Floor(profile, eye), in.Params, src)
		}
	}

	grow(mem, rec, profile)
	rec.LastTurn = in.Turn
	mem.LastTurn = in.Turn

	slog.Debug("familiarity applied",
		"defender", def.ID,
		"attacker", in.Attacker.ID,
		"impression", imp,
		"count", rec.Count,
		"multiplier", mult)
	return mult
}

// record finds or creates the impression record and registers the attacker.
func record(mem *model.AdaptationMemory, imp model.Impression, attackerID string, damage float64) (*model.AdaptationRecord, bool) {
	rec, ok := mem.Records[imp]
	if !ok {
		rec = &model.AdaptationRecord{
			Impression: imp,
			Count:      mem.Persistent[imp],
			Users:      make(map[string]struct{}, 2),
		}
		mem.Records[imp] = rec
	}
	first := !rec.HasUser(attackerID)
	if first {
		rec.Users[attackerID] = struct{}{}
	}
	if damage > rec.PeakHit {
		rec.PeakHit = damage
	}
	return rec, first
}

// decayOthers ages every impression other than current by the elapsed
// turns. Each record has a 1-in-(2..3) chance, by memory percentile, to
// decay at a third of the rate.
func decayOthers(mem *model.AdaptationMemory, current model.Impression, turn int, perTurn float64, src rng.Source) {
	elapsed := turn - mem.LastTurn
	if elapsed <= 0 || len(mem.Records) < 2 {
		return
	}
	ranked := rankedBy(mem, byCount)
	n := len(ranked)
	for i, rec := range ranked {
		if rec.Impression == current {
			continue
		}
		// ranked is descending, so the top record has ratio 1.
		rankRatio := 1.0
		if n > 1 {
			rankRatio = float64(n-1-i) / float64(n-1)
		}
		d := perTurn * float64(elapsed)
		if rng.OneIn(src, 2+int(math.Round(rankRatio))) {
			d /= decaySlowdown
		}
		rec.Count -= d
	}
}

func familiarity(rec *model.AdaptationRecord, weight, floor float64, p Params, src rng.Source) float64 {
	m := Multiplier(p.BaseAdaptValue, rec.EffectiveCount(), weight)
	m *= 1 + (src.Float64()*jitterSpan - jitterSpan/2)
	if m < floor {
		m = floor
		if rng.OneIn(src, blinkOdds) {
			m += (1 - floor) * blinkRelax
		}
	}
	if m > 1 {
		m = 1
	}
	return m
}

// grow adds the hit's gain to rec. The gain falls with the bucket the
// profile's grouping scheme assigns to the impression's peak-hit rank.
func grow(mem *model.AdaptationMemory, rec *model.AdaptationRecord, profile *data.TemperamentProfile) {
	focus := rankedBy(mem, byPeak)
	rank := indexOf(focus, rec.Impression)
	bucket := profile.Grouping.Bucket(rank, len(focus))
	rec.Count += profile.GrowthBase / (1 + bucketFalloff*float64(bucket))
}

type ordering int

const (
	byCount ordering = iota
	byPeak
)

// rankedBy returns the records sorted descending by the chosen key, ties
// broken by impression name so the order never depends on map iteration.
func rankedBy(mem *model.AdaptationMemory, by ordering) []*model.AdaptationRecord {
	out := make([]*model.AdaptationRecord, 0, len(mem.Records))
	for _, r := range mem.Records {
		out = append(out, r)
	}
	key := func(r *model.AdaptationRecord) float64 {
		if by == byPeak {
			return r.PeakHit
		}
		return r.Count
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			return ki > kj
		}
		return out[i].Impression < out[j].Impression
	})
	return out
}

func indexOf(recs []*model.AdaptationRecord, imp model.Impression) int {
	for i, r := range recs {
		if r.Impression == imp {
			return i
		}
	}
	return -1
}

// Carry moves familiarity into the persistent dictionary at battle end,
// keeping rate of each non-negative count, and clears the battle records.
func Carry(mem *model.AdaptationMemory, rate float64) map[model.Impression]float64 {
	if mem == nil {
		return nil
	}
	for imp, rec := range mem.Records {
		kept := math.Max(rec.Count, 0) * rate
		if kept > 0 {
			mem.Persistent[imp] = kept
		} else {
			delete(mem.Persistent, imp)
		}
	}
	mem.Records = make(map[model.Impression]*model.AdaptationRecord)
	mem.LastTurn = 0

	out := make(map[model.Impression]float64, len(mem.Persistent))
	for imp, v := range mem.Persistent {
		out[imp] = v
	}
	return out
}

// Restore seeds the persistent dictionary from storage before a battle.
func Restore(mem *model.AdaptationMemory, persisted map[model.Impression]float64) {
	for imp, v := range persisted {
		if v > 0 {
			mem.Persistent[imp] = v
		}
	}
}

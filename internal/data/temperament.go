package data

import (
	"fmt"

	"github.com/udisondev/battlecore/internal/model"
)

// Grouping names the priority-grouping scheme that turns an impression rank
// into a growth bucket.
type Grouping string

const (
	GroupSplit3 Grouping = "split3" // thirds of the focus list
	GroupMod6   Grouping = "mod6"
	GroupMod5   Grouping = "mod5"
	GroupPrime  Grouping = "prime" // bucket advances at every prime rank
	GroupMod10  Grouping = "mod10"
)

// Valid reports whether g is a known scheme.
func (g Grouping) Valid() bool {
	switch g {
	case GroupSplit3, GroupMod6, GroupMod5, GroupPrime, GroupMod10:
		return true
	}
	return false
}

// Bucket maps a 0-based rank inside a focus list of size n to a bucket.
// An unknown scheme is a broken data table and panics.
func (g Grouping) Bucket(rank, n int) int {
	if rank < 0 {
		rank = 0
	}
	switch g {
	case GroupSplit3:
		if n <= 0 {
			return 0
		}
		b := rank * 3 / n
		if b > 2 {
			b = 2
		}
		return b
	case GroupMod6:
		return rank % 6
	case GroupMod5:
		return rank % 5
	case GroupPrime:
		return primesUpTo(rank)
	case GroupMod10:
		return rank % 10
	}
	panic(fmt.Sprintf("data: unhandled grouping scheme %q", string(g)))
}

// primesUpTo counts primes <= n.
func primesUpTo(n int) int {
	count := 0
	for i := 2; i <= n; i++ {
		prime := true
		for d := 2; d*d <= i; d++ {
			if i%d == 0 {
				prime = false
				break
			}
		}
		if prime {
			count++
		}
	}
	return count
}

// Density is the weight tier of one familiarity slot.
type Density string

const (
	DensityHigh   Density = "high"
	DensityMedium Density = "medium"
	DensityLow    Density = "low"
)

// Weight returns the multiplier of the tier. Unknown tiers panic.
func (d Density) Weight() float64 {
	switch d {
	case DensityHigh:
		return 1.0
	case DensityMedium:
		return 0.6
	case DensityLow:
		return 0.3
	}
	panic(fmt.Sprintf("data: unhandled density tier %q", string(d)))
}

// TemperamentProfile is the single table row that replaces per-temperament
// switches across the pipeline.
type TemperamentProfile struct {
	Temperament model.Temperament `yaml:"temperament"`

	Grouping   Grouping  `yaml:"grouping"`
	DecayBase  float64   `yaml:"decay_base"`
	DecayScale float64   `yaml:"decay_scale"`
	Density    []Density `yaml:"density"`
	// ConfusionExempt defenders adapt even to first-time attackers.
	ConfusionExempt bool    `yaml:"confusion_exempt"`
	AdaptFloor      float64 `yaml:"adapt_floor"`
	GrowthBase      float64 `yaml:"growth_base"`

	// SurvivalBase is the mutual-kill survival percentage (0-14).
	SurvivalBase float64 `yaml:"survival_base"`
	// SurvivalOverrides keyed "condition/power" replace the computed value.
	SurvivalOverrides map[string]float64 `yaml:"survival_overrides"`

	ResonanceBonus    map[model.Ability]float64 `yaml:"resonance_bonus"`
	ResonanceTriggers []model.Impression        `yaml:"resonance_triggers"`

	OverkillPassRate float64 `yaml:"overkill_pass_rate"`
	DivergenceChance float64 `yaml:"divergence_chance"`
	CanBreakLife     bool    `yaml:"can_break_life"`
}

// TopK is the number of familiarity slots.
func (p *TemperamentProfile) TopK() int {
	return len(p.Density)
}

// IsTrigger reports whether imp is a resonance trigger impression.
func (p *TemperamentProfile) IsTrigger(imp model.Impression) bool {
	if imp == model.ImpressionNone {
		return false
	}
	for _, t := range p.ResonanceTriggers {
		if t == imp {
			return true
		}
	}
	return false
}

// SurvivalOverride returns the named override for a condition and power.
func (p *TemperamentProfile) SurvivalOverride(c model.Condition, pw model.PowerLevel) (float64, bool) {
	v, ok := p.SurvivalOverrides[c.String()+"/"+pw.String()]
	return v, ok
}

func (p *TemperamentProfile) validate() error {
	if !p.Grouping.Valid() {
		return fmt.Errorf("temperament %s: unknown grouping %q", p.Temperament, p.Grouping)
	}
	if len(p.Density) == 0 {
		return fmt.Errorf("temperament %s: density must list at least one slot", p.Temperament)
	}
	for _, d := range p.Density {
		switch d {
		case DensityHigh, DensityMedium, DensityLow:
		default:
			return fmt.Errorf("temperament %s: unknown density %q", p.Temperament, d)
		}
	}
	if p.DecayScale <= 0 {
		return fmt.Errorf("temperament %s: decay_scale must be positive", p.Temperament)
	}
	if p.SurvivalBase < 0 || p.SurvivalBase > 14 {
		return fmt.Errorf("temperament %s: survival_base %v outside [0, 14]", p.Temperament, p.SurvivalBase)
	}
	for k, v := range p.SurvivalOverrides {
		if v < 0 || v > 100 {
			return fmt.Errorf("temperament %s: survival override %s=%v outside [0, 100]", p.Temperament, k, v)
		}
	}
	if p.DivergenceChance < 0 || p.DivergenceChance > 100 {
		return fmt.Errorf("temperament %s: divergence_chance %v outside [0, 100]", p.Temperament, p.DivergenceChance)
	}
	if p.AdaptFloor < 0 || p.AdaptFloor > 1 {
		return fmt.Errorf("temperament %s: adapt_floor %v outside [0, 1]", p.Temperament, p.AdaptFloor)
	}
	return nil
}

// NeutralProfile is substituted when a temperament has no table row. It
// produces 100% multipliers everywhere a profile is consulted.
func NeutralProfile(t model.Temperament) *TemperamentProfile {
	return &TemperamentProfile{
		Temperament:      t,
		Grouping:         GroupSplit3,
		DecayBase:        1,
		DecayScale:       100,
		Density:          []Density{DensityLow},
		ConfusionExempt:  false,
		AdaptFloor:       1,
		GrowthBase:       0,
		OverkillPassRate: 1,
	}
}

package damage

import (
	"github.com/udisondev/battlecore/internal/model"
	"github.com/udisondev/battlecore/internal/rng"
)

// Base variance: 8 dice of 5501 faces summed and normalised to ±22%.
const (
	varianceDice   = 8
	varianceSides  = 5501
	varianceCenter = 22000
	varianceScale  = 100000
	disturbedBelow = -0.15
)

// Variance rolls the per-reaction base variance for an attacker of the given
// power. The lowest tier skips the roll. Disturbed reports a roll below −15%.
func Variance(power model.PowerLevel, src rng.Source) (v float64, disturbed bool) {
	if power == model.PowerLowest {
		return 0, false
	}
	sum := rng.Dice(src, varianceDice, varianceSides)
	v = float64(sum-varianceCenter) / varianceScale
	return v, v < disturbedBelow
}

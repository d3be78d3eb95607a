package fsrs

import "math"

// curve holds the two scalar constants of the power-law forgetting curve.
// V5 fixes them; V6 derives them from the last weight.
type curve struct {
	decay  float64
	factor float64
}

// curveFor derives the forgetting-curve constants for a version and its
// effective weight vector.
func curveFor(version Version, weights []float64) curve {
	if version == V6 {
		decay := -weights[20]
		return curve{
			decay:  decay,
			factor: math.Pow(0.9, 1.0/decay) - 1.0,
		}
	}
	return curve{decay: -0.5, factor: 19.0 / 81.0}
}

// retrievability evaluates R(t, S) = (1 + factor*t/S)^decay: the probability
// of recall after elapsedDays given memory strength stability.
func (c curve) retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+c.factor*elapsedDays/stability, c.decay)
}

// intervalDays inverts the forgetting curve: the number of days until recall
// probability drops to retention. Floored at 1, capped at maxDays.
func (c curve) intervalDays(stability, retention float64, maxDays int) int {
	if stability <= 0 {
		return 1
	}
	ivl := stability / c.factor * (math.Pow(retention, 1.0/c.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > maxDays {
		days = maxDays
	}
	return days
}

// RetrievabilityAt returns the estimated recall probability for a memory of
// the given stability after elapsedDays, under the config's curve. Used to
// display current retention without performing a review. Returns 0 for
// never-reviewed items (stability <= 0). Negative elapsed days (a query date
// before the last review) count as 0 so the result stays in [0, 1].
func RetrievabilityAt(stability, elapsedDays float64, cfg Config) float64 {
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	return curveFor(cfg.Version, cfg.Weights()).retrievability(stability, elapsedDays)
}

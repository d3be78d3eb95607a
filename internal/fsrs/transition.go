package fsrs

import "math"

// transitionResult is the outcome of a single memory-state transition.
// Retrievability is nil on a first-ever review: nothing to forget yet.
type transitionResult struct {
	difficulty     float64
	stability      float64
	retrievability *float64
}

// nextState computes new difficulty and stability for a rating.
//
// The branch structure matters: a same-day re-review must not inflate
// long-term stability the way a multi-day recall does, and a forgotten item
// recovers along a decay-driven curve rather than a growth-driven one.
func nextState(state State, rating Rating, cfg Config, elapsedDays int) transitionResult {
	rating = clampRating(rating)
	w := cfg.Weights()

	// First review: stability is a direct lookup by rating.
	if state.Stability <= 0 {
		return transitionResult{
			difficulty: initialDifficulty(w, rating),
			stability:  w[rating-1],
		}
	}

	cv := curveFor(cfg.Version, w)
	r := cv.retrievability(state.Stability, float64(elapsedDays))

	// Difficulty drifts on every repeat review: a rating-driven delta with
	// linear damping, then mean reversion toward D₀(Easy).
	delta := -w[6] * float64(rating-3)
	damped := state.Difficulty + delta*(10-state.Difficulty)/9
	difficulty := clampDifficulty(w[7]*initialDifficulty(w, Easy) + (1-w[7])*damped)

	var stability float64
	switch {
	case elapsedDays == 0:
		stability = state.Stability * sameDayBoost(w, cfg.Version, state.Stability, rating)
	case rating == Again:
		stability = w[11] *
			math.Pow(difficulty, -w[12]) *
			(math.Pow(state.Stability+1, w[13]) - 1) *
			math.Exp(w[14]*(1-r))
	default:
		stability = state.Stability * (1 + recallGrowth(w, difficulty, state.Stability, r, rating))
	}

	stability = round2(stability)
	if stability < 0.1 {
		stability = 0.1
	}

	return transitionResult{
		difficulty:     round2(difficulty),
		stability:      stability,
		retrievability: &r,
	}
}

// initialDifficulty is D₀(G) = clamp(w[4] - e^(w[5]*(G-1)) + 1, 1, 10).
// Also serves as the mean-reversion target when evaluated at Easy.
func initialDifficulty(w []float64, rating Rating) float64 {
	return clampDifficulty(w[4] - math.Exp(w[5]*float64(rating-1)) + 1)
}

// sameDayBoost is the multiplicative stability increment for a same-day
// re-review. Good and Easy are floored at 1.0 so cramming can never shrink
// stability; Hard and Again may.
func sameDayBoost(w []float64, version Version, stability float64, rating Rating) float64 {
	boost := math.Exp(w[17] * (float64(rating) - 3 + w[18]))
	if version == V6 {
		boost *= math.Pow(stability, -w[19])
	}
	if rating >= Good && boost < 1 {
		boost = 1
	}
	return boost
}

// recallGrowth is the relative stability gain after a successful multi-day
// recall, scaled by the hard penalty or easy bonus.
func recallGrowth(w []float64, difficulty, stability, r float64, rating Rating) float64 {
	growth := math.Exp(w[8]) *
		(11 - difficulty) *
		math.Pow(stability, -w[9]) *
		(math.Exp(w[10]*(1-r)) - 1)
	if rating == Hard {
		growth *= w[15]
	}
	if rating == Easy {
		growth *= w[16]
	}
	return growth
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

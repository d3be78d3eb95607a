package fsrs

import (
	"math"
	"math/rand"
)

// Fuzzing spreads scheduled dates so items reviewed together do not stay
// clustered forever. Intervals under 2.5 days pass through unchanged; the
// jitter width grows with the interval in three bands.
type fuzzBand struct {
	start, end float64
	factor     float64
}

var fuzzBands = []fuzzBand{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// fuzzWidth computes the half-width of the fuzz window for an interval.
func fuzzWidth(interval float64) float64 {
	delta := 1.0
	for _, b := range fuzzBands {
		delta += b.factor * math.Max(math.Min(interval, b.end)-b.start, 0)
	}
	return delta
}

// fuzzInterval picks a random interval inside the fuzz window, bounded below
// by 2 days and above by maxDays. rng may be nil, in which case a shared
// source is used.
func fuzzInterval(interval, maxDays int, rng *rand.Rand) int {
	if float64(interval) < 2.5 {
		return interval
	}

	ivl := float64(interval)
	delta := fuzzWidth(ivl)

	lo := int(math.Round(ivl - delta))
	if lo < 2 {
		lo = 2
	}
	hi := int(math.Round(ivl + delta))
	if hi > maxDays {
		hi = maxDays
	}
	if lo > hi {
		lo = hi
	}

	fuzzed := lo + randIntN(rng, hi-lo+1)
	if fuzzed > maxDays {
		fuzzed = maxDays
	}
	return fuzzed
}

func randIntN(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	if rng != nil {
		return rng.Intn(n)
	}
	fuzzMu.Lock()
	defer fuzzMu.Unlock()
	return fuzzRNG.Intn(n)
}

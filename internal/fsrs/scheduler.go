package fsrs

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// State is the memory state of one learning item. Stability 0 means the
// item has never been reviewed. A review replaces the whole value; nothing
// mutates it in place.
type State struct {
	Difficulty float64    `json:"difficulty"`
	Stability  float64    `json:"stability"`
	LastReview *time.Time `json:"last_review,omitempty"`
	NextReview *time.Time `json:"next_review,omitempty"`
}

// Reviewed reports whether the item has ever been reviewed.
func (s State) Reviewed() bool {
	return s.Stability > 0
}

// Options tunes a single Review call. The zero value means: derive elapsed
// days from LastReview, no fuzzing, today = current local date.
type Options struct {
	// CustomElapsedDays overrides the elapsed-day computation entirely.
	CustomElapsedDays *int
	// ApplyFuzzing jitters the scheduled interval to spread review dates.
	// IntervalDays always reports the unfuzzed canonical value.
	ApplyFuzzing bool
	// Today pins "today" for deterministic scheduling. Zero means now.
	// Only the calendar date is used.
	Today time.Time
	// Rand supplies the fuzzing randomness. Nil uses a shared source.
	Rand *rand.Rand
}

// Result is the outcome of one review.
type Result struct {
	NewState       State    `json:"new_state"`
	IntervalDays   int      `json:"interval_days"`   // canonical, unfuzzed
	ScheduledDays  int      `json:"scheduled_days"`  // what NextReview is built from
	Retrievability *float64 `json:"retrievability"`  // nil on first review
}

var (
	fuzzMu  sync.Mutex
	fuzzRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Review runs one rated review against the state and returns the replacement
// state plus scheduling data. It is pure apart from the optional fuzz
// randomness and cannot fail: malformed configs are expected to have passed
// through NormalizeConfig, and out-of-range ratings are clamped.
func Review(state State, rating Rating, cfg Config, opts Options) Result {
	rating = clampRating(rating)
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = DateOnly(today)

	elapsed := elapsedDaysBetween(state.LastReview, today)
	if opts.CustomElapsedDays != nil {
		elapsed = *opts.CustomElapsedDays
	}
	if elapsed < 0 {
		elapsed = 0
	}

	tr := nextState(state, rating, cfg, elapsed)

	cv := curveFor(cfg.Version, cfg.Weights())
	interval := cv.intervalDays(tr.stability, cfg.RequestedRetention, cfg.MaxIntervalDays)
	if rating == Again && interval < cfg.AgainMinIntervalDays {
		interval = cfg.AgainMinIntervalDays
	}

	scheduled := interval
	if opts.ApplyFuzzing {
		scheduled = fuzzInterval(interval, cfg.MaxIntervalDays, opts.Rand)
	}

	next := today.AddDate(0, 0, scheduled)
	return Result{
		NewState: State{
			Difficulty: tr.difficulty,
			Stability:  tr.stability,
			LastReview: &today,
			NextReview: &next,
		},
		IntervalDays:   interval,
		ScheduledDays:  scheduled,
		Retrievability: tr.retrievability,
	}
}

// Today returns the current local date at midnight.
func Today() time.Time {
	return DateOnly(time.Now())
}

// DateOnly truncates a time to its local calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ElapsedDays returns whole calendar days since the last review, or 0 when
// the item has never been reviewed. A zero today means the current local date.
func ElapsedDays(last *time.Time, today time.Time) int {
	if today.IsZero() {
		today = time.Now()
	}
	return elapsedDaysBetween(last, DateOnly(today))
}

// elapsedDaysBetween returns whole calendar days from the last review date
// to today, or 0 if the item has never been reviewed.
func elapsedDaysBetween(last *time.Time, today time.Time) int {
	if last == nil {
		return 0
	}
	from := DateOnly(*last)
	// Round, not truncate: DST shifts make some day spans 23 or 25 hours.
	return int(math.Round(today.Sub(from).Hours() / 24))
}

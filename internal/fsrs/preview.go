package fsrs

// Outcome is one entry of a what-if preview: the result of reviewing with a
// particular rating.
type Outcome struct {
	Rating         Rating   `json:"rating"`
	Label          string   `json:"label"`
	NewState       State    `json:"new_state"`
	IntervalDays   int      `json:"interval_days"`
	ScheduledDays  int      `json:"scheduled_days"`
	Retrievability *float64 `json:"retrievability"`
}

// PreviewAllRatings returns the review outcome for each of the four ratings
// without touching the input state. Fuzzing is always off so previews are
// deterministic; results must not be written back as real reviews.
func PreviewAllRatings(state State, cfg Config, opts Options) [4]Outcome {
	opts.ApplyFuzzing = false

	var out [4]Outcome
	for i, r := range AllRatings {
		res := Review(state, r, cfg, opts)
		out[i] = Outcome{
			Rating:         r,
			Label:          r.Label(),
			NewState:       res.NewState,
			IntervalDays:   res.IntervalDays,
			ScheduledDays:  res.ScheduledDays,
			Retrievability: res.Retrievability,
		}
	}
	return out
}

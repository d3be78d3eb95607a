package fsrs

// Rating is the user's self-assessment of a review. The ordinal values are
// load-bearing: the state transition does arithmetic on them directly.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// AllRatings lists the four ratings in ascending order.
var AllRatings = [4]Rating{Again, Hard, Good, Easy}

// Label returns the human-readable name for the rating.
func (r Rating) Label() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the four defined ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// clampRating forces an out-of-range rating to the nearest valid one.
// The engine never rejects input; see NormalizeConfig for the same policy.
func clampRating(r Rating) Rating {
	if r < Again {
		return Again
	}
	if r > Easy {
		return Easy
	}
	return r
}

// SuggestRating maps practice-test accuracy to a suggested rating.
// Returns false when total is zero (nothing to suggest from).
func SuggestRating(total, correct int) (Rating, bool) {
	if total <= 0 {
		return 0, false
	}
	ratio := float64(correct) / float64(total)
	switch {
	case ratio >= 0.9:
		return Easy, true
	case ratio >= 0.7:
		return Good, true
	case ratio >= 0.5:
		return Hard, true
	default:
		return Again, true
	}
}

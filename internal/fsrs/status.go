package fsrs

import (
	"fmt"
	"time"
)

// Urgency classifies how soon a review is due.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyOverdue  Urgency = "overdue"
	UrgencyToday    Urgency = "today"
	UrgencyTomorrow Urgency = "tomorrow"
	UrgencySoon     Urgency = "soon"
	UrgencyNormal   Urgency = "normal"
)

// Status is a display classification of a next-review date.
type Status struct {
	Text    string  `json:"text"`
	Urgency Urgency `json:"urgency"`
}

// DaysUntilReview returns the signed day difference from today to the next
// review (negative = overdue). The second return is false when the item has
// no scheduled review. A zero today means the current local date.
func DaysUntilReview(next *time.Time, today time.Time) (int, bool) {
	if next == nil {
		return 0, false
	}
	if today.IsZero() {
		today = time.Now()
	}
	return -elapsedDaysBetween(next, DateOnly(today)), true
}

// ReviewStatus maps a next-review date to a badge label. Boundaries: 0 today,
// 1 tomorrow, ≤3 soon, ≤7 "in N days", beyond that the date itself.
func ReviewStatus(next *time.Time, today time.Time) Status {
	days, ok := DaysUntilReview(next, today)
	if !ok {
		return Status{Text: "Not scheduled", Urgency: UrgencyNone}
	}

	switch {
	case days < 0:
		if days == -1 {
			return Status{Text: "Overdue by 1 day", Urgency: UrgencyOverdue}
		}
		return Status{Text: fmt.Sprintf("Overdue by %d days", -days), Urgency: UrgencyOverdue}
	case days == 0:
		return Status{Text: "Due today", Urgency: UrgencyToday}
	case days == 1:
		return Status{Text: "Due tomorrow", Urgency: UrgencyTomorrow}
	case days <= 3:
		return Status{Text: fmt.Sprintf("Due in %d days", days), Urgency: UrgencySoon}
	case days <= 7:
		return Status{Text: fmt.Sprintf("Due in %d days", days), Urgency: UrgencyNormal}
	default:
		return Status{Text: "Due " + next.Format("Jan 2"), Urgency: UrgencyNormal}
	}
}

// DifficultyLabel buckets the 1–10 difficulty scale into five bands at
// thresholds 2/4/6/8.
func DifficultyLabel(d float64) string {
	switch {
	case d < 2:
		return "Very Easy"
	case d < 4:
		return "Easy"
	case d < 6:
		return "Moderate"
	case d < 8:
		return "Hard"
	default:
		return "Very Hard"
	}
}

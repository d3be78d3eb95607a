package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/revise-app/revise/internal/fsrs"
)

// ReviewEntry is one record of the append-only per-topic history. It captures
// the algorithm version and retention in effect so old entries stay
// reproducible after config changes.
type ReviewEntry struct {
	ID               int64
	TopicID          string
	ReviewNumber     int
	ReviewedOn       string // "YYYY-MM-DD"
	Rating           int
	RatingLabel      string
	DifficultyBefore float64
	DifficultyAfter  float64
	StabilityBefore  float64
	StabilityAfter   float64
	IntervalDays     int
	Retrievability   *float64 // nil on the first-ever review
	Algorithm        string
	Retention        float64
	CreatedAt        int64
}

// RecordReview applies one review: the topic's memory state is replaced and
// the matching history entry appended in a single transaction. A review
// either fully applies or not at all; the topic is never left rescheduled
// without its history row.
func (db *DB) RecordReview(topicID string, state fsrs.State, e *ReviewEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin record review: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE topics SET difficulty = ?, stability = ?, last_review = ?, next_review = ?, updated_at = ?
		WHERE id = ?
	`, state.Difficulty, state.Stability,
		formatDate(state.LastReview), formatDate(state.NextReview),
		time.Now().UnixMilli(), topicID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("record review state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("record review: topic %s not found", topicID)
	}

	e.TopicID = topicID
	if err := appendReviewTx(tx, e); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record review: %w", err)
	}
	return nil
}

// AppendReview adds an entry to a topic's history, assigning the next
// review number inside the transaction. History is only ever appended;
// entries are never rewritten or reordered.
func (db *DB) AppendReview(e *ReviewEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin append review: %w", err)
	}

	if err := appendReviewTx(tx, e); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append review: %w", err)
	}
	return nil
}

// appendReviewTx assigns the next review number and inserts the entry
// within the caller's transaction.
func appendReviewTx(tx *sql.Tx, e *ReviewEntry) error {
	var count int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM reviews WHERE topic_id = ?", e.TopicID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count reviews: %w", err)
	}
	e.ReviewNumber = count + 1
	e.CreatedAt = time.Now().UnixMilli()

	var retrievability any
	if e.Retrievability != nil {
		retrievability = *e.Retrievability
	}

	result, err := tx.Exec(`
		INSERT INTO reviews (topic_id, review_number, reviewed_on, rating, rating_label,
			difficulty_before, difficulty_after, stability_before, stability_after,
			interval_days, retrievability, algorithm, retention, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.TopicID, e.ReviewNumber, e.ReviewedOn, e.Rating, e.RatingLabel,
		e.DifficultyBefore, e.DifficultyAfter, e.StabilityBefore, e.StabilityAfter,
		e.IntervalDays, retrievability, e.Algorithm, e.Retention, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}

	e.ID, _ = result.LastInsertId()
	return nil
}

// ListReviews returns a topic's history in review order.
func (db *DB) ListReviews(topicID string) ([]ReviewEntry, error) {
	rows, err := db.Query(`
		SELECT id, topic_id, review_number, reviewed_on, rating, rating_label,
			difficulty_before, difficulty_after, stability_before, stability_after,
			interval_days, retrievability, algorithm, retention, created_at
		FROM reviews WHERE topic_id = ? ORDER BY review_number
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var entries []ReviewEntry
	for rows.Next() {
		var e ReviewEntry
		var retrievability sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.TopicID, &e.ReviewNumber, &e.ReviewedOn,
			&e.Rating, &e.RatingLabel,
			&e.DifficultyBefore, &e.DifficultyAfter, &e.StabilityBefore, &e.StabilityAfter,
			&e.IntervalDays, &retrievability, &e.Algorithm, &e.Retention, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if retrievability.Valid {
			e.Retrievability = &retrievability.Float64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountReviews returns the number of history entries for a topic.
func (db *DB) CountReviews(topicID string) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM reviews WHERE topic_id = ?", topicID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/revise-app/revise/internal/fsrs"
)

// dateFormat is the calendar-day representation used everywhere: no
// time-of-day, local zone.
const dateFormat = "2006-01-02"

// Topic is one learning item. Difficulty/stability/last/next are the
// scheduler's memory state; stability 0 means never reviewed.
type Topic struct {
	ID         string
	SubjectID  string
	Name       string
	Notes      string
	Difficulty float64
	Stability  float64
	LastReview string // "YYYY-MM-DD", empty when never reviewed
	NextReview string // "YYYY-MM-DD", empty when not scheduled
	CreatedAt  int64
	UpdatedAt  int64
}

// State converts the persisted columns into scheduler state.
func (t *Topic) State() fsrs.State {
	return fsrs.State{
		Difficulty: t.Difficulty,
		Stability:  t.Stability,
		LastReview: parseDate(t.LastReview),
		NextReview: parseDate(t.NextReview),
	}
}

// SetState replaces the topic's memory state wholesale.
func (t *Topic) SetState(s fsrs.State) {
	t.Difficulty = s.Difficulty
	t.Stability = s.Stability
	t.LastReview = formatDate(s.LastReview)
	t.NextReview = formatDate(s.NextReview)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateFormat, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

// CreateTopic inserts a new, never-reviewed topic under a subject.
func (db *DB) CreateTopic(subjectID, name, notes string) (*Topic, error) {
	now := time.Now().UnixMilli()
	t := &Topic{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Name:      name,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.Exec(`
		INSERT INTO topics (id, subject_id, name, notes, difficulty, stability, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?)
	`, t.ID, t.SubjectID, t.Name, t.Notes, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return t, nil
}

const topicColumns = `id, subject_id, name, notes, difficulty, stability,
	last_review, next_review, created_at, updated_at`

// GetTopic returns a topic by id, or nil if not found.
func (db *DB) GetTopic(id string) (*Topic, error) {
	row := db.QueryRow(`SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	t, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return t, nil
}

// ListTopics returns all topics for a subject, ordered by name.
func (db *DB) ListTopics(subjectID string) ([]Topic, error) {
	rows, err := db.Query(`
		SELECT `+topicColumns+` FROM topics WHERE subject_id = ? ORDER BY name
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

// ListDueTopics returns topics due on or before the given date, most
// overdue first. Unscheduled topics are not due.
func (db *DB) ListDueTopics(today string) ([]Topic, error) {
	rows, err := db.Query(`
		SELECT `+topicColumns+` FROM topics
		WHERE next_review IS NOT NULL AND next_review != '' AND next_review <= ?
		ORDER BY next_review, name
	`, today)
	if err != nil {
		return nil, fmt.Errorf("list due topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

// CountDueTopics returns the number of topics due on or before the date.
func (db *DB) CountDueTopics(today string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM topics
		WHERE next_review IS NOT NULL AND next_review != '' AND next_review <= ?
	`, today).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count due topics: %w", err)
	}
	return count, nil
}

// ReplaceTopicState writes a topic's new memory state. The state columns are
// always written together: the scheduler produces them as one value.
func (db *DB) ReplaceTopicState(id string, state fsrs.State) error {
	res, err := db.Exec(`
		UPDATE topics SET difficulty = ?, stability = ?, last_review = ?, next_review = ?, updated_at = ?
		WHERE id = ?
	`, state.Difficulty, state.Stability,
		formatDate(state.LastReview), formatDate(state.NextReview),
		time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("replace topic state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("replace topic state: topic %s not found", id)
	}
	return nil
}

// DeleteTopic removes a topic and its review history.
func (db *DB) DeleteTopic(id string) error {
	_, err := db.Exec("DELETE FROM topics WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*Topic, error) {
	var t Topic
	var notes, last, next sql.NullString
	err := row.Scan(&t.ID, &t.SubjectID, &t.Name, &notes, &t.Difficulty, &t.Stability,
		&last, &next, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Notes = notes.String
	t.LastReview = last.String
	t.NextReview = next.String
	return &t, nil
}

func scanTopics(rows *sql.Rows) ([]Topic, error) {
	var topics []Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subject groups related topics (e.g. "Constitutional Law", "Calculus").
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// CreateSubject inserts a new subject and returns it with a generated id.
func (db *DB) CreateSubject(name string) (*Subject, error) {
	now := time.Now().UnixMilli()
	s := &Subject{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.Exec(`
		INSERT INTO subjects (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Name, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return s, nil
}

// GetSubject returns a subject by id, or nil if not found.
func (db *DB) GetSubject(id string) (*Subject, error) {
	var s Subject
	err := db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM subjects WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &s, nil
}

// ListSubjects returns all subjects ordered by name.
func (db *DB) ListSubjects() ([]Subject, error) {
	rows, err := db.Query(`
		SELECT id, name, created_at, updated_at FROM subjects ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// RenameSubject updates a subject's name.
func (db *DB) RenameSubject(id, name string) error {
	_, err := db.Exec(`
		UPDATE subjects SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("rename subject: %w", err)
	}
	return nil
}

// DeleteSubject removes a subject. Topics and their review history cascade.
func (db *DB) DeleteSubject(id string) error {
	_, err := db.Exec("DELETE FROM subjects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

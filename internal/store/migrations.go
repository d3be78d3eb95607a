package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "subjects: top-level study areas",
		SQL: `
CREATE TABLE subjects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX idx_subjects_name ON subjects(name);
`,
	},
	{
		Version:     2,
		Description: "topics: learning items carrying scheduler state",
		SQL: `
CREATE TABLE topics (
    id          TEXT PRIMARY KEY,
    subject_id  TEXT NOT NULL,
    name        TEXT NOT NULL,
    notes       TEXT,

    -- Memory state. Stability 0 means never reviewed.
    difficulty  REAL NOT NULL DEFAULT 0,
    stability   REAL NOT NULL DEFAULT 0,
    last_review TEXT,
    next_review TEXT,

    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,

    FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
);

CREATE INDEX idx_topics_subject ON topics(subject_id);
CREATE INDEX idx_topics_next    ON topics(next_review);
`,
	},
	{
		Version:     3,
		Description: "reviews: append-only per-topic review history",
		SQL: `
CREATE TABLE reviews (
    id                INTEGER PRIMARY KEY,
    topic_id          TEXT NOT NULL,
    review_number     INTEGER NOT NULL,
    reviewed_on       TEXT NOT NULL,
    rating            INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 4),
    rating_label      TEXT NOT NULL,
    difficulty_before REAL NOT NULL,
    difficulty_after  REAL NOT NULL,
    stability_before  REAL NOT NULL,
    stability_after   REAL NOT NULL,
    interval_days     INTEGER NOT NULL,
    retrievability    REAL,
    algorithm         TEXT NOT NULL,
    retention         REAL NOT NULL,
    created_at        INTEGER NOT NULL,

    FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE,
    UNIQUE (topic_id, review_number)
);

CREATE INDEX idx_reviews_topic ON reviews(topic_id);
`,
	},
	{
		Version:     4,
		Description: "scheduler_settings: single-row raw scheduler config",
		SQL: `
CREATE TABLE scheduler_settings (
    id                      INTEGER PRIMARY KEY CHECK (id = 1),
    version                 TEXT NOT NULL DEFAULT 'fsrs5',
    requested_retention     REAL NOT NULL DEFAULT 0.9,
    custom_weights          TEXT,
    again_min_interval_days INTEGER NOT NULL DEFAULT 0,
    max_interval_days       INTEGER NOT NULL DEFAULT 36500,
    updated_at              INTEGER NOT NULL
);

INSERT INTO scheduler_settings (id, updated_at) VALUES (1, strftime('%s', 'now') * 1000);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

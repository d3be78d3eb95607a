package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/revise-app/revise/internal/fsrs"
)

// LoadSchedulerConfig reads the single-row raw scheduler config. The result
// is raw on purpose: callers pass it through fsrs.NormalizeConfig, so a
// corrupted row degrades to defaults instead of failing.
func (db *DB) LoadSchedulerConfig() (fsrs.RawConfig, error) {
	var raw fsrs.RawConfig
	var weights sql.NullString
	err := db.QueryRow(`
		SELECT version, requested_retention, custom_weights, again_min_interval_days, max_interval_days
		FROM scheduler_settings WHERE id = 1
	`).Scan(&raw.Version, &raw.RequestedRetention, &weights,
		&raw.AgainMinIntervalDays, &raw.MaxIntervalDays)
	if err != nil {
		return fsrs.RawConfig{}, fmt.Errorf("load scheduler config: %w", err)
	}

	if weights.Valid && weights.String != "" {
		// A malformed weights blob is dropped, not fatal.
		var ws []float64
		if json.Unmarshal([]byte(weights.String), &ws) == nil {
			raw.CustomWeights = ws
		}
	}
	return raw, nil
}

// SaveSchedulerConfig replaces the stored raw scheduler config.
func (db *DB) SaveSchedulerConfig(raw fsrs.RawConfig) error {
	var weights any
	if raw.CustomWeights != nil {
		buf, err := json.Marshal(raw.CustomWeights)
		if err != nil {
			return fmt.Errorf("marshal custom weights: %w", err)
		}
		weights = string(buf)
	}

	_, err := db.Exec(`
		UPDATE scheduler_settings
		SET version = ?, requested_retention = ?, custom_weights = ?,
			again_min_interval_days = ?, max_interval_days = ?, updated_at = ?
		WHERE id = 1
	`, raw.Version, raw.RequestedRetention, weights,
		raw.AgainMinIntervalDays, raw.MaxIntervalDays, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save scheduler config: %w", err)
	}
	return nil
}

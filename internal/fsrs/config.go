package fsrs

import "math"

const (
	// DefaultRetention is the target recall probability used when the
	// configured value is missing or unusable.
	DefaultRetention = 0.90

	// DefaultMaxIntervalDays caps scheduling at roughly one hundred years.
	DefaultMaxIntervalDays = 36500

	minRetention = 0.01
	maxRetention = 0.999
)

// RawConfig is scheduler configuration as persisted or user-edited: any
// field may be missing, out of range, or nonsense. It is never used
// directly — pass it through NormalizeConfig first.
type RawConfig struct {
	Version              string    `json:"version"`
	RequestedRetention   float64   `json:"requested_retention"`
	CustomWeights        []float64 `json:"custom_weights,omitempty"`
	AgainMinIntervalDays int       `json:"again_min_interval_days"`
	MaxIntervalDays      int       `json:"max_interval_days"`
}

// Config is a normalized scheduler configuration. Every field is guaranteed
// in range; CustomWeights is nil unless it matched the version's arity with
// all-finite values.
type Config struct {
	Version              Version
	RequestedRetention   float64
	CustomWeights        []float64
	AgainMinIntervalDays int
	MaxIntervalDays      int
}

// NormalizeConfig validates and clamps a raw config. It never fails:
// malformed input degrades silently to the nearest valid value, so a
// corrupted on-disk config can never prevent scheduling.
func NormalizeConfig(raw RawConfig) Config {
	version := ParseVersion(raw.Version)

	retention := raw.RequestedRetention
	if retention == 0 || math.IsNaN(retention) || math.IsInf(retention, 0) {
		retention = DefaultRetention
	} else if retention < minRetention {
		retention = minRetention
	} else if retention > maxRetention {
		retention = maxRetention
	}

	var weights []float64
	if validWeights(raw.CustomWeights, version) {
		weights = make([]float64, len(raw.CustomWeights))
		copy(weights, raw.CustomWeights)
	}

	maxIvl := raw.MaxIntervalDays
	if maxIvl <= 0 {
		maxIvl = DefaultMaxIntervalDays
	}

	againMin := raw.AgainMinIntervalDays
	if againMin < 0 {
		againMin = 0
	}
	if againMin > maxIvl {
		againMin = maxIvl
	}

	return Config{
		Version:              version,
		RequestedRetention:   retention,
		CustomWeights:        weights,
		AgainMinIntervalDays: againMin,
		MaxIntervalDays:      maxIvl,
	}
}

// validWeights reports whether ws can override the defaults for version:
// exact arity and every value finite.
func validWeights(ws []float64, version Version) bool {
	if len(ws) != version.Arity() {
		return false
	}
	for _, w := range ws {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return true
}

// Weights returns the effective weight vector: the custom override when
// present, otherwise the version's defaults. The caller must not mutate it.
func (c Config) Weights() []float64 {
	if c.CustomWeights != nil {
		return c.CustomWeights
	}
	if c.Version == V6 {
		return defaultWeightsV6[:]
	}
	return defaultWeightsV5[:]
}

// Raw converts back to the persisted form.
func (c Config) Raw() RawConfig {
	return RawConfig{
		Version:              c.Version.String(),
		RequestedRetention:   c.RequestedRetention,
		CustomWeights:        c.CustomWeights,
		AgainMinIntervalDays: c.AgainMinIntervalDays,
		MaxIntervalDays:      c.MaxIntervalDays,
	}
}

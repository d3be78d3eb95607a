package fsrs

// Version selects the algorithm variant. Each variant carries its own weight
// arity and forgetting-curve derivation, chosen once at config normalization
// time rather than re-checked per call.
type Version int

const (
	V5 Version = iota
	V6
)

// ParseVersion maps a persisted version tag to a Version.
// Anything that is not recognizably v6 falls back to V5.
func ParseVersion(s string) Version {
	switch s {
	case "fsrs6", "v6", "6":
		return V6
	default:
		return V5
	}
}

// String returns the persisted tag for the version.
func (v Version) String() string {
	if v == V6 {
		return "fsrs6"
	}
	return "fsrs5"
}

// Arity returns the expected weight-vector length for the version.
func (v Version) Arity() int {
	if v == V6 {
		return 21
	}
	return 19
}

// DefaultWeights returns a copy of the built-in weight vector for the version.
func (v Version) DefaultWeights() []float64 {
	if v == V6 {
		out := make([]float64, len(defaultWeightsV6))
		copy(out, defaultWeightsV6[:])
		return out
	}
	out := make([]float64, len(defaultWeightsV5))
	copy(out, defaultWeightsV5[:])
	return out
}

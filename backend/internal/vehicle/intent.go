package vehicle

import "math"

// Intent is the driver's resolved control input, sampled once per render
// tick and consumed unchanged by every fixed tick until the next sample.
type Intent struct {
	Throttle float64 `json:"throttle"` // -1..1
	Steering float64 `json:"steering"` // -1..1
	Brake    bool    `json:"brake"`
	Drift    bool    `json:"drift"`
}

// Neutral is the coasting intent used when no input device is available.
func Neutral() Intent {
	return Intent{}
}

// Clamped returns the intent with both axes limited to [-1, 1].
// Non-finite axes resolve to zero.
func (in Intent) Clamped() Intent {
	in.Throttle = clampAxis(in.Throttle)
	in.Steering = clampAxis(in.Steering)
	return in
}

// IsNeutral reports whether the intent requests nothing.
func (in Intent) IsNeutral() bool {
	return in == Intent{}
}

// InputSampler produces the current intent. Implementations must not block.
type InputSampler interface {
	SampleIntent() Intent
}

// SamplerFunc adapts a function to InputSampler.
type SamplerFunc func() Intent

func (f SamplerFunc) SampleIntent() Intent {
	return f()
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

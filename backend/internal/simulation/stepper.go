package simulation

import "time"

// FixedStepper converts variable frame time into a whole number of fixed
// ticks, carrying the remainder to the next frame.
type FixedStepper struct {
	step     time.Duration
	maxSteps int
	acc      time.Duration
}

// NewFixedStepper creates a stepper; maxSteps bounds catch-up after a stall
// (0 means unbounded).
func NewFixedStepper(step time.Duration, maxSteps int) *FixedStepper {
	return &FixedStepper{step: step, maxSteps: maxSteps}
}

// Step is the fixed tick duration.
func (s *FixedStepper) Step() time.Duration {
	return s.step
}

// Seconds is the fixed tick duration in seconds.
func (s *FixedStepper) Seconds() float64 {
	return s.step.Seconds()
}

// Advance adds frame time and returns how many fixed ticks are due.
func (s *FixedStepper) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		s.acc += elapsed
	}
	n := int(s.acc / s.step)
	s.acc -= time.Duration(n) * s.step
	if s.maxSteps > 0 && n > s.maxSteps {
		n = s.maxSteps
		s.acc = 0
	}
	return n
}

// Alpha is the fraction of a tick left in the accumulator, for rendering
// interpolation.
func (s *FixedStepper) Alpha() float64 {
	return float64(s.acc) / float64(s.step)
}

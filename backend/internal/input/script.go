package input

import (
	"time"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

// Step holds one intent for a duration.
type Step struct {
	Duration time.Duration
	Intent   vehicle.Intent
}

// Script replays a fixed list of intents. Past the last step it is neutral.
type Script struct {
	steps   []Step
	elapsed time.Duration
}

func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Advance moves the script clock forward.
func (s *Script) Advance(dt time.Duration) {
	s.elapsed += dt
}

// Elapsed returns the script clock.
func (s *Script) Elapsed() time.Duration {
	return s.elapsed
}

// Total is the summed duration of all steps.
func (s *Script) Total() time.Duration {
	var total time.Duration
	for _, st := range s.steps {
		total += st.Duration
	}
	return total
}

// Done reports whether every step has played.
func (s *Script) Done() bool {
	return s.elapsed >= s.Total()
}

func (s *Script) SampleIntent() vehicle.Intent {
	var start time.Duration
	for _, st := range s.steps {
		if s.elapsed < start+st.Duration {
			return st.Intent
		}
		start += st.Duration
	}
	return vehicle.Neutral()
}

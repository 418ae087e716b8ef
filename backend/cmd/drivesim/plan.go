package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/input"
)

// defaultPlan coasts off the end of the start deck with no input held
// through the fall, carves a drifting right-hander, brakes and backs up.
var defaultPlan = []string{
	"2s w",
	"1.2s idle",
	"2s w+d+space",
	"1.5s w",
	"1s w+a",
	"1.5s leftshift",
	"1s s",
	"1s idle",
}

// parsePlan turns lines of "<duration> <key>+<key>..." into a script. Each
// step's intent is what the keyboard sampler reports for those keys held.
func parsePlan(lines []string) (*input.Script, error) {
	steps := make([]input.Step, 0, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		d, err := time.ParseDuration(fields[0])
		if err != nil {
			return nil, fmt.Errorf("plan line %d: %w", i+1, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("plan line %d: duration must be positive", i+1)
		}

		held := input.KeySet{}
		if len(fields) > 1 && fields[1] != "idle" {
			for _, name := range strings.Split(fields[1], "+") {
				k, err := input.ParseKey(name)
				if err != nil {
					return nil, fmt.Errorf("plan line %d: %w", i+1, err)
				}
				held[k] = true
			}
		}
		kb := input.Keyboard{Device: held}
		steps = append(steps, input.Step{Duration: d, Intent: kb.SampleIntent()})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("plan is empty")
	}
	return input.NewScript(steps...), nil
}

package input

import (
	"fmt"
	"strings"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

// Key identifies a physical key the keyboard sampler cares about.
type Key uint8

const (
	KeyW Key = iota
	KeyS
	KeyA
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyLeftShift
	KeyRightShift
	KeySpace
)

var keyNames = map[string]Key{
	"w":          KeyW,
	"s":          KeyS,
	"a":          KeyA,
	"d":          KeyD,
	"up":         KeyUp,
	"down":       KeyDown,
	"left":       KeyLeft,
	"right":      KeyRight,
	"leftshift":  KeyLeftShift,
	"rightshift": KeyRightShift,
	"space":      KeySpace,
}

// ParseKey resolves a key name such as "w", "left" or "space".
func ParseKey(name string) (Key, error) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// KeyState is a polled keyboard device.
type KeyState interface {
	IsPressed(k Key) bool
}

// KeySet is an in-memory KeyState.
type KeySet map[Key]bool

func (s KeySet) IsPressed(k Key) bool {
	return s[k]
}

// Keyboard maps held keys to an intent:
//
//	W/Up forward, S/Down reverse, D/Right right, A/Left left,
//	either Shift brakes, Space drifts.
//
// A nil Device (no keyboard attached) yields the neutral intent.
type Keyboard struct {
	Device KeyState
}

func (k Keyboard) SampleIntent() vehicle.Intent {
	if k.Device == nil {
		return vehicle.Neutral()
	}
	return vehicle.Intent{
		Throttle: k.axis(KeyW, KeyUp) - k.axis(KeyS, KeyDown),
		Steering: k.axis(KeyD, KeyRight) - k.axis(KeyA, KeyLeft),
		Brake:    k.any(KeyLeftShift, KeyRightShift),
		Drift:    k.Device.IsPressed(KeySpace),
	}
}

func (k Keyboard) any(keys ...Key) bool {
	for _, key := range keys {
		if k.Device.IsPressed(key) {
			return true
		}
	}
	return false
}

func (k Keyboard) axis(keys ...Key) float64 {
	if k.any(keys...) {
		return 1
	}
	return 0
}

package simulation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

const (
	BotSteerNormalization = 35.0
	WaypointRadius        = 4.0
)

// Autopilot drives a body around a closed list of waypoints. It is an
// InputSampler, so bots go through the same latch as human input.
type Autopilot struct {
	body      vehicle.RigidBody
	waypoints []mgl64.Vec3
	next      int
}

var _ vehicle.InputSampler = (*Autopilot)(nil)

func NewAutopilot(body vehicle.RigidBody, waypoints []mgl64.Vec3) *Autopilot {
	return &Autopilot{body: body, waypoints: waypoints}
}

// Target returns the waypoint currently steered toward.
func (a *Autopilot) Target() (mgl64.Vec3, bool) {
	if len(a.waypoints) == 0 {
		return mgl64.Vec3{}, false
	}
	return a.waypoints[a.next], true
}

func (a *Autopilot) SampleIntent() vehicle.Intent {
	target, ok := a.Target()
	if !ok {
		return vehicle.Neutral()
	}
	pos := a.body.Position()
	dx := target.X() - pos.X()
	dz := target.Z() - pos.Z()
	if math.Hypot(dx, dz) < WaypointRadius {
		a.next = (a.next + 1) % len(a.waypoints)
		target = a.waypoints[a.next]
		dx = target.X() - pos.X()
		dz = target.Z() - pos.Z()
	}

	targetHeading := math.Atan2(dx, dz) * 180 / math.Pi
	delta := normalizeSignedDeg(targetHeading - Heading(a.body.Rotation()))
	steer := clamp(delta/BotSteerNormalization, -1, 1)

	throttle := 1.0
	if math.Abs(delta) > 120 {
		throttle = -0.25
	}
	return vehicle.Intent{
		Throttle: throttle,
		Steering: steer,
		Drift:    math.Abs(delta) > 75,
	}
}

// Heading is the yaw of rotation in degrees: 0 faces +Z, 90 faces +X.
func Heading(q mgl64.Quat) float64 {
	f := vehicle.FrameOf(q).Forward
	return math.Atan2(f.X(), f.Z()) * 180 / math.Pi
}

func normalizeSignedDeg(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

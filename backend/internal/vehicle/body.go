package vehicle

import "github.com/go-gl/mathgl/mgl64"

// ForceMode selects how a force or torque request is interpreted by the
// rigid-body integrator.
type ForceMode uint8

const (
	// Force is divided by mass (or inertia for torque).
	Force ForceMode = iota
	// Acceleration is applied as-is, ignoring mass.
	Acceleration
)

func (m ForceMode) String() string {
	switch m {
	case Force:
		return "force"
	case Acceleration:
		return "acceleration"
	default:
		return "unknown"
	}
}

// Local axes of a vehicle at identity rotation. Right = +X, up = +Y,
// forward = +Z; a positive yaw turns forward toward right.
var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	localForward = mgl64.Vec3{0, 0, 1}
	localRight   = mgl64.Vec3{1, 0, 0}
)

// RigidBody is the physics collaborator the controller drives. The
// controller only reads it and submits requests; the integrator owns it.
type RigidBody interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	Velocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3

	AddForce(f mgl64.Vec3, mode ForceMode)
	AddTorque(t mgl64.Vec3, mode ForceMode)

	// MoveRotation requests a kinematic rotation, applied after force
	// integration for the current step.
	MoveRotation(q mgl64.Quat)
	// SetVelocity overwrites linear velocity immediately.
	SetVelocity(v mgl64.Vec3)
}

// Configurable is implemented by bodies that accept spawn-time setup.
type Configurable interface {
	SetCenterOfMass(offset mgl64.Vec3)
	LockRotation(pitch, roll bool)
}

// CollisionWorld answers shape queries for the ground probe.
type CollisionWorld interface {
	SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64, mask uint32, ignoreTriggers bool) bool
}

// Frame holds the world-space basis of a vehicle.
type Frame struct {
	Forward mgl64.Vec3
	Right   mgl64.Vec3
	Up      mgl64.Vec3
}

// FrameOf returns the world-space axes for rotation q.
func FrameOf(q mgl64.Quat) Frame {
	return Frame{
		Forward: q.Rotate(localForward),
		Right:   q.Rotate(localRight),
		Up:      q.Rotate(WorldUp),
	}
}

package simulation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

const (
	Gravity = -9.81

	// ContactRadius is the sphere, centered on the body pivot, that rests
	// on surfaces.
	ContactRadius = 0.25
)

// BodyConfig is the mass model of a simulated body.
type BodyConfig struct {
	Mass        float64
	Inertia     mgl64.Vec3 // diagonal, local space
	Gravity     mgl64.Vec3
	LinearDrag  float64
	AngularDrag float64
}

// DefaultBodyConfig is a small kart.
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		Mass:        150,
		Inertia:     mgl64.Vec3{60, 70, 25},
		Gravity:     mgl64.Vec3{0, Gravity, 0},
		LinearDrag:  0.05,
		AngularDrag: 0.05,
	}
}

// Body is a semi-implicit Euler rigid body. It satisfies
// vehicle.RigidBody and vehicle.Configurable.
type Body struct {
	cfg BodyConfig

	position        mgl64.Vec3
	rotation        mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3
	centerOfMass    mgl64.Vec3

	lockPitch bool
	lockRoll  bool

	linearAccel  mgl64.Vec3
	angularAccel mgl64.Vec3

	pendingRotation mgl64.Quat
	hasPending      bool
}

var (
	_ vehicle.RigidBody    = (*Body)(nil)
	_ vehicle.Configurable = (*Body)(nil)
)

// NewBody places a body at rest.
func NewBody(cfg BodyConfig, position mgl64.Vec3, rotation mgl64.Quat) *Body {
	return &Body{
		cfg:      cfg,
		position: position,
		rotation: rotation.Normalize(),
	}
}

func (b *Body) Position() mgl64.Vec3        { return b.position }
func (b *Body) Rotation() mgl64.Quat        { return b.rotation }
func (b *Body) Velocity() mgl64.Vec3        { return b.velocity }
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

// CenterOfMass returns the world-space mass center.
func (b *Body) CenterOfMass() mgl64.Vec3 {
	return b.position.Add(b.rotation.Rotate(b.centerOfMass))
}

func (b *Body) AddForce(f mgl64.Vec3, mode vehicle.ForceMode) {
	if mode == vehicle.Force {
		f = f.Mul(1 / b.cfg.Mass)
	}
	b.linearAccel = b.linearAccel.Add(f)
}

func (b *Body) AddTorque(t mgl64.Vec3, mode vehicle.ForceMode) {
	if mode == vehicle.Force {
		local := b.rotation.Inverse().Rotate(t)
		for i := range local {
			local[i] /= b.cfg.Inertia[i]
		}
		t = b.rotation.Rotate(local)
	}
	b.angularAccel = b.angularAccel.Add(t)
}

// MoveRotation records a kinematic rotation. Integrate composes the change
// it represents on top of the rotation produced by angular velocity.
func (b *Body) MoveRotation(q mgl64.Quat) {
	b.pendingRotation = q.Normalize()
	b.hasPending = true
}

func (b *Body) SetVelocity(v mgl64.Vec3) {
	b.velocity = v
}

func (b *Body) SetCenterOfMass(offset mgl64.Vec3) {
	b.centerOfMass = offset
}

// LockRotation freezes rotation about the world X (pitch) and Z (roll) axes.
func (b *Body) LockRotation(pitch, roll bool) {
	b.lockPitch = pitch
	b.lockRoll = roll
}

// Teleport resets pose and clears all motion.
func (b *Body) Teleport(position mgl64.Vec3, rotation mgl64.Quat) {
	b.position = position
	b.rotation = rotation.Normalize()
	b.velocity = mgl64.Vec3{}
	b.angularVelocity = mgl64.Vec3{}
	b.linearAccel = mgl64.Vec3{}
	b.angularAccel = mgl64.Vec3{}
	b.hasPending = false
}

// Integrate advances the body by dt seconds and clears accumulators.
func (b *Body) Integrate(dt float64) {
	before := b.rotation

	b.velocity = b.velocity.Add(b.linearAccel.Add(b.cfg.Gravity).Mul(dt))
	b.velocity = b.velocity.Mul(1 / (1 + b.cfg.LinearDrag*dt))

	b.angularVelocity = b.angularVelocity.Add(b.angularAccel.Mul(dt))
	b.angularVelocity = b.angularVelocity.Mul(1 / (1 + b.cfg.AngularDrag*dt))
	if b.lockPitch {
		b.angularVelocity[0] = 0
	}
	if b.lockRoll {
		b.angularVelocity[2] = 0
	}

	b.position = b.position.Add(b.velocity.Mul(dt))

	spin := mgl64.Quat{W: 0, V: b.angularVelocity.Mul(0.5 * dt)}.Mul(b.rotation)
	b.rotation = b.rotation.Add(spin).Normalize()

	if b.hasPending {
		delta := before.Inverse().Mul(b.pendingRotation)
		b.rotation = b.rotation.Mul(delta).Normalize()
		b.hasPending = false
	}

	b.linearAccel = mgl64.Vec3{}
	b.angularAccel = mgl64.Vec3{}
}

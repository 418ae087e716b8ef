package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type forceCall struct {
	v    mgl64.Vec3
	mode ForceMode
}

// fakeBody records every request instead of integrating.
type fakeBody struct {
	position        mgl64.Vec3
	rotation        mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	forces       []forceCall
	torques      []forceCall
	moved        []mgl64.Quat
	velocitySets []mgl64.Vec3

	centerOfMass mgl64.Vec3
	lockedPitch  bool
	lockedRoll   bool
}

func newFakeBody() *fakeBody {
	return &fakeBody{rotation: mgl64.QuatIdent()}
}

func (b *fakeBody) Position() mgl64.Vec3        { return b.position }
func (b *fakeBody) Rotation() mgl64.Quat        { return b.rotation }
func (b *fakeBody) Velocity() mgl64.Vec3        { return b.velocity }
func (b *fakeBody) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

func (b *fakeBody) AddForce(f mgl64.Vec3, mode ForceMode) {
	b.forces = append(b.forces, forceCall{f, mode})
}

func (b *fakeBody) AddTorque(t mgl64.Vec3, mode ForceMode) {
	b.torques = append(b.torques, forceCall{t, mode})
}

func (b *fakeBody) MoveRotation(q mgl64.Quat) { b.moved = append(b.moved, q) }

func (b *fakeBody) SetVelocity(v mgl64.Vec3) {
	b.velocitySets = append(b.velocitySets, v)
	b.velocity = v
}

func (b *fakeBody) SetCenterOfMass(offset mgl64.Vec3) { b.centerOfMass = offset }

func (b *fakeBody) LockRotation(pitch, roll bool) {
	b.lockedPitch = pitch
	b.lockedRoll = roll
}

func (b *fakeBody) reset() {
	b.forces = nil
	b.torques = nil
	b.moved = nil
	b.velocitySets = nil
}

// fakeWorld answers every cast with hit.
type fakeWorld struct {
	hit   bool
	casts int

	lastOrigin   mgl64.Vec3
	lastRadius   float64
	lastDir      mgl64.Vec3
	lastDistance float64
	lastMask     uint32
	lastIgnore   bool
}

func (w *fakeWorld) SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64, mask uint32, ignoreTriggers bool) bool {
	w.casts++
	w.lastOrigin = origin
	w.lastRadius = radius
	w.lastDir = dir
	w.lastDistance = maxDistance
	w.lastMask = mask
	w.lastIgnore = ignoreTriggers
	return w.hit
}

func vecAlmostEqual(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

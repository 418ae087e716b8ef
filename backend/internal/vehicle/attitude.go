package vehicle

import "github.com/go-gl/mathgl/mgl64"

// AirTorque is the airborne control acceleration: yaw about world up from
// steering, pitch about the vehicle's right axis from throttle (negated).
func AirTorque(right mgl64.Vec3, in Intent, t Tuning) mgl64.Vec3 {
	yaw := WorldUp.Mul(in.Steering * t.AirYawTorque)
	pitch := right.Mul(-in.Throttle * t.AirPitchTorque)
	return yaw.Add(pitch)
}

// UprightTorque is a PD controller pulling the vehicle's up axis toward
// world up. The proportional axis is zero when level.
func UprightTorque(up, angularVelocity mgl64.Vec3, t Tuning) mgl64.Vec3 {
	tilt := up.Cross(WorldUp)
	return tilt.Mul(t.UprightStrength).Sub(angularVelocity.Mul(t.UprightDamping))
}

package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// sign follows the engine convention sign(0) = +1.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// DriveForce returns the motor acceleration along forward and whether it
// applies this tick. The speed cap is soft: once |forwardSpeed| reaches
// MaxSpeed no more acceleration is added in the direction of travel, but
// throttle against the direction of travel is never blocked.
func DriveForce(forward mgl64.Vec3, forwardSpeed, throttle float64, t Tuning) (mgl64.Vec3, bool) {
	if math.Abs(forwardSpeed) < t.MaxSpeed || sign(throttle) != sign(forwardSpeed) {
		return forward.Mul(throttle * t.MotorForce), true
	}
	return mgl64.Vec3{}, false
}

// BrakeForce is a drag proportional to velocity, independent of the cap.
func BrakeForce(velocity mgl64.Vec3, t Tuning) mgl64.Vec3 {
	return velocity.Mul(-t.BrakeForce)
}

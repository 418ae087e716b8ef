package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// steeringNormalization scales turn rate so tuning values stay readable at
// the stock 50 Hz step. It has no physical meaning.
const steeringNormalization = 50.0

// SteeringScale is the turn authority left at forwardSpeed (>= 0): a linear
// falloff that never drops below MinSteeringFactorAtTopSpeed.
func SteeringScale(forwardSpeed float64, t Tuning) float64 {
	return math.Max(t.MinSteeringFactorAtTopSpeed, 1-forwardSpeed*t.SteeringAtSpeed)
}

// TurnAmount is the yaw in degrees to apply this tick. Below MinSpeedToSteer
// it is zero; when rolling backward the steering input is inverted.
func TurnAmount(signedForwardSpeed, steering float64, drifting bool, dt float64, t Tuning) float64 {
	forwardSpeed := math.Abs(signedForwardSpeed)
	if forwardSpeed < t.MinSpeedToSteer {
		return 0
	}

	driftMultiplier := 1.0
	if drifting {
		driftMultiplier = t.DriftSteeringMultiplier
	}
	reverse := sign(signedForwardSpeed)

	return steering * reverse * t.SteeringPower * SteeringScale(forwardSpeed, t) * driftMultiplier * dt * steeringNormalization
}

// YawRotation is a rotation of deg degrees about the local up axis.
func YawRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), WorldUp)
}

package vehicle

import "github.com/go-gl/mathgl/mgl64"

// GripResult is the velocity produced by the lateral grip step.
type GripResult struct {
	Velocity      mgl64.Vec3
	LateralBefore float64
	LateralAfter  float64
}

// LateralGrip keeps the forward component of velocity and moves the lateral
// component toward zero by grip*dt (clamped to [0,1]). The vertical
// component is dropped, as the grounded vehicle is held on the surface.
func LateralGrip(velocity mgl64.Vec3, f Frame, grip, dt float64) GripResult {
	forward := f.Forward.Mul(velocity.Dot(f.Forward))
	lateral := velocity.Dot(f.Right)

	blend := mgl64.Clamp(grip*dt, 0, 1)
	adjusted := lateral + (0-lateral)*blend

	return GripResult{
		Velocity:      forward.Add(f.Right.Mul(adjusted)),
		LateralBefore: lateral,
		LateralAfter:  adjusted,
	}
}

// TargetGrip picks the drift or normal grip.
func TargetGrip(drifting bool, t Tuning) float64 {
	if drifting {
		return t.DriftLateralGrip
	}
	return t.NormalLateralGrip
}

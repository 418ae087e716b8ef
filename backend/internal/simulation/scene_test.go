package simulation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

var down = mgl64.Vec3{0, -1, 0}

func TestSphereCastAgainstPlane(t *testing.T) {
	s := FlatTrack()
	if !s.SphereCast(mgl64.Vec3{0, 0.8, 0}, 0.35, down, 0.6, vehicle.AllLayers, true) {
		t.Fatal("expected hit within distance")
	}
	if s.SphereCast(mgl64.Vec3{0, 1.5, 0}, 0.35, down, 0.6, vehicle.AllLayers, true) {
		t.Fatal("expected miss beyond distance")
	}
	if s.SphereCast(mgl64.Vec3{0, 0.8, 0}, 0.35, mgl64.Vec3{0, 1, 0}, 10, vehicle.AllLayers, true) {
		t.Fatal("expected miss when casting away from the plane")
	}
}

func TestSphereCastStartingInsideCountsAsHit(t *testing.T) {
	s := FlatTrack()
	if !s.SphereCast(mgl64.Vec3{0, 0.1, 0}, 0.35, down, 0.01, vehicle.AllLayers, true) {
		t.Fatal("expected initial overlap to count as a hit")
	}
}

func TestSphereCastHonoursMaskAndTriggers(t *testing.T) {
	s := NewScene(Plane{Layer: LayerProps})
	origin := mgl64.Vec3{0, 0.8, 0}
	if s.SphereCast(origin, 0.35, down, 0.6, LayerTrack, true) {
		t.Fatal("expected masked-out layer to be ignored")
	}
	if !s.SphereCast(origin, 0.35, down, 0.6, LayerTrack|LayerProps, true) {
		t.Fatal("expected layer in mask to hit")
	}

	trig := NewScene(Plane{Layer: LayerTrack, Trigger: true})
	if trig.SphereCast(origin, 0.35, down, 0.6, vehicle.AllLayers, true) {
		t.Fatal("expected trigger to be ignored")
	}
	if !trig.SphereCast(origin, 0.35, down, 0.6, vehicle.AllLayers, false) {
		t.Fatal("expected trigger to hit when not ignored")
	}
}

func TestSphereCastAgainstBox(t *testing.T) {
	s := NewScene(Box{Min: mgl64.Vec3{-2, 0, -2}, Max: mgl64.Vec3{2, 1, 2}, Layer: LayerTrack})
	if !s.SphereCast(mgl64.Vec3{0, 1.8, 0}, 0.35, down, 0.6, vehicle.AllLayers, true) {
		t.Fatal("expected hit on box deck")
	}
	if s.SphereCast(mgl64.Vec3{5, 1.8, 0}, 0.35, down, 0.6, vehicle.AllLayers, true) {
		t.Fatal("expected miss beside the box")
	}
}

func TestSupportHeightPicksHighestSurfaceBelow(t *testing.T) {
	s := NewScene(
		Plane{Layer: LayerTrack},
		Box{Min: mgl64.Vec3{-2, 0, -2}, Max: mgl64.Vec3{2, 1, 2}, Layer: LayerTrack},
		Box{Min: mgl64.Vec3{-2, 5, -2}, Max: mgl64.Vec3{2, 6, 2}, Layer: LayerProps, Trigger: true},
	)
	if h, ok := s.SupportHeight(0, 10, 0); !ok || h != 1 {
		t.Fatalf("expected box deck at 1, got %f ok=%v", h, ok)
	}
	if h, ok := s.SupportHeight(0, 0.5, 0); !ok || h != 0 {
		t.Fatalf("expected plane below the deck, got %f ok=%v", h, ok)
	}
	if _, ok := NewScene().SupportHeight(0, 1, 0); ok {
		t.Fatal("expected empty scene to have no support")
	}
}

func TestResolveLiftsBodyOutOfGround(t *testing.T) {
	s := FlatTrack()
	b := NewBody(DefaultBodyConfig(), mgl64.Vec3{0, 0.1, 0}, mgl64.QuatIdent())
	b.SetVelocity(mgl64.Vec3{1, -3, 0})

	if !s.Resolve(b) {
		t.Fatal("expected contact")
	}
	if math.Abs(b.Position().Y()-ContactRadius) > 1e-12 {
		t.Fatalf("expected body on surface, got y=%f", b.Position().Y())
	}
	if v := b.Velocity(); v.Y() != 0 || v.X() != 1 {
		t.Fatalf("expected only downward velocity removed, got %v", v)
	}
}

func TestBodyForceModes(t *testing.T) {
	cfg := DefaultBodyConfig()
	cfg.Gravity = mgl64.Vec3{}
	cfg.LinearDrag = 0
	b := NewBody(cfg, mgl64.Vec3{}, mgl64.QuatIdent())

	b.AddForce(mgl64.Vec3{0, 0, 150}, vehicle.Force)
	b.AddForce(mgl64.Vec3{0, 0, 1}, vehicle.Acceleration)
	b.Integrate(1)
	if v := b.Velocity().Z(); math.Abs(v-2) > 1e-9 {
		t.Fatalf("expected 1 m/s from force plus 1 m/s from acceleration, got %f", v)
	}
}

func TestBodyMoveRotationComposesAfterSpin(t *testing.T) {
	cfg := DefaultBodyConfig()
	cfg.Gravity = mgl64.Vec3{}
	cfg.AngularDrag = 0
	b := NewBody(cfg, mgl64.Vec3{}, mgl64.QuatIdent())

	b.MoveRotation(mgl64.QuatRotate(mgl64.DegToRad(10), vehicle.WorldUp))
	b.Integrate(0.02)
	if h := Heading(b.Rotation()); math.Abs(h-10) > 1e-9 {
		t.Fatalf("expected 10 degree heading, got %f", h)
	}

	b.AddTorque(mgl64.Vec3{0, 1, 0}, vehicle.Acceleration)
	b.MoveRotation(b.Rotation().Mul(mgl64.QuatRotate(mgl64.DegToRad(5), vehicle.WorldUp)))
	b.Integrate(0.5)
	if h := Heading(b.Rotation()); h <= 15 {
		t.Fatalf("expected spin and kinematic turn to add up, got %f", h)
	}
}

func TestBodyLockRotationKeepsLevel(t *testing.T) {
	b := NewBody(DefaultBodyConfig(), mgl64.Vec3{}, mgl64.QuatIdent())
	b.LockRotation(true, true)
	b.AddTorque(mgl64.Vec3{5, 1, 5}, vehicle.Acceleration)
	b.Integrate(0.1)

	av := b.AngularVelocity()
	if av.X() != 0 || av.Z() != 0 || av.Y() <= 0 {
		t.Fatalf("expected only yaw spin, got %v", av)
	}
	up := vehicle.FrameOf(b.Rotation()).Up
	if math.Abs(up.Y()-1) > 1e-9 {
		t.Fatalf("expected body to stay level, got up=%v", up)
	}
}

func TestCenterOfMassFollowsRotation(t *testing.T) {
	b := NewBody(DefaultBodyConfig(), mgl64.Vec3{1, 2, 3}, mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}))
	b.SetCenterOfMass(mgl64.Vec3{0, -0.35, 0})
	com := b.CenterOfMass()
	if !com.ApproxEqualThreshold(mgl64.Vec3{1, 2.35, 3}, 1e-9) {
		t.Fatalf("unexpected center of mass %v", com)
	}
}

func TestAutopilotSteersTowardWaypoint(t *testing.T) {
	b := NewBody(DefaultBodyConfig(), mgl64.Vec3{}, mgl64.QuatIdent())

	right := NewAutopilot(b, []mgl64.Vec3{{20, 0, 20}}).SampleIntent()
	if right.Steering <= 0 || right.Throttle != 1 || right.Drift {
		t.Fatalf("expected right turn at full throttle, got %+v", right)
	}

	behind := NewAutopilot(b, []mgl64.Vec3{{0, 0, -20}}).SampleIntent()
	if behind.Throttle >= 0 || !behind.Drift {
		t.Fatalf("expected reverse and drift for target behind, got %+v", behind)
	}

	if in := NewAutopilot(b, nil).SampleIntent(); !in.IsNeutral() {
		t.Fatalf("expected neutral without waypoints, got %+v", in)
	}
}

func TestAutopilotAdvancesWaypoints(t *testing.T) {
	b := NewBody(DefaultBodyConfig(), mgl64.Vec3{0, 0, 59}, mgl64.QuatIdent())
	ap := NewAutopilot(b, DefaultCircuit())
	ap.SampleIntent()
	target, _ := ap.Target()
	if target != DefaultCircuit()[1] {
		t.Fatalf("expected next waypoint, got %v", target)
	}
}

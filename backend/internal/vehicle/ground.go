package vehicle

// probeLift raises the probe origin above the body position so the cast
// starts clear of the surface the vehicle rests on.
const probeLift = 0.2

// GroundState is the per-tick classification that gates which force set
// applies. It is never carried across ticks.
type GroundState uint8

const (
	Airborne GroundState = iota
	Grounded
)

func (s GroundState) String() string {
	if s == Grounded {
		return "grounded"
	}
	return "airborne"
}

// Classify maps a probe result to a ground state.
func Classify(hit bool) GroundState {
	if hit {
		return Grounded
	}
	return Airborne
}

// GroundProbe casts a sphere straight down from just above the body.
type GroundProbe struct {
	body     RigidBody
	world    CollisionWorld
	radius   float64
	distance float64
	mask     uint32
}

// NewGroundProbe binds a probe to a body using the tuning's check shape.
func NewGroundProbe(body RigidBody, world CollisionWorld, t Tuning) *GroundProbe {
	return &GroundProbe{
		body:     body,
		world:    world,
		radius:   t.GroundCheckRadius,
		distance: t.GroundCheckDistance,
		mask:     t.GroundMask,
	}
}

// IsGrounded reports whether the cast hits any non-trigger collider in the
// mask. No hysteresis: every call is a fresh query.
func (p *GroundProbe) IsGrounded() bool {
	origin := p.body.Position().Add(WorldUp.Mul(probeLift))
	return p.world.SphereCast(origin, p.radius, WorldUp.Mul(-1), p.distance, p.mask, true)
}

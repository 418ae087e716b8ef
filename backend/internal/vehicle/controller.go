package vehicle

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

var (
	// ErrNoRigidBody is returned when a controller is built without a body.
	ErrNoRigidBody = errors.New("vehicle: rigid body is required")
	// ErrNoCollisionWorld is returned when the full profile has nothing to probe.
	ErrNoCollisionWorld = errors.New("vehicle: collision world is required for the full profile")
)

// TickReport describes what one fixed tick did to the body.
type TickReport struct {
	Tick         uint64
	State        GroundState
	Transitioned bool
	Intent       Intent

	ForwardSpeed float64
	DriveApplied bool
	SpeedCapped  bool
	BrakeApplied bool

	TurnDegrees   float64
	LateralBefore float64
	LateralAfter  float64

	// Torque is the air-control or upright-assist acceleration requested.
	Torque mgl64.Vec3
}

// Stats are running counters for one controller.
type Stats struct {
	Ticks         uint64
	AirborneTicks uint64
	Transitions   uint64
}

// Controller turns driver intent into force, torque and the two documented
// direct state overwrites on a single rigid body.
type Controller struct {
	body    RigidBody
	probe   *GroundProbe
	tuning  Tuning
	sampler InputSampler
	log     zerolog.Logger

	intent Intent
	state  GroundState
	stats  Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithSampler sets the input source read by SampleInput.
func WithSampler(s InputSampler) Option {
	return func(c *Controller) {
		c.sampler = s
	}
}

// NewController validates the tuning and prepares the body for it: the
// center of mass is moved and, for the simplified profile, pitch and roll
// are locked.
func NewController(body RigidBody, world CollisionWorld, t Tuning, opts ...Option) (*Controller, error) {
	if body == nil {
		return nil, ErrNoRigidBody
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		body:   body,
		tuning: t,
		log:    zerolog.Nop(),
		state:  Grounded,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !t.Simplified() {
		if world == nil {
			return nil, ErrNoCollisionWorld
		}
		c.probe = NewGroundProbe(body, world, t)
	}

	if cfg, ok := body.(Configurable); ok {
		cfg.SetCenterOfMass(t.CenterOfMassOffset)
		cfg.LockRotation(t.Simplified(), t.Simplified())
	} else if t.Simplified() {
		return nil, fmt.Errorf("vehicle: simplified profile needs a body that can lock rotation, got %T", body)
	}

	c.log.Debug().
		Str("profile", string(t.Profile)).
		Float64("max_speed", t.MaxSpeed).
		Msg("controller ready")
	return c, nil
}

// SampleInput latches the sampler's current intent. Call it at render rate;
// fixed ticks between two calls all see the same snapshot. Without a
// sampler the intent resolves to neutral.
func (c *Controller) SampleInput() Intent {
	if c.sampler == nil {
		c.intent = Neutral()
		return c.intent
	}
	c.intent = c.sampler.SampleIntent().Clamped()
	return c.intent
}

// SetIntent latches an intent directly, bypassing the sampler.
func (c *Controller) SetIntent(in Intent) {
	c.intent = in.Clamped()
}

// Intent returns the latched intent.
func (c *Controller) Intent() Intent {
	return c.intent
}

// Tuning returns the controller's archetype.
func (c *Controller) Tuning() Tuning {
	return c.tuning
}

// State returns the ground state of the last tick.
func (c *Controller) State() GroundState {
	return c.state
}

// Stats returns running counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// FixedTick runs one simulation step of duration dt seconds:
//
//	airborne: air yaw/pitch torque only
//	grounded: drive -> steer -> grip -> upright
//
// The simplified profile skips the probe, air control and upright assist.
func (c *Controller) FixedTick(dt float64) TickReport {
	in := c.intent

	state := Grounded
	if c.probe != nil {
		state = Classify(c.probe.IsGrounded())
	}

	c.stats.Ticks++
	report := TickReport{Tick: c.stats.Ticks, State: state, Intent: in}
	if c.stats.Ticks > 1 && state != c.state {
		report.Transitioned = true
		c.stats.Transitions++
		c.log.Debug().
			Uint64("tick", c.stats.Ticks).
			Stringer("from", c.state).
			Stringer("to", state).
			Msg("ground state changed")
	}
	c.state = state

	if state == Airborne {
		c.stats.AirborneTicks++
		frame := FrameOf(c.body.Rotation())
		report.Torque = AirTorque(frame.Right, in, c.tuning)
		c.body.AddTorque(report.Torque, Acceleration)
		return report
	}

	c.applyDrive(in, &report)
	c.applySteering(in, dt, &report)
	c.applyGrip(in, dt, &report)
	if !c.tuning.Simplified() {
		c.applyUpright(&report)
	}
	return report
}

func (c *Controller) applyDrive(in Intent, report *TickReport) {
	velocity := c.body.Velocity()
	frame := FrameOf(c.body.Rotation())
	forwardSpeed := velocity.Dot(frame.Forward)
	report.ForwardSpeed = forwardSpeed

	force, ok := DriveForce(frame.Forward, forwardSpeed, in.Throttle, c.tuning)
	report.DriveApplied = ok
	report.SpeedCapped = !ok
	if ok {
		c.body.AddForce(force, Acceleration)
	}

	if in.Brake {
		c.body.AddForce(BrakeForce(velocity, c.tuning), Acceleration)
		report.BrakeApplied = true
	}
}

// applySteering overwrites orientation kinematically instead of applying a
// torque; the body composes it after force integration.
func (c *Controller) applySteering(in Intent, dt float64, report *TickReport) {
	rotation := c.body.Rotation()
	signedForwardSpeed := c.body.Velocity().Dot(FrameOf(rotation).Forward)

	turn := TurnAmount(signedForwardSpeed, in.Steering, in.Drift, dt, c.tuning)
	if turn == 0 {
		return
	}
	report.TurnDegrees = turn
	c.body.MoveRotation(rotation.Mul(YawRotation(turn)).Normalize())
}

// applyGrip is the one direct velocity overwrite: lateral slip is damped
// instantly and scaled by dt instead of being force-accumulated.
func (c *Controller) applyGrip(in Intent, dt float64, report *TickReport) {
	frame := FrameOf(c.body.Rotation())
	res := LateralGrip(c.body.Velocity(), frame, TargetGrip(in.Drift, c.tuning), dt)
	report.LateralBefore = res.LateralBefore
	report.LateralAfter = res.LateralAfter
	c.body.SetVelocity(res.Velocity)
}

func (c *Controller) applyUpright(report *TickReport) {
	frame := FrameOf(c.body.Rotation())
	report.Torque = UprightTorque(frame.Up, c.body.AngularVelocity(), c.tuning)
	c.body.AddTorque(report.Torque, Acceleration)
}

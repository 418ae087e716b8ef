package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidTuning is wrapped by every Tuning.Validate failure.
var ErrInvalidTuning = errors.New("invalid tuning")

// Profile selects which parts of the controller run.
type Profile string

const (
	// ProfileFull probes the ground and switches between grounded and
	// airborne control, with upright assist while grounded.
	ProfileFull Profile = "full"
	// ProfileSimplified locks pitch/roll on the body at spawn and always
	// runs the grounded sequence without upright assist.
	ProfileSimplified Profile = "simplified"
)

// AllLayers matches every collision layer.
const AllLayers uint32 = ^uint32(0)

// Tuning is one vehicle archetype. It is loaded once at spawn and treated
// as read-only afterwards.
type Tuning struct {
	Profile Profile `mapstructure:"profile" yaml:"profile" json:"profile"`

	MotorForce float64 `mapstructure:"motorForce" yaml:"motorForce" json:"motorForce"`
	MaxSpeed   float64 `mapstructure:"maxSpeed" yaml:"maxSpeed" json:"maxSpeed"`
	BrakeForce float64 `mapstructure:"brakeForce" yaml:"brakeForce" json:"brakeForce"`

	SteeringPower               float64 `mapstructure:"steeringPower" yaml:"steeringPower" json:"steeringPower"`
	SteeringAtSpeed             float64 `mapstructure:"steeringAtSpeed" yaml:"steeringAtSpeed" json:"steeringAtSpeed"`
	MinSteeringFactorAtTopSpeed float64 `mapstructure:"minSteeringFactorAtTopSpeed" yaml:"minSteeringFactorAtTopSpeed" json:"minSteeringFactorAtTopSpeed"`
	MinSpeedToSteer             float64 `mapstructure:"minSpeedToSteer" yaml:"minSpeedToSteer" json:"minSpeedToSteer"`

	NormalLateralGrip       float64 `mapstructure:"normalLateralGrip" yaml:"normalLateralGrip" json:"normalLateralGrip"`
	DriftLateralGrip        float64 `mapstructure:"driftLateralGrip" yaml:"driftLateralGrip" json:"driftLateralGrip"`
	DriftSteeringMultiplier float64 `mapstructure:"driftSteeringMultiplier" yaml:"driftSteeringMultiplier" json:"driftSteeringMultiplier"`

	GroundCheckDistance float64 `mapstructure:"groundCheckDistance" yaml:"groundCheckDistance" json:"groundCheckDistance"`
	GroundCheckRadius   float64 `mapstructure:"groundCheckRadius" yaml:"groundCheckRadius" json:"groundCheckRadius"`
	GroundMask          uint32  `mapstructure:"groundMask" yaml:"groundMask" json:"groundMask"`

	AirYawTorque   float64 `mapstructure:"airYawTorque" yaml:"airYawTorque" json:"airYawTorque"`
	AirPitchTorque float64 `mapstructure:"airPitchTorque" yaml:"airPitchTorque" json:"airPitchTorque"`

	UprightStrength float64 `mapstructure:"uprightStrength" yaml:"uprightStrength" json:"uprightStrength"`
	UprightDamping  float64 `mapstructure:"uprightDamping" yaml:"uprightDamping" json:"uprightDamping"`

	CenterOfMassOffset mgl64.Vec3 `mapstructure:"centerOfMassOffset" yaml:"centerOfMassOffset" json:"centerOfMassOffset"`
}

// DefaultTuning is the stock kart archetype.
func DefaultTuning() Tuning {
	return Tuning{
		Profile: ProfileFull,

		MotorForce: 35,
		MaxSpeed:   25,
		BrakeForce: 45,

		SteeringPower:               3.2,
		SteeringAtSpeed:             0.08,
		MinSteeringFactorAtTopSpeed: 0.35,
		MinSpeedToSteer:             0.5,

		NormalLateralGrip:       6,
		DriftLateralGrip:        2,
		DriftSteeringMultiplier: 1.4,

		GroundCheckDistance: 0.6,
		GroundCheckRadius:   0.35,
		GroundMask:          AllLayers,

		AirYawTorque:   40,
		AirPitchTorque: 25,

		UprightStrength: 18,
		UprightDamping:  2.5,

		CenterOfMassOffset: mgl64.Vec3{0, -0.35, 0},
	}
}

// SimplifiedTuning is DefaultTuning running the simplified profile.
func SimplifiedTuning() Tuning {
	t := DefaultTuning()
	t.Profile = ProfileSimplified
	return t
}

// Simplified reports whether the tuning runs the simplified profile.
func (t Tuning) Simplified() bool {
	return t.Profile == ProfileSimplified
}

// Validate checks every scalar is finite and non-negative and the profile
// is known.
func (t Tuning) Validate() error {
	switch t.Profile {
	case ProfileFull, ProfileSimplified:
	default:
		return fmt.Errorf("%w: unknown profile %q", ErrInvalidTuning, t.Profile)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"motorForce", t.MotorForce},
		{"maxSpeed", t.MaxSpeed},
		{"brakeForce", t.BrakeForce},
		{"steeringPower", t.SteeringPower},
		{"steeringAtSpeed", t.SteeringAtSpeed},
		{"minSteeringFactorAtTopSpeed", t.MinSteeringFactorAtTopSpeed},
		{"minSpeedToSteer", t.MinSpeedToSteer},
		{"normalLateralGrip", t.NormalLateralGrip},
		{"driftLateralGrip", t.DriftLateralGrip},
		{"driftSteeringMultiplier", t.DriftSteeringMultiplier},
		{"groundCheckDistance", t.GroundCheckDistance},
		{"groundCheckRadius", t.GroundCheckRadius},
		{"airYawTorque", t.AirYawTorque},
		{"airPitchTorque", t.AirPitchTorque},
		{"uprightStrength", t.UprightStrength},
		{"uprightDamping", t.UprightDamping},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %v", ErrInvalidTuning, f.name, f.value)
		}
	}
	for i, c := range t.CenterOfMassOffset {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: centerOfMassOffset[%d] must be finite", ErrInvalidTuning, i)
		}
	}
	return nil
}

package types

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 represents a position or vector in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVec3 converts a math vector to its wire form.
func FromVec3(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Quat is an orientation on the wire.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// FromQuat converts a math quaternion to its wire form.
func FromQuat(q mgl64.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// VehicleInput is the per-render-tick driver intent sent by a client.
type VehicleInput struct {
	PlayerID string  `json:"player_id"`
	Sequence uint64  `json:"sequence"`
	Throttle float64 `json:"throttle"` // -1..1
	Steer    float64 `json:"steer"`    // -1..1
	Brake    bool    `json:"brake"`
	Drift    bool    `json:"drift"`
	ClientMS int64   `json:"client_ms"`
}

// VehicleState is the replicated state for one vehicle.
type VehicleState struct {
	PlayerID        string       `json:"player_id"`
	DisplayName     string       `json:"display_name"`
	Archetype       string       `json:"archetype"`
	IsBot           bool         `json:"is_bot"`
	Position        Vec3         `json:"position"`
	Rotation        Quat         `json:"rotation"`
	Heading         float64      `json:"heading"` // degrees, 0 = +Z, clockwise from above
	Velocity        Vec3         `json:"velocity"`
	AngularVelocity Vec3         `json:"angular_velocity"`
	ForwardSpeed    float64      `json:"forward_speed"`
	LateralSpeed    float64      `json:"lateral_speed"`
	IsGrounded      bool         `json:"is_grounded"`
	IsDrifting      bool         `json:"is_drifting"`
	LastInput       VehicleInput `json:"last_input"`
}

// WorldState is replicated to all clients.
type WorldState struct {
	MatchID   string                  `json:"match_id"`
	Tick      uint64                  `json:"tick"`
	CreatedAt time.Time               `json:"created_at"`
	Vehicles  map[string]VehicleState `json:"vehicles"`
	Events    []GameplayEvent         `json:"events"`
}

// GameplayEvent tracks state changes worth UI/audio feedback.
type GameplayEvent struct {
	Type       string `json:"type"` // spawn|despawn|airborne|landed|drift_start
	PlayerID   string `json:"player_id,omitempty"`
	OccurredMS int64  `json:"occurred_ms"`
}

// Hello asks the server to spawn the connection's vehicle.
type Hello struct {
	DisplayName string `json:"display_name"`
	Archetype   string `json:"archetype,omitempty"`
}

// ClientEnvelope is sent from client to server.
type ClientEnvelope struct {
	Type  string        `json:"type"` // hello|input|ping
	Hello *Hello        `json:"hello,omitempty"`
	Input *VehicleInput `json:"input,omitempty"`
}

// ServerEnvelope is sent from server to client.
type ServerEnvelope struct {
	Type       string      `json:"type"` // welcome|state|pong|error
	PlayerID   string      `json:"player_id,omitempty"`
	Archetypes []string    `json:"archetypes,omitempty"`
	Tick       uint64      `json:"tick,omitempty"`
	State      *WorldState `json:"state,omitempty"`
	ServerMS   int64       `json:"server_ms,omitempty"`
	Message    string      `json:"message,omitempty"`
	AckSeq     uint64      `json:"ack_seq,omitempty"`
}

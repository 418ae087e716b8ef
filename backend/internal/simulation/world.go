package simulation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/input"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/types"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

const (
	DefaultArchetype = "default"

	// DriftSlipThreshold is the lateral speed above which a grounded
	// vehicle holding drift counts as drifting.
	DriftSlipThreshold = 1.0

	spawnSpacing = 4.0
)

// ErrUnknownArchetype is returned when a spawn names a missing archetype.
var ErrUnknownArchetype = errors.New("unknown archetype")

// VehicleSpawn defines a vehicle to add to the world.
type VehicleSpawn struct {
	PlayerID    string
	DisplayName string
	Archetype   string
	IsBot       bool
	Waypoints   []mgl64.Vec3

	// Sampler replaces the network input of a human vehicle, for scripted
	// and local drives. ApplyInput is rejected for such vehicles.
	Sampler vehicle.InputSampler
}

type vehicleEntry struct {
	id          string
	displayName string
	archetype   string
	isBot       bool

	body       *Body
	ctrl       *vehicle.Controller
	remote     *input.Remote
	lastInput  types.VehicleInput
	lastReport vehicle.TickReport
	drifting   bool
}

// Stats are world-wide tick counters.
type Stats struct {
	Ticks         uint64
	GroundedTicks uint64
	AirborneTicks uint64
	Transitions   uint64
	Vehicles      int
}

// World is the authoritative simulation state.
type World struct {
	mu         sync.RWMutex
	matchID    string
	createdAt  time.Time
	tick       uint64
	scene      *Scene
	archetypes map[string]vehicle.Tuning
	bodyConfig BodyConfig
	staleAfter time.Duration
	log        zerolog.Logger

	vehicles map[string]*vehicleEntry
	slots    int
	events   []types.GameplayEvent
	stats    Stats
}

// WorldOption configures a World.
type WorldOption func(*World)

func WithLogger(log zerolog.Logger) WorldOption {
	return func(w *World) { w.log = log }
}

func WithBodyConfig(cfg BodyConfig) WorldOption {
	return func(w *World) { w.bodyConfig = cfg }
}

// WithInputStaleAfter sets how long remote input stays valid.
func WithInputStaleAfter(d time.Duration) WorldOption {
	return func(w *World) { w.staleAfter = d }
}

// NewWorld creates an empty world over scene. The archetype map is copied
// with lower-cased names; a "default" archetype is added when missing.
func NewWorld(matchID string, scene *Scene, archetypes map[string]vehicle.Tuning, opts ...WorldOption) *World {
	arch := make(map[string]vehicle.Tuning, len(archetypes)+1)
	for k, v := range archetypes {
		arch[strings.ToLower(k)] = v
	}
	if _, ok := arch[DefaultArchetype]; !ok {
		arch[DefaultArchetype] = vehicle.DefaultTuning()
	}
	if scene == nil {
		scene = FlatTrack()
	}

	w := &World{
		matchID:    matchID,
		createdAt:  time.Now().UTC(),
		scene:      scene,
		archetypes: arch,
		bodyConfig: DefaultBodyConfig(),
		staleAfter: input.DefaultStaleAfter,
		log:        zerolog.Nop(),
		vehicles:   make(map[string]*vehicleEntry),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Spawn adds a vehicle and returns its id. Spawning an existing id updates
// its display name and keeps the vehicle where it is. Archetype names match
// case-insensitively.
func (w *World) Spawn(req VehicleSpawn) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawnLocked(req)
}

func (w *World) spawnLocked(req VehicleSpawn) (string, error) {
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}
	if e, ok := w.vehicles[req.PlayerID]; ok {
		if req.DisplayName != "" {
			e.displayName = req.DisplayName
		}
		return e.id, nil
	}
	req.Archetype = strings.ToLower(req.Archetype)
	if req.Archetype == "" {
		req.Archetype = DefaultArchetype
	}
	tuning, ok := w.archetypes[req.Archetype]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownArchetype, req.Archetype)
	}
	if req.DisplayName == "" {
		req.DisplayName = req.PlayerID
	}

	body := NewBody(w.bodyConfig, w.spawnPoint(w.slots), mgl64.QuatIdent())
	e := &vehicleEntry{
		id:          req.PlayerID,
		displayName: req.DisplayName,
		archetype:   req.Archetype,
		isBot:       req.IsBot,
		body:        body,
	}

	var sampler vehicle.InputSampler
	switch {
	case req.Sampler != nil:
		sampler = req.Sampler
	case req.IsBot:
		waypoints := req.Waypoints
		if len(waypoints) == 0 {
			waypoints = DefaultCircuit()
		}
		sampler = NewAutopilot(body, waypoints)
	default:
		e.remote = input.NewRemote(w.staleAfter)
		sampler = e.remote
	}

	ctrl, err := vehicle.NewController(body, w.scene, tuning,
		vehicle.WithSampler(sampler),
		vehicle.WithLogger(w.log.With().Str("vehicle", e.id).Logger()))
	if err != nil {
		return "", fmt.Errorf("spawn %s: %w", e.id, err)
	}
	e.ctrl = ctrl
	e.lastReport = vehicle.TickReport{State: ctrl.State()}

	w.slots++
	w.vehicles[e.id] = e
	w.stats.Vehicles = len(w.vehicles)
	w.emit("spawn", e.id)
	w.log.Info().Str("vehicle", e.id).Str("archetype", e.archetype).Bool("bot", e.isBot).Msg("vehicle spawned")
	return e.id, nil
}

// Despawn removes a vehicle.
func (w *World) Despawn(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.vehicles[id]; !ok {
		return
	}
	delete(w.vehicles, id)
	w.stats.Vehicles = len(w.vehicles)
	w.emit("despawn", id)
}

// ApplyInput stores the latest client input for the player. It returns
// false for unknown players and bots.
func (w *World) ApplyInput(in types.VehicleInput) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.vehicles[in.PlayerID]
	if !ok || e.remote == nil {
		return false
	}
	intent := vehicle.Intent{Throttle: in.Throttle, Steering: in.Steer, Brake: in.Brake, Drift: in.Drift}
	if e.remote.Store(in.Sequence, intent) {
		e.lastInput = in
	}
	return true
}

// Sample latches every vehicle's current intent. Call it once per frame;
// Tick never samples.
func (w *World) Sample() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.vehicles {
		e.ctrl.SampleInput()
	}
}

// Tick advances the world simulation by dt seconds.
func (w *World) Tick(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	w.stats.Ticks++
	w.events = w.events[:0]

	for _, id := range w.sortedIDs() {
		e := w.vehicles[id]
		report := e.ctrl.FixedTick(dt)
		e.body.Integrate(dt)
		w.scene.Resolve(e.body)
		e.lastReport = report

		if report.State == vehicle.Grounded {
			w.stats.GroundedTicks++
		} else {
			w.stats.AirborneTicks++
		}
		if report.Transitioned {
			w.stats.Transitions++
			if report.State == vehicle.Grounded {
				w.emit("landed", id)
			} else {
				w.emit("airborne", id)
			}
		}

		drifting := report.State == vehicle.Grounded && report.Intent.Drift && math.Abs(report.LateralAfter) > DriftSlipThreshold
		if drifting && !e.drifting {
			w.emit("drift_start", id)
		}
		e.drifting = drifting
	}
}

// Snapshot returns a deep copy of state for safe replication.
func (w *World) Snapshot() types.WorldState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	vehicles := make(map[string]types.VehicleState, len(w.vehicles))
	for id, e := range w.vehicles {
		vehicles[id] = e.state()
	}
	events := make([]types.GameplayEvent, len(w.events))
	copy(events, w.events)

	return types.WorldState{
		MatchID:   w.matchID,
		Tick:      w.tick,
		CreatedAt: w.createdAt,
		Vehicles:  vehicles,
		Events:    events,
	}
}

// Events returns the gameplay events raised by the most recent tick.
func (w *World) Events() []types.GameplayEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	events := make([]types.GameplayEvent, len(w.events))
	copy(events, w.events)
	return events
}

// AckedSequence is the last input sequence accepted for a human vehicle.
func (w *World) AckedSequence(id string) uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.vehicles[id]
	if !ok || e.remote == nil {
		return 0
	}
	return e.remote.Sequence()
}

// Stats returns world counters.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Archetypes lists configured archetype names.
func (w *World) Archetypes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.archetypes))
	for name := range w.archetypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HumanCount returns number of human-controlled vehicles.
func (w *World) HumanCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	count := 0
	for _, e := range w.vehicles {
		if !e.isBot {
			count++
		}
	}
	return count
}

// EnsureBot guarantees one bot is driving when exactly one human is
// present. It returns the bot id, or "" when no bot is needed.
func (w *World) EnsureBot() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	humans := 0
	botID := ""
	for id, e := range w.vehicles {
		if e.isBot {
			botID = id
		} else {
			humans++
		}
	}
	if humans != 1 {
		return ""
	}
	if botID != "" {
		return botID
	}

	id, err := w.spawnLocked(VehicleSpawn{
		PlayerID:    "bot_" + uuid.NewString()[:8],
		DisplayName: "Pace Bot",
		IsBot:       true,
	})
	if err != nil {
		w.log.Error().Err(err).Msg("bot spawn failed")
		return ""
	}
	return id
}

// RemoveAllBots removes every bot, used when enough humans are available.
func (w *World) RemoveAllBots() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, e := range w.vehicles {
		if e.isBot {
			delete(w.vehicles, id)
			w.emit("despawn", id)
		}
	}
	w.stats.Vehicles = len(w.vehicles)
}

// Body exposes a vehicle's rigid body, mainly for tools and tests.
func (w *World) Body(id string) (*Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.vehicles[id]
	if !ok {
		return nil, false
	}
	return e.body, true
}

// LastReport returns the controller report of the most recent tick.
func (w *World) LastReport(id string) (vehicle.TickReport, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.vehicles[id]
	if !ok {
		return vehicle.TickReport{}, false
	}
	return e.lastReport, true
}

func (w *World) emit(kind, id string) {
	w.events = append(w.events, types.GameplayEvent{
		Type:       kind,
		PlayerID:   id,
		OccurredMS: time.Now().UTC().UnixMilli(),
	})
}

func (w *World) sortedIDs() []string {
	ids := make([]string, 0, len(w.vehicles))
	for id := range w.vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// spawnPoint lines vehicles up across the start, alternating sides.
func (w *World) spawnPoint(slot int) mgl64.Vec3 {
	x := float64((slot+1)/2) * spawnSpacing
	if slot%2 == 1 {
		x = -x
	}
	y := 0.0
	if h, ok := w.scene.SupportHeight(x, math.MaxFloat64, 0); ok {
		y = h
	}
	return mgl64.Vec3{x, y + ContactRadius, 0}
}

func (e *vehicleEntry) state() types.VehicleState {
	rot := e.body.Rotation()
	frame := vehicle.FrameOf(rot)
	vel := e.body.Velocity()
	return types.VehicleState{
		PlayerID:        e.id,
		DisplayName:     e.displayName,
		Archetype:       e.archetype,
		IsBot:           e.isBot,
		Position:        types.FromVec3(e.body.Position()),
		Rotation:        types.FromQuat(rot),
		Heading:         Heading(rot),
		Velocity:        types.FromVec3(vel),
		AngularVelocity: types.FromVec3(e.body.AngularVelocity()),
		ForwardSpeed:    vel.Dot(frame.Forward),
		LateralSpeed:    vel.Dot(frame.Right),
		IsGrounded:      e.lastReport.State == vehicle.Grounded,
		IsDrifting:      e.drifting,
		LastInput:       e.lastInput,
	}
}

// DefaultCircuit is a rectangular loop around the spawn line.
func DefaultCircuit() []mgl64.Vec3 {
	return []mgl64.Vec3{
		{0, 0, 60},
		{40, 0, 60},
		{40, 0, -20},
		{0, 0, -20},
	}
}

package main

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/input"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/sfx"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/logger"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/types"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

const (
	driverID  = "driver"
	frameRate = 60
	deckTop   = 3.0
	deckEnd   = 45.0
)

// demoTrack is a raised start deck that ends in a drop onto open ground.
func demoTrack() *simulation.Scene {
	return simulation.NewScene(
		simulation.Plane{Layer: simulation.LayerTrack},
		simulation.Box{
			Min:   mgl64.Vec3{-10, 0, -10},
			Max:   mgl64.Vec3{10, deckTop, deckEnd},
			Layer: simulation.LayerTrack,
		},
	)
}

type sounds struct {
	player  sfx.Player
	thump   *sfx.Clip
	screech *sfx.Clip
}

type drive struct {
	log      logger.Logger
	world    *simulation.World
	script   *input.Script
	stepper  *simulation.FixedStepper
	sounds   *sounds
	realtime bool
}

type driveResult struct {
	SimTime time.Duration
	Ticks   int
	Events  map[string]int
	Final   types.VehicleState
	Stats   simulation.Stats
}

func newDrive(log logger.Logger, tuning vehicle.Tuning, script *input.Script, tick time.Duration) (*drive, error) {
	world := simulation.NewWorld("drivesim", demoTrack(),
		map[string]vehicle.Tuning{simulation.DefaultArchetype: tuning},
		simulation.WithLogger(log))
	if _, err := world.Spawn(simulation.VehicleSpawn{
		PlayerID:    driverID,
		DisplayName: "Scripted Driver",
		Sampler:     script,
	}); err != nil {
		return nil, err
	}
	return &drive{
		log:     log,
		world:   world,
		script:  script,
		stepper: simulation.NewFixedStepper(tick, 5),
	}, nil
}

// run plays the script to the end at a fixed frame rate, sampling input
// once per frame and logging telemetry once per simulated second.
func (d *drive) run() driveResult {
	frame := time.Second / frameRate
	res := driveResult{Events: map[string]int{}}
	nextReport := time.Second

	for !d.script.Done() {
		d.world.Sample()
		for i, steps := 0, d.stepper.Advance(frame); i < steps; i++ {
			d.world.Tick(d.stepper.Seconds())
			res.Ticks++
			for _, ev := range d.world.Events() {
				res.Events[ev.Type]++
				d.onEvent(ev)
			}
		}
		d.script.Advance(frame)
		res.SimTime += frame

		if res.SimTime >= nextReport {
			d.report(res.SimTime)
			nextReport += time.Second
		}
		if d.realtime {
			time.Sleep(frame)
		}
	}

	res.Final = d.world.Snapshot().Vehicles[driverID]
	res.Stats = d.world.Stats()
	return res
}

func (d *drive) report(at time.Duration) {
	car := d.world.Snapshot().Vehicles[driverID]
	intent := d.script.SampleIntent()
	d.log.Info().
		Dur("t", at).
		Float64("x", car.Position.X).
		Float64("y", car.Position.Y).
		Float64("z", car.Position.Z).
		Float64("speed", car.ForwardSpeed).
		Float64("lateral", car.LateralSpeed).
		Float64("heading", car.Heading).
		Bool("grounded", car.IsGrounded).
		Bool("drifting", car.IsDrifting).
		Float64("throttle", intent.Throttle).
		Float64("steer", intent.Steering).
		Msg("telemetry")
}

func (d *drive) onEvent(ev types.GameplayEvent) {
	d.log.Debug().Str("event", ev.Type).Str("vehicle", ev.PlayerID).Msg("gameplay event")
	if d.sounds == nil {
		return
	}
	body, ok := d.world.Body(ev.PlayerID)
	if !ok {
		return
	}
	switch ev.Type {
	case "landed":
		d.sounds.player.Play(d.sounds.thump, 1, 1, body.Position())
	case "drift_start":
		speed := body.Velocity().Len()
		d.sounds.player.Play(d.sounds.screech, 0.6, 0.9+speed/100, body.Position())
	}
}

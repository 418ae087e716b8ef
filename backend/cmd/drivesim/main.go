package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/config"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/sfx"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/logger"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

const audioRate = beep.SampleRate(44100)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "drivesim:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("drivesim", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "YAML config file with archetypes")
	archetype := fs.StringP("archetype", "a", simulation.DefaultArchetype, "archetype to drive")
	plan := fs.StringArray("plan", nil, `drive step "<duration> <key>+<key>", repeatable`)
	audio := fs.Bool("audio", false, "play landing and drift sounds")
	realtime := fs.Bool("realtime", false, "pace the drive at wall-clock speed (implied by --audio)")
	logLevel := fs.String("log-level", "", "override the configured log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	tuning, err := cfg.Archetype(*archetype)
	if err != nil {
		return err
	}

	if fs.Arg(0) == "tuning" {
		return printTuning(out, *archetype, tuning)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	log := logger.New("drivesim").Level(logger.ParseLevel(level))

	lines := *plan
	if len(lines) == 0 {
		lines = defaultPlan
	}
	script, err := parsePlan(lines)
	if err != nil {
		return err
	}

	d, err := newDrive(log, tuning, script, cfg.TickDuration())
	if err != nil {
		return err
	}
	d.realtime = *realtime || *audio

	if *audio {
		mgr := sfx.NewManager(audioRate, 8, sfx.WithLogger(log))
		defer mgr.Close()
		if err := mgr.OpenSpeaker(100 * time.Millisecond); err != nil {
			log.Warn().Err(err).Msg("audio unavailable, driving silently")
		} else {
			d.sounds = &sounds{
				player:  mgr,
				thump:   sfx.ThumpClip(audioRate),
				screech: sfx.ScreechClip(audioRate),
			}
		}
	}

	log.Info().
		Str("archetype", *archetype).
		Str("profile", string(tuning.Profile)).
		Dur("plan", script.Total()).
		Msg("drive started")

	res := d.run()

	log.Info().
		Dur("sim_time", res.SimTime).
		Int("ticks", res.Ticks).
		Uint64("airborne_ticks", res.Stats.AirborneTicks).
		Uint64("transitions", res.Stats.Transitions).
		Int("landings", res.Events["landed"]).
		Int("drifts", res.Events["drift_start"]).
		Float64("final_speed", res.Final.ForwardSpeed).
		Float64("final_heading", res.Final.Heading).
		Msg("drive finished")
	return nil
}

func printTuning(out io.Writer, name string, t vehicle.Tuning) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]map[string]vehicle.Tuning{
		"archetypes": {name: t},
	})
}

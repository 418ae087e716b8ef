package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.TickHz)
	assert.Equal(t, 30, cfg.ReplicationHz)
	assert.Equal(t, 5, cfg.MaxCatchUpTicks)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.InputStaleAfter)
	assert.Equal(t, 20*time.Millisecond, cfg.TickDuration())
	assert.Equal(t, []string{ArcadeArchetype, simulation.DefaultArchetype}, cfg.ArchetypeNames())

	def, err := cfg.Archetype(simulation.DefaultArchetype)
	require.NoError(t, err)
	assert.Equal(t, vehicle.DefaultTuning(), def)

	arcade, err := cfg.Archetype(ArcadeArchetype)
	require.NoError(t, err)
	assert.True(t, arcade.Simplified())
}

func TestLoad_FileOverridesAndMergesArchetypes(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
tickHz: 100
logLevel: debug
inputStaleAfter: 250ms
archetypes:
  drifter:
    driftLateralGrip: 1.2
    driftSteeringMultiplier: 1.8
    centerOfMassOffset: [0, -0.5, 0]
  default:
    maxSpeed: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 100, cfg.TickHz)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.InputStaleAfter)
	assert.Equal(t, path, cfg.TuningFile)

	drifter, err := cfg.Archetype("drifter")
	require.NoError(t, err)
	assert.Equal(t, 1.2, drifter.DriftLateralGrip)
	assert.Equal(t, 1.8, drifter.DriftSteeringMultiplier)
	assert.Equal(t, mgl64.Vec3{0, -0.5, 0}, drifter.CenterOfMassOffset)
	// untouched fields keep their defaults
	assert.Equal(t, vehicle.DefaultTuning().MotorForce, drifter.MotorForce)
	assert.Equal(t, vehicle.ProfileFull, drifter.Profile)

	def, err := cfg.Archetype(simulation.DefaultArchetype)
	require.NoError(t, err)
	assert.Equal(t, 30.0, def.MaxSpeed)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tickHz: 100\n")
	t.Setenv("TICK_HZ", "60")
	t.Setenv("GAME_ADDR", ":7777")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.TickHz)
	assert.Equal(t, ":7777", cfg.Addr)
}

func TestLoad_TuningFileFromEnv(t *testing.T) {
	path := writeConfig(t, "replicationHz: 20\n")
	t.Setenv("TUNING_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.ReplicationHz)
	assert.Equal(t, path, cfg.TuningFile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/game.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_RejectsInvalidTuning(t *testing.T) {
	path := writeConfig(t, `
archetypes:
  broken:
    motorForce: -3
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vehicle.ErrInvalidTuning))
	assert.Contains(t, err.Error(), "broken")
}

func TestLoad_RejectsUnknownProfile(t *testing.T) {
	path := writeConfig(t, `
archetypes:
  odd:
    profile: hover
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, vehicle.ErrInvalidTuning)
}

func TestLoad_RejectsNonPositiveRates(t *testing.T) {
	path := writeConfig(t, "tickHz: 0\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_RejectsRatesWithZeroPeriod(t *testing.T) {
	for _, body := range []string{
		"tickHz: 2000000000\n",
		"replicationHz: 2000000000\n",
	} {
		_, err := Load(writeConfig(t, body))
		assert.ErrorIs(t, err, ErrInvalidConfig, body)
	}

	cfg, err := Load(writeConfig(t, "tickHz: 1000000000\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Nanosecond, cfg.TickDuration())
}

func TestArchetype_MatchesDeclaredCase(t *testing.T) {
	path := writeConfig(t, `
archetypes:
  Drifter:
    driftLateralGrip: 1.2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.ArchetypeNames(), "drifter")

	for _, name := range []string{"Drifter", "drifter", "DRIFTER"} {
		got, err := cfg.Archetype(name)
		require.NoError(t, err, name)
		assert.Equal(t, 1.2, got.DriftLateralGrip)
	}

	w := simulation.NewWorld("m1", nil, cfg.Archetypes())
	id, err := w.Spawn(simulation.VehicleSpawn{PlayerID: "p1", Archetype: "Drifter"})
	require.NoError(t, err)
	assert.Equal(t, "drifter", w.Snapshot().Vehicles[id].Archetype)
}

func TestArchetype_Unknown(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	_, err = cfg.Archetype("monster-truck")
	assert.ErrorIs(t, err, simulation.ErrUnknownArchetype)
}

func TestArchetypes_ReturnsCopy(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	all := cfg.Archetypes()
	all[simulation.DefaultArchetype] = vehicle.Tuning{}

	def, err := cfg.Archetype(simulation.DefaultArchetype)
	require.NoError(t, err)
	assert.Equal(t, vehicle.DefaultTuning(), def)
}

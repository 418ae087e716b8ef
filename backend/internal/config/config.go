package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

// ArcadeArchetype is the built-in simplified-profile archetype.
const ArcadeArchetype = "arcade-simple"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved server configuration. Archetypes are validated
// once at load time and never change afterwards.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	TickHz          int           `mapstructure:"tickHz"`
	ReplicationHz   int           `mapstructure:"replicationHz"`
	MaxCatchUpTicks int           `mapstructure:"maxCatchUpTicks"`
	LogLevel        string        `mapstructure:"logLevel"`
	InputStaleAfter time.Duration `mapstructure:"inputStaleAfter"`
	TuningFile      string        `mapstructure:"tuningFile"`

	archetypes map[string]vehicle.Tuning
}

// Load resolves defaults, then the YAML file at path (or TUNING_FILE when
// path is empty), then environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("tickHz", 50)
	v.SetDefault("replicationHz", 30)
	v.SetDefault("maxCatchUpTicks", 5)
	v.SetDefault("logLevel", "info")
	v.SetDefault("inputStaleAfter", "500ms")
	v.SetDefault("tuningFile", "")

	for key, env := range map[string]string{
		"addr":            "GAME_ADDR",
		"tickHz":          "TICK_HZ",
		"replicationHz":   "REPLICATION_HZ",
		"logLevel":        "LOG_LEVEL",
		"inputStaleAfter": "INPUT_STALE_AFTER",
		"tuningFile":      "TUNING_FILE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path == "" {
		path = v.GetString("tuningFile")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.TuningFile = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	archetypes, err := loadArchetypes(v)
	if err != nil {
		return nil, err
	}
	cfg.archetypes = archetypes
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validateRate("tickHz", c.TickHz); err != nil {
		return err
	}
	if err := validateRate("replicationHz", c.ReplicationHz); err != nil {
		return err
	}
	if c.MaxCatchUpTicks < 0 {
		return fmt.Errorf("%w: maxCatchUpTicks must not be negative", ErrInvalidConfig)
	}
	return nil
}

// validateRate rejects rates whose period does not fit in a whole
// nanosecond.
func validateRate(key string, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, key, hz)
	}
	if time.Second/time.Duration(hz) == 0 {
		return fmt.Errorf("%w: %s must be at most %d, got %d", ErrInvalidConfig, key, int64(time.Second), hz)
	}
	return nil
}

// loadArchetypes decodes each entry under "archetypes" over DefaultTuning,
// so a file only lists the values it changes. Names are case-insensitive and
// stored lower-case.
func loadArchetypes(v *viper.Viper) (map[string]vehicle.Tuning, error) {
	out := map[string]vehicle.Tuning{
		simulation.DefaultArchetype: vehicle.DefaultTuning(),
		ArcadeArchetype:             vehicle.SimplifiedTuning(),
	}
	for key := range v.GetStringMap("archetypes") {
		name := strings.ToLower(key)
		t, ok := out[name]
		if !ok {
			t = vehicle.DefaultTuning()
		}
		if err := v.UnmarshalKey("archetypes."+key, &t); err != nil {
			return nil, fmt.Errorf("decode archetype %q: %w", name, err)
		}
		out[name] = t
	}
	for name, t := range out {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("archetype %q: %w", name, err)
		}
	}
	return out, nil
}

// TickDuration is the fixed simulation step.
func (c *Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

// ReplicationInterval is the snapshot broadcast period.
func (c *Config) ReplicationInterval() time.Duration {
	return time.Second / time.Duration(c.ReplicationHz)
}

// Archetype returns the named tuning, matching names case-insensitively.
func (c *Config) Archetype(name string) (vehicle.Tuning, error) {
	t, ok := c.archetypes[strings.ToLower(name)]
	if !ok {
		return vehicle.Tuning{}, fmt.Errorf("%w: %q", simulation.ErrUnknownArchetype, name)
	}
	return t, nil
}

// Archetypes returns a copy of every archetype by name.
func (c *Config) Archetypes() map[string]vehicle.Tuning {
	out := make(map[string]vehicle.Tuning, len(c.archetypes))
	for k, v := range c.archetypes {
		out[k] = v
	}
	return out
}

// ArchetypeNames lists archetype names in order.
func (c *Config) ArchetypeNames() []string {
	names := make([]string, 0, len(c.archetypes))
	for name := range c.archetypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRepulsionStrength    = -300.0
	DefaultLinkDistance         = 100.0
	DefaultCollisionRadius      = 40.0
	DefaultCenterStrength       = 0.02
	DefaultAxisStrength         = 0.008
	DefaultDensityGenericFactor = 15.0
	DefaultDensityChargeFactor  = 0.2
	DefaultDensityMaxSize       = 800.0

	DefaultAlphaDecay          = 0.02
	DefaultVelocityDecay       = 0.2
	DefaultAlphaMin            = 0.001
	DefaultLinkStrength        = 0.5
	DefaultCollisionIterations = 2
	DefaultCollisionMargin     = 4.0
	DefaultTheta               = 0.9
	DefaultExactThreshold      = 64
	DefaultParallelThreshold   = 1024

	DefaultTickThrottle    = 16 * time.Millisecond
	DefaultPersistDebounce = 800 * time.Millisecond
)

// Simulation holds the user-facing physics parameters. RepulsionStrength is
// conventionally negative; every other factor is non-negative.
type Simulation struct {
	RepulsionStrength    float64 `yaml:"repulsion_strength" toml:"repulsion_strength"`
	LinkDistance         float64 `yaml:"link_distance" toml:"link_distance" validate:"gte=0"`
	CollisionRadius      float64 `yaml:"collision_radius" toml:"collision_radius" validate:"gte=0"`
	CenterStrength       float64 `yaml:"center_strength" toml:"center_strength" validate:"gte=0,lte=1"`
	AxisStrength         float64 `yaml:"axis_strength" toml:"axis_strength" validate:"gte=0,lte=1"`
	DensityGenericFactor float64 `yaml:"density_generic_factor" toml:"density_generic_factor" validate:"gte=0"`
	DensityChargeFactor  float64 `yaml:"density_charge_factor" toml:"density_charge_factor" validate:"gte=0"`
	DensityMaxSize       float64 `yaml:"density_max_size" toml:"density_max_size" validate:"gte=0"`
}

// Engine holds integration and cooling constants.
type Engine struct {
	AlphaDecay          float64 `yaml:"alpha_decay" toml:"alpha_decay" validate:"gt=0,lt=1"`
	VelocityDecay       float64 `yaml:"velocity_decay" toml:"velocity_decay" validate:"gte=0,lte=1"`
	AlphaMin            float64 `yaml:"alpha_min" toml:"alpha_min" validate:"gt=0,lt=1"`
	LinkStrength        float64 `yaml:"link_strength" toml:"link_strength" validate:"gte=0,lte=1"`
	CollisionIterations int     `yaml:"collision_iterations" toml:"collision_iterations" validate:"gte=0,lte=16"`
	CollisionMargin     float64 `yaml:"collision_margin" toml:"collision_margin" validate:"gte=0"`
	Theta               float64 `yaml:"theta" toml:"theta" validate:"gte=0,lte=2"`
	ExactThreshold      int     `yaml:"exact_threshold" toml:"exact_threshold" validate:"gte=0"`
	ParallelThreshold   int     `yaml:"parallel_threshold" toml:"parallel_threshold" validate:"gte=0"`
}

// Bridge holds the renderer throttle and persistence debounce intervals.
type Bridge struct {
	TickThrottle    time.Duration `yaml:"tick_throttle" toml:"tick_throttle" validate:"gte=0"`
	PersistDebounce time.Duration `yaml:"persist_debounce" toml:"persist_debounce" validate:"gte=0"`
}

type Log struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json console"`
}

type Config struct {
	Simulation Simulation `yaml:"simulation" toml:"simulation"`
	Engine     Engine     `yaml:"engine" toml:"engine"`
	Bridge     Bridge     `yaml:"bridge" toml:"bridge"`
	Log        Log        `yaml:"log" toml:"log"`
}

func DefaultSimulation() Simulation {
	return Simulation{
		RepulsionStrength:    DefaultRepulsionStrength,
		LinkDistance:         DefaultLinkDistance,
		CollisionRadius:      DefaultCollisionRadius,
		CenterStrength:       DefaultCenterStrength,
		AxisStrength:         DefaultAxisStrength,
		DensityGenericFactor: DefaultDensityGenericFactor,
		DensityChargeFactor:  DefaultDensityChargeFactor,
		DensityMaxSize:       DefaultDensityMaxSize,
	}
}

func DefaultEngine() Engine {
	return Engine{
		AlphaDecay:          DefaultAlphaDecay,
		VelocityDecay:       DefaultVelocityDecay,
		AlphaMin:            DefaultAlphaMin,
		LinkStrength:        DefaultLinkStrength,
		CollisionIterations: DefaultCollisionIterations,
		CollisionMargin:     DefaultCollisionMargin,
		Theta:               DefaultTheta,
		ExactThreshold:      DefaultExactThreshold,
		ParallelThreshold:   DefaultParallelThreshold,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: DefaultSimulation(),
		Engine:     DefaultEngine(),
		Bridge: Bridge{
			TickThrottle:    DefaultTickThrottle,
			PersistDebounce: DefaultPersistDebounce,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks a Simulation on its own, as used for runtime patches.
func (s Simulation) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads a YAML or TOML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch formatOf(path) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch formatOf(path) {
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	case "yaml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		data = out
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	return os.WriteFile(path, data, 0644)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

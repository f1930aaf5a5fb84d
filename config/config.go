// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Ant        AntConfig        `yaml:"ant"`
	Steering   SteeringConfig   `yaml:"steering"`
	Track      TrackConfig      `yaml:"track"`
	Nest       NestConfig       `yaml:"nest"`
	Food       FoodConfig       `yaml:"food"`
	Population PopulationConfig `yaml:"population"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// The world is centered on the origin with +Y pointing up.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds the fixed time step.
type PhysicsConfig struct {
	DT        float64 `yaml:"dt"`         // seconds per tick
	TimeScale float64 `yaml:"time_scale"` // constant speed-up applied to dt (headless runs)
}

// KindWeight is one entry of the weighted ant kind distribution.
type KindWeight struct {
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
}

// AntConfig holds per-ant tunables.
type AntConfig struct {
	Speed              float64      `yaml:"speed"`               // world units per second
	MaxTurnRate        float64      `yaml:"max_turn_rate"`       // radians per second
	SegmentRadius      float64      `yaml:"segment_radius"`      // body segment radius, used for contact tests
	MaxSatiation       float64      `yaml:"max_satiation"`
	SatiationLossRate  float64      `yaml:"satiation_loss_rate"` // per second
	EatRate            float64      `yaml:"eat_rate"`            // fraction of the deficit eaten from cargo per second
	SenseAngle         float64      `yaml:"sense_angle"`         // side sample offset and jitter bound (radians)
	SenseDistance      float64      `yaml:"sense_distance"`
	SenseRadius        float64      `yaml:"sense_radius"`
	MaxCarry           float64      `yaml:"max_carry"`
	TrackConcentration float64      `yaml:"track_concentration"` // deposit rate per second
	KindWeights        []KindWeight `yaml:"kind_weights"`
}

// SteeringConfig holds goal sensing and edge avoidance parameters.
type SteeringConfig struct {
	EdgeMinDistance  float64 `yaml:"edge_min_distance"`  // hard margin, full repulsion
	EdgeSoftDistance float64 `yaml:"edge_soft_distance"` // repulsion starts here
	EdgeStrength     float64 `yaml:"edge_strength"`
	DetectWeight     float64 `yaml:"detect_weight"` // sample weight when the target is directly sensed
	MinWeight        float64 `yaml:"min_weight"`    // floor for sample weights
}

// TrackConfig holds pheromone field parameters.
type TrackConfig struct {
	Resolution          float64 `yaml:"resolution"` // world units per cell edge
	Radius              float64 `yaml:"radius"`     // deposit radius around an ant
	ConcentrationFactor float64 `yaml:"concentration_factor"`
	DiffusionFactor     float64 `yaml:"diffusion_factor"`
}

// NestConfig holds nest parameters.
type NestConfig struct {
	X                  float64 `yaml:"x"`
	Y                  float64 `yaml:"y"`
	Radius             float64 `yaml:"radius"`
	TrackConcentration float64 `yaml:"track_concentration"` // ambient emission per second
	SpawnInterval      float64 `yaml:"spawn_interval"`      // seconds between spawn attempts
	InitialFood        float64 `yaml:"initial_food"`
}

// FoodConfig holds food source parameters.
type FoodConfig struct {
	InitialCount int     `yaml:"initial_count"`
	MinAmount    float64 `yaml:"min_amount"`
	MaxAmount    float64 `yaml:"max_amount"`
	EdgeMargin   float64 `yaml:"edge_margin"` // random placement keeps this far from the edges
}

// PopulationConfig holds initial seeding parameters.
type PopulationConfig struct {
	InitialAnts   int     `yaml:"initial_ants"`
	InitialSpread float64 `yaml:"initial_spread"` // half-width of the square around the nest
}

// ParallelConfig controls the parallel sensing pass.
type ParallelConfig struct {
	Threshold int `yaml:"threshold"` // minimum ant count before workers are used
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT            float64 // Physics.DT * Physics.TimeScale
	HalfWidth     float64
	HalfHeight    float64
	GridWidth     int     // pheromone cells along X
	GridHeight    int     // pheromone cells along Y
	DecayPerTick  float64 // ConcentrationFactor^DT
	MaxTurn       float64 // MaxTurnRate * DT
	ContactRadius float64 // SegmentRadius * 1.5
	WalkMargin    float64 // closest an ant may walk to an edge, SegmentRadius * 3
	MaxFoodRadius float64 // sqrt(MaxAmount/pi)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file. Sequences are replaced wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it after mutating a loaded config in code.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate reports setup errors that would make a run meaningless.
// Kind weights are checked against the declared kinds by the systems package.
func (c *Config) Validate() error {
	switch {
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("%w: world size must be positive, got %gx%g", ErrInvalid, c.World.Width, c.World.Height)
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive, got %g", ErrInvalid, c.Physics.DT)
	case c.Physics.TimeScale <= 0:
		return fmt.Errorf("%w: physics.time_scale must be positive, got %g", ErrInvalid, c.Physics.TimeScale)
	case c.Track.Resolution <= 0:
		return fmt.Errorf("%w: track.resolution must be positive, got %g", ErrInvalid, c.Track.Resolution)
	case c.Track.DiffusionFactor < 0 || c.Track.DiffusionFactor >= 0.25:
		return fmt.Errorf("%w: track.diffusion_factor must be in [0, 0.25), got %g", ErrInvalid, c.Track.DiffusionFactor)
	case c.Track.ConcentrationFactor <= 0 || c.Track.ConcentrationFactor > 1:
		return fmt.Errorf("%w: track.concentration_factor must be in (0, 1], got %g", ErrInvalid, c.Track.ConcentrationFactor)
	case c.Ant.MaxSatiation <= 0:
		return fmt.Errorf("%w: ant.max_satiation must be positive, got %g", ErrInvalid, c.Ant.MaxSatiation)
	case c.Ant.Speed < 0:
		return fmt.Errorf("%w: ant.speed must not be negative, got %g", ErrInvalid, c.Ant.Speed)
	case c.Ant.SenseRadius < 0:
		return fmt.Errorf("%w: ant.sense_radius must not be negative, got %g", ErrInvalid, c.Ant.SenseRadius)
	case c.Ant.SegmentRadius < 0:
		return fmt.Errorf("%w: ant.segment_radius must not be negative, got %g", ErrInvalid, c.Ant.SegmentRadius)
	case walkMargin(c.Ant.SegmentRadius) >= min(c.World.Width, c.World.Height)/2:
		return fmt.Errorf("%w: ant.segment_radius %g leaves no room to walk in a %gx%g world",
			ErrInvalid, c.Ant.SegmentRadius, c.World.Width, c.World.Height)
	case c.Ant.MaxCarry < 0:
		return fmt.Errorf("%w: ant.max_carry must not be negative, got %g", ErrInvalid, c.Ant.MaxCarry)
	case c.Food.MinAmount <= 0 || c.Food.MinAmount > c.Food.MaxAmount:
		return fmt.Errorf("%w: food amount range [%g, %g] is empty", ErrInvalid, c.Food.MinAmount, c.Food.MaxAmount)
	case c.Nest.Radius <= 0:
		return fmt.Errorf("%w: nest.radius must be positive, got %g", ErrInvalid, c.Nest.Radius)
	case c.Nest.SpawnInterval <= 0:
		return fmt.Errorf("%w: nest.spawn_interval must be positive, got %g", ErrInvalid, c.Nest.SpawnInterval)
	case c.Steering.EdgeSoftDistance <= c.Steering.EdgeMinDistance:
		return fmt.Errorf("%w: steering.edge_soft_distance must exceed edge_min_distance", ErrInvalid)
	case c.Steering.MinWeight <= 0:
		return fmt.Errorf("%w: steering.min_weight must be positive, got %g", ErrInvalid, c.Steering.MinWeight)
	}
	if len(c.Ant.KindWeights) == 0 {
		return fmt.Errorf("%w: ant.kind_weights is empty", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = c.Physics.DT * c.Physics.TimeScale
	c.Derived.HalfWidth = c.World.Width / 2
	c.Derived.HalfHeight = c.World.Height / 2
	c.Derived.GridWidth = int(math.Ceil(c.World.Width / c.Track.Resolution))
	c.Derived.GridHeight = int(math.Ceil(c.World.Height / c.Track.Resolution))
	c.Derived.DecayPerTick = math.Pow(c.Track.ConcentrationFactor, c.Derived.DT)
	c.Derived.MaxTurn = c.Ant.MaxTurnRate * c.Derived.DT
	c.Derived.ContactRadius = c.Ant.SegmentRadius * 1.5
	c.Derived.WalkMargin = walkMargin(c.Ant.SegmentRadius)
	c.Derived.MaxFoodRadius = math.Sqrt(c.Food.MaxAmount / math.Pi)
}

// walkMargin keeps an ant's whole body, three segments, inside the world.
func walkMargin(segmentRadius float64) float64 {
	return segmentRadius * 3
}

// Clone returns a deep copy so callers can tweak parameters without
// touching the global config.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Ant.KindWeights = append([]KindWeight(nil), c.Ant.KindWeights...)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

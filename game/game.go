// Package game owns the colony simulation state and drives it one tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64

	// Ants: position, heading, kind, satiation, carried food
	antMapper *ecs.Map5[
		components.Position,
		components.Heading,
		components.Ant,
		components.Satiation,
		components.HeldFood,
	]
	antFilter *ecs.Filter5[
		components.Position,
		components.Heading,
		components.Ant,
		components.Satiation,
		components.HeldFood,
	]

	// Food sources: position, remaining amount
	foodMapper *ecs.Map2[components.Position, components.Food]
	foodFilter *ecs.Filter2[components.Position, components.Food]

	// Individual component mappers for lookups
	posMap     *ecs.Map[components.Position]
	headingMap *ecs.Map[components.Heading]
	foodMap    *ecs.Map[components.Food]

	field    *systems.PheromoneField
	foods    *systems.FoodIndex
	foodRefs []systems.FoodRef
	nest     components.Nest
	kinds    *systems.KindDistribution
	sensor   *systems.Sensor
	parallel *parallelState

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	ledger         FoodLedger

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// Scratch buffers reused across ticks
	starved   []starvedAnt
	depleted  []ecs.Entity
	nearFoods []systems.FoodRef
}

// New creates a game from opts and seeds the initial colony.
// Setup errors in the configuration are returned, never panicked.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kinds, err := systems.NewKindDistribution(cfg.Ant.KindWeights)
	if err != nil {
		return nil, err
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := max(opts.StepsPerUpdate, 1)

	world := ecs.NewWorld()
	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,
		antMapper: ecs.NewMap5[
			components.Position,
			components.Heading,
			components.Ant,
			components.Satiation,
			components.HeldFood,
		](world),
		antFilter: ecs.NewFilter5[
			components.Position,
			components.Heading,
			components.Ant,
			components.Satiation,
			components.HeldFood,
		](world),
		foodMapper: ecs.NewMap2[components.Position, components.Food](world),
		foodFilter: ecs.NewFilter2[components.Position, components.Food](world),
		posMap:     ecs.NewMap[components.Position](world),
		headingMap: ecs.NewMap[components.Heading](world),
		foodMap:    ecs.NewMap[components.Food](world),

		field:  systems.NewPheromoneField(cfg.World.Width, cfg.World.Height, cfg.Track.Resolution),
		foods:  systems.NewFoodIndex(),
		kinds:  kinds,
		sensor: systems.NewSensor(cfg),
		nest: components.Nest{
			Pos:    components.Position{X: cfg.Nest.X, Y: cfg.Nest.Y},
			Radius: cfg.Nest.Radius,
		},
		parallel:       newParallelState(cfg.Parallel.Workers),
		stepsPerUpdate: steps,

		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
	}

	g.nest.Deposit(cfg.Nest.InitialFood)
	g.ledger.Supplied += g.nest.Food

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g.seedColony()
	g.rebuildFoodIndex()

	return g, nil
}

// seedColony places the initial ants around the nest and the initial food.
func (g *Game) seedColony() {
	cfg := g.cfg
	spread := cfg.Population.InitialSpread
	for i := 0; i < cfg.Population.InitialAnts; i++ {
		offset := r2.Vec{
			X: (g.rng.Float64()*2 - 1) * spread,
			Y: (g.rng.Float64()*2 - 1) * spread,
		}
		pos := r2.Add(g.nest.Pos.Vec(), offset)
		g.spawnAnt(pos, systems.RandomHeading(g.rng), g.kinds.Draw(g.rng))
	}

	for i := 0; i < cfg.Food.InitialCount; i++ {
		pos, amount := systems.RandomFood(g.rng, cfg)
		g.spawnFood(pos, amount)
	}

	slog.Debug("colony seeded",
		"ants", cfg.Population.InitialAnts,
		"foods", cfg.Food.InitialCount,
		"seed", g.rngSeed,
	)
}

// Update runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Paused reports whether Update is currently a no-op.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the ticks run per Update call, at least 1.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(n, 1)
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns the simulated seconds elapsed.
func (g *Game) SimTime() float64 {
	return float64(g.tick) * g.cfg.Derived.DT
}

// Config returns the run configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// RecordFrame marks a rendered frame for the FPS column of perf stats.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Unload stops workers and closes output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

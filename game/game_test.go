package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

// newTestGame builds an empty world (no seeded ants or food) with the
// given config tweaks applied.
func newTestGame(t *testing.T, seed int64, mutate func(c *config.Config)) *Game {
	t.Helper()
	cfg := config.Defaults()
	cfg.Population.InitialAnts = 0
	cfg.Food.InitialCount = 0
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalizing config: %v", err)
	}
	g, err := New(Options{Config: cfg, Seed: seed})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func totalPopulation(g *Game) int {
	total := 0
	for _, n := range g.Population() {
		total += n
	}
	return total
}

// ---------- construction ----------

func TestNewRejectsDuplicateKind(t *testing.T) {
	cfg := config.Defaults()
	cfg.Ant.KindWeights = []config.KindWeight{{Kind: "scout", Weight: 1}, {Kind: "scout", Weight: 2}}

	if _, err := New(Options{Config: cfg}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestNewSeedsColony(t *testing.T) {
	cfg := config.Defaults()
	g, err := New(Options{Config: cfg, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	ants := g.Ants()
	if len(ants) != cfg.Population.InitialAnts {
		t.Fatalf("expected %d ants, got %d", cfg.Population.InitialAnts, len(ants))
	}
	for _, a := range ants {
		if math.Abs(a.X-cfg.Nest.X) > cfg.Population.InitialSpread || math.Abs(a.Y-cfg.Nest.Y) > cfg.Population.InitialSpread {
			t.Errorf("ant %d seeded outside the initial spread: (%.2f, %.2f)", a.ID, a.X, a.Y)
		}
		if a.Satiation != cfg.Ant.MaxSatiation || a.Carried != 0 {
			t.Errorf("ant %d not seeded full and empty-handed: %+v", a.ID, a)
		}
	}
	if len(g.Foods()) != cfg.Food.InitialCount {
		t.Errorf("expected %d foods, got %d", cfg.Food.InitialCount, len(g.Foods()))
	}
}

// ---------- scenarios ----------

func TestLoneAntStarves(t *testing.T) {
	g := newTestGame(t, 1, func(c *config.Config) {
		c.World.Width, c.World.Height = 3000, 3000
		c.Track.Resolution = 10
		c.Ant.SatiationLossRate = 0.5 // two seconds of reserves
	})
	g.spawnAnt(r2.Vec{X: 1000, Y: 0}, 0, components.KindWorker)
	g.spawnFood(r2.Vec{X: 500, Y: 866}, 1.0)
	g.rebuildFoodIndex()

	for i := 0; i < 100; i++ {
		g.Step()
	}
	if totalPopulation(g) != 1 {
		t.Fatal("ant starved too early")
	}

	for i := 0; i < 30; i++ {
		g.Step()
	}
	if totalPopulation(g) != 0 {
		t.Fatalf("ant still alive after %.2fs", g.SimTime())
	}
	if g.lifetimeTracker.Count() != 0 {
		t.Error("lifetime record not removed with the ant")
	}
	if foods := g.Foods(); len(foods) != 1 || foods[0].Amount != 1.0 {
		t.Errorf("food source should be untouched, got %+v", foods)
	}
}

func TestPickUpDepletesAndRespawns(t *testing.T) {
	g := newTestGame(t, 2, func(c *config.Config) {
		c.Ant.MaxCarry = 5
	})
	g.spawnAnt(r2.Vec{X: 300, Y: 300}, 0, components.KindWorker)
	g.spawnFood(r2.Vec{X: 300, Y: 300}, 3.0)
	g.rebuildFoodIndex()

	g.Step()

	ants := g.Ants()
	if len(ants) != 1 || ants[0].Carried != 3.0 {
		t.Fatalf("expected the ant to carry 3.0, got %+v", ants)
	}
	if !ants[0].Carrying() {
		t.Error("carrying marker should be visible")
	}

	foods := g.Foods()
	if len(foods) != 1 {
		t.Fatalf("expected exactly one replacement food, got %d", len(foods))
	}
	f := foods[0]
	if f.X == 300 && f.Y == 300 {
		t.Error("replacement food spawned at the depleted position")
	}
	cfg := g.Config()
	if f.Amount < cfg.Food.MinAmount || f.Amount > cfg.Food.MaxAmount {
		t.Errorf("replacement amount %.2f outside [%.0f, %.0f]", f.Amount, cfg.Food.MinAmount, cfg.Food.MaxAmount)
	}
}

func TestPickUpLeavesExcessInSource(t *testing.T) {
	g := newTestGame(t, 2, func(c *config.Config) {
		c.Ant.MaxCarry = 1
	})
	g.spawnAnt(r2.Vec{X: 300, Y: 300}, 0, components.KindWorker)
	g.spawnFood(r2.Vec{X: 300, Y: 300}, 3.0)
	g.rebuildFoodIndex()

	g.Step()

	if ants := g.Ants(); ants[0].Carried != 1.0 {
		t.Errorf("expected carried 1.0, got %.4f", ants[0].Carried)
	}
	if foods := g.Foods(); len(foods) != 1 || foods[0].Amount != 2.0 {
		t.Errorf("expected 2.0 left in the source, got %+v", foods)
	}
}

func TestPickUpUsesCurrentFoodRadius(t *testing.T) {
	g := newTestGame(t, 2, nil)
	e := g.spawnFood(r2.Vec{X: 300, Y: 300}, 100)
	g.rebuildFoodIndex()

	contact := g.cfg.Derived.ContactRadius
	// Radius of 100 units is about 5.64, so reach is about 8.64
	p := r2.Vec{X: 308, Y: 300}
	if food, _ := g.nearestFood(p, contact); food == nil {
		t.Fatal("expected the full source to be in reach")
	}

	// Drain it without rebuilding the index: reach drops to about 3.56
	g.foodMap.Get(e).Amount = 1
	if food, _ := g.nearestFood(p, contact); food != nil {
		t.Errorf("drained source still in reach at distance 8 (radius %.4f)", food.Radius())
	}
	if food, _ := g.nearestFood(r2.Vec{X: 302, Y: 300}, contact); food == nil {
		t.Error("expected the drained source to stay in reach up close")
	}
}

func TestDeliveryAtNest(t *testing.T) {
	g := newTestGame(t, 4, func(c *config.Config) {
		c.Ant.SatiationLossRate = 0 // keep the ant from eating the delivery
	})
	e := g.spawnAnt(r2.Vec{}, 0, components.KindWorker)
	_, _, _, _, held := g.antMapper.Get(e)
	held.Amount = 0.75

	g.Step()

	if got := g.Nest().Food; math.Abs(got-0.75) > 1e-12 {
		t.Errorf("expected nest stock 0.75, got %.4f", got)
	}
	if ants := g.Ants(); ants[0].Carried != 0 {
		t.Errorf("expected empty hands after delivery, got %.4f", ants[0].Carried)
	}
}

func TestNestSpawnFunded(t *testing.T) {
	g := newTestGame(t, 5, func(c *config.Config) {
		c.Nest.InitialFood = 1.0
	})
	g.nest.SpawnElapsed = g.cfg.Nest.SpawnInterval - g.cfg.Derived.DT/2

	g.Step()

	if totalPopulation(g) != 1 {
		t.Fatalf("expected one spawned ant, got %d", totalPopulation(g))
	}
	if g.Nest().Food != 0 {
		t.Errorf("expected nest stock 0.0, got %.4f", g.Nest().Food)
	}
	a := g.Ants()[0]
	if math.Hypot(a.X-g.nest.Pos.X, a.Y-g.nest.Pos.Y) > g.nest.Radius {
		t.Errorf("ant spawned outside the nest at (%.2f, %.2f)", a.X, a.Y)
	}
}

func TestNestSpawnUnfunded(t *testing.T) {
	g := newTestGame(t, 5, func(c *config.Config) {
		c.Nest.InitialFood = 0.99
	})
	g.nest.SpawnElapsed = g.cfg.Nest.SpawnInterval - g.cfg.Derived.DT/2

	g.Step()

	if totalPopulation(g) != 0 {
		t.Errorf("expected no spawn, got %d ants", totalPopulation(g))
	}
	if g.Nest().Food != 0.99 {
		t.Errorf("expected nest stock unchanged at 0.99, got %.4f", g.Nest().Food)
	}
	if g.nest.SpawnElapsed >= g.cfg.Derived.DT {
		t.Errorf("unfunded interval should be consumed, elapsed %.4f", g.nest.SpawnElapsed)
	}
}

// ---------- determinism and invariants ----------

func TestParallelSteeringMatchesSequential(t *testing.T) {
	build := func(threshold, workers int) *Game {
		cfg := config.Defaults()
		cfg.Population.InitialAnts = 200
		cfg.Parallel.Threshold = threshold
		cfg.Parallel.Workers = workers
		g, err := New(Options{Config: cfg, Seed: 42})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(g.Unload)
		return g
	}

	seq := build(math.MaxInt32, 1)
	par := build(1, 4)
	for i := 0; i < 120; i++ {
		seq.Step()
		par.Step()
	}

	a, b := seq.Ants(), par.Ants()
	if len(a) != len(b) {
		t.Fatalf("population differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ant %d differs:\n  sequential %+v\n  parallel   %+v", i, a[i], b[i])
		}
	}
}

func TestFoodConservedAndBounded(t *testing.T) {
	g := newTestGame(t, 9, func(c *config.Config) {
		c.Population.InitialAnts = 120
		c.Population.InitialSpread = 200
		c.Food.InitialCount = 40
		c.Food.MinAmount, c.Food.MaxAmount = 1, 5
		c.Food.EdgeMargin = 300
		c.Nest.InitialFood = 3
		c.Nest.SpawnInterval = 0.5
		c.Ant.SatiationLossRate = 0.3
	})

	for i := 0; i < 600; i++ {
		g.Step()
	}

	l := g.FoodLedger()
	if math.Abs(l.Imbalance()) > 1e-6*l.Supplied {
		t.Errorf("food not conserved: imbalance %.9f of %.4f supplied (%+v)", l.Imbalance(), l.Supplied, l)
	}
	if l.SpentOnSpawns == 0 || l.Eaten == 0 {
		t.Errorf("scenario did not exercise spawning and eating: %+v", l)
	}

	cfg := g.Config()
	for _, a := range g.Ants() {
		if a.Satiation < 0 || a.Satiation > cfg.Ant.MaxSatiation {
			t.Errorf("ant %d satiation %.4f out of bounds", a.ID, a.Satiation)
		}
		if a.Carried < 0 || a.Carried > cfg.Ant.MaxCarry {
			t.Errorf("ant %d carries %.4f, capacity %.4f", a.ID, a.Carried, cfg.Ant.MaxCarry)
		}
		if math.Abs(a.X) > cfg.Derived.HalfWidth || math.Abs(a.Y) > cfg.Derived.HalfHeight {
			t.Errorf("ant %d left the world: (%.2f, %.2f)", a.ID, a.X, a.Y)
		}
	}
	for _, c := range g.Field().Cells() {
		if c.Food < 0 || c.Food > 1 || c.Nest < 0 || c.Nest > 1 {
			t.Fatalf("field cell out of bounds: %+v", c)
		}
	}
	if g.Nest().Food < 0 {
		t.Errorf("negative nest stock %.4f", g.Nest().Food)
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() []AntView {
		cfg := config.Defaults()
		cfg.Population.InitialAnts = 30
		g, err := New(Options{Config: cfg, Seed: 7})
		if err != nil {
			t.Fatal(err)
		}
		defer g.Unload()
		for i := 0; i < 60; i++ {
			g.Step()
		}
		return g.Ants()
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at ant %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// ---------- telemetry ----------

func TestTelemetryWindowsAndOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := config.Defaults()
	cfg.Population.InitialAnts = 20

	var windows []telemetry.WindowStats
	g, err := New(Options{
		Config:         cfg,
		Seed:           11,
		StatsWindowSec: 1,
		OutputDir:      dir,
		StepsPerUpdate: 10,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 13; i++ {
		g.Update()
	}
	g.Unload()

	if g.Tick() != 130 {
		t.Errorf("expected 130 ticks, got %d", g.Tick())
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 stats windows, got %d", len(windows))
	}
	if windows[0].Population() != 20 {
		t.Errorf("expected population 20 in first window, got %d", windows[0].Population())
	}
	if windows[0].FieldNest <= 0 {
		t.Error("expected nest trail mass after the first window")
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 3 {
		t.Errorf("expected header + 2 rows, got %d lines", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestPauseAndSteps(t *testing.T) {
	g := newTestGame(t, 1, nil)
	g.SetStepsPerUpdate(0)
	if g.StepsPerUpdate() != 1 {
		t.Errorf("steps per update should floor at 1, got %d", g.StepsPerUpdate())
	}

	g.TogglePause()
	g.Update()
	if g.Tick() != 0 || !g.Paused() {
		t.Error("paused game advanced")
	}
	g.TogglePause()
	g.Update()
	if g.Tick() != 1 {
		t.Errorf("expected 1 tick after resume, got %d", g.Tick())
	}
}

package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// starvedAnt is collected during the satiation pass and removed after it.
type starvedAnt struct {
	entity  ecs.Entity
	kind    components.Kind
	carried float64
}

// spawnAnt creates an ant with full satiation and empty hands.
func (g *Game) spawnAnt(pos r2.Vec, heading float64, kind components.Kind) ecs.Entity {
	cfg := g.cfg

	p := components.PositionOf(pos)
	h := components.Heading{Angle: heading}
	ant := components.Ant{Kind: kind}
	sat := components.Satiation{Store: components.Store{Amount: cfg.Ant.MaxSatiation, Max: cfg.Ant.MaxSatiation}}
	held := components.HeldFood{Store: components.Store{Max: cfg.Ant.MaxCarry}}

	entity := g.antMapper.NewEntity(&p, &h, &ant, &sat, &held)
	g.lifetimeTracker.Register(entity.ID(), kind, g.tick)
	return entity
}

// spawnFood creates a food source and books its amount as supplied.
func (g *Game) spawnFood(pos r2.Vec, amount float64) ecs.Entity {
	p := components.PositionOf(pos)
	food := components.Food{Amount: amount}
	g.ledger.Supplied += amount
	return g.foodMapper.NewEntity(&p, &food)
}

// removeStarved removes the ants collected by the satiation pass.
// Food they were carrying is lost with them.
func (g *Game) removeStarved() {
	dt := g.cfg.Derived.DT
	for _, dead := range g.starved {
		id := dead.entity.ID()
		lifespan := 0.0
		if stats := g.lifetimeTracker.Remove(id); stats != nil {
			lifespan = stats.LifespanSec(g.tick, dt)
			if err := g.outputManager.WriteDeath(telemetry.NewDeathRecord(g.tick, id, stats, dt)); err != nil {
				slog.Error("failed to write death", "error", err)
			}
		}
		g.collector.RecordStarvation(dead.kind, lifespan)
		g.ledger.LostToStarvation += dead.carried

		g.world.RemoveEntity(dead.entity)
	}
	g.starved = g.starved[:0]
}

// replaceDepleted removes empty food sources and spawns a fresh one
// elsewhere for each. Returns the number replaced.
func (g *Game) replaceDepleted() int {
	n := len(g.depleted)
	for _, e := range g.depleted {
		if !g.world.Alive(e) {
			continue
		}
		g.world.RemoveEntity(e)

		pos, amount := systems.RandomFood(g.rng, g.cfg)
		g.spawnFood(pos, amount)
		g.collector.RecordRespawn()

		slog.Debug("food_respawned", "tick", g.tick, "x", pos.X, "y", pos.Y, "amount", amount)
	}
	g.depleted = g.depleted[:0]
	return n
}

// spawnFromNest advances the nest timer and spawns every funded ant.
func (g *Game) spawnFromNest() {
	cfg := g.cfg
	spawns, skipped := systems.AdvanceSpawnTimer(&g.nest, cfg.Nest.SpawnInterval, cfg.Derived.DT)
	g.ledger.SpentOnSpawns += float64(spawns) * systems.SpawnCost

	for i := 0; i < spawns; i++ {
		pos := systems.SpawnPoint(g.rng, &g.nest)
		kind := g.kinds.Draw(g.rng)
		g.spawnAnt(pos, systems.RandomHeading(g.rng), kind)
		g.collector.RecordBirth(kind)
	}
	for i := 0; i < skipped; i++ {
		g.collector.RecordSpawnSkipped()
	}
}

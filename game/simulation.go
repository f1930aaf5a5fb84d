package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Step advances the simulation by one fixed tick. Phase order is fixed:
// the field settles before anyone reads it, starved ants leave before
// they move, and resource exchange finishes before ants steer.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	// 1. Field decay, diffusion and ambient nest scent
	g.perfCollector.StartPhase(telemetry.PhaseField)
	g.updateField()

	// 2. Eat carried food, burn satiation, remove the starved
	g.perfCollector.StartPhase(telemetry.PhaseSatiation)
	g.updateSatiation()

	// 3. Walk forward
	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	g.updateMovement()

	// 4. Deposit, pick up, eat from the nest, lay trail
	g.perfCollector.StartPhase(telemetry.PhaseFoodIndex)
	g.rebuildFoodIndex()
	g.perfCollector.StartPhase(telemetry.PhaseExchange)
	g.updateExchange()

	// 5. Sense and steer against a fresh food snapshot
	g.perfCollector.StartPhase(telemetry.PhaseFoodIndex)
	g.rebuildFoodIndex()
	g.perfCollector.StartPhase(telemetry.PhaseSensing)
	g.updateSteering()

	// 6. Nest spawns
	g.perfCollector.StartPhase(telemetry.PhaseNest)
	g.spawnFromNest()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateField decays and diffuses both channels, then emits the nest scent.
func (g *Game) updateField() {
	cfg := g.cfg
	g.field.Decay(cfg.Derived.DecayPerTick)
	g.field.Diffuse(cfg.Track.DiffusionFactor)
	systems.EmitNestScent(g.field, &g.nest, cfg.Nest.TrackConcentration, cfg.Derived.DT)
}

// updateSatiation runs eating and hunger for every ant and removes the
// ones that starved.
func (g *Game) updateSatiation() {
	cfg := g.cfg
	dt := cfg.Derived.DT

	query := g.antFilter.Query()
	for query.Next() {
		_, _, ant, sat, held := query.Get()

		eaten, starved := systems.UpdateSatiation(sat, held, cfg.Ant.EatRate, cfg.Ant.SatiationLossRate, dt)
		if eaten > 0 {
			g.ledger.Eaten += eaten
			g.collector.RecordCarriedMeal(eaten)
		}
		if starved {
			g.starved = append(g.starved, starvedAnt{
				entity:  query.Entity(),
				kind:    ant.Kind,
				carried: held.Amount,
			})
		}
	}

	// Removal must wait until the query is done
	g.removeStarved()
}

// updateMovement walks every ant along its heading.
func (g *Game) updateMovement() {
	cfg := g.cfg
	query := g.antFilter.Query()
	for query.Next() {
		pos, heading, _, _, _ := query.Get()
		systems.Walk(pos, *heading, cfg.Ant.Speed, cfg.Derived.DT,
			cfg.Derived.HalfWidth, cfg.Derived.HalfHeight, cfg.Derived.WalkMargin)
	}
}

// updateExchange runs the per-ant resource exchange in a fixed order:
// deposit at the nest, pick up food, eat from the nest, emit trail.
func (g *Game) updateExchange() {
	cfg := g.cfg
	contact := cfg.Derived.ContactRadius

	query := g.antFilter.Query()
	for query.Next() {
		pos, _, _, sat, held := query.Get()
		id := query.Entity().ID()
		p := pos.Vec()

		if delivered := systems.DepositAtNest(p, held, &g.nest, contact); delivered > 0 {
			g.collector.RecordDelivery(delivered)
			g.lifetimeTracker.RecordDelivery(id, delivered)
		}

		if !held.Full() {
			if food, e := g.nearestFood(p, contact); food != nil {
				if took := systems.PickUp(held, food); took > 0 {
					g.collector.RecordPickUp(took)
					g.lifetimeTracker.RecordPickUp(id, took)
					if food.Empty() {
						g.depleted = append(g.depleted, e)
					}
				}
			}
		}

		if ate := systems.EatFromNest(p, sat, &g.nest, contact); ate > 0 {
			g.ledger.Eaten += ate
			g.collector.RecordNestMeal(ate)
			g.lifetimeTracker.RecordNestMeal(id)
		}

		systems.EmitTrail(g.field, p, held, cfg.Track.Radius, cfg.Ant.TrackConcentration, cfg.Derived.DT)
	}

	g.replaceDepleted()
}

// nearestFood returns the closest non-empty food source in contact with p,
// judged by the source's current radius. Foods emptied earlier this tick are
// skipped even though the index still lists them.
func (g *Game) nearestFood(p r2.Vec, contact float64) (*components.Food, ecs.Entity) {
	g.nearFoods = g.foods.Within(p, contact, g.nearFoods[:0])

	var (
		best     *components.Food
		bestE    ecs.Entity
		bestDist = math.Inf(1)
	)
	for _, ref := range g.nearFoods {
		food := g.foodMap.Get(ref.Entity)
		if food == nil || food.Empty() {
			continue
		}
		d := r2.Norm(r2.Sub(ref.Pos, p))
		// The indexed radius is from the rebuild; an earlier pick-up this
		// tick may have shrunk the source since.
		if d >= contact+food.Radius() {
			continue
		}
		if d < bestDist || (d == bestDist && ref.Entity.ID() < bestE.ID()) {
			best, bestE, bestDist = food, ref.Entity, d
		}
	}
	return best, bestE
}

// rebuildFoodIndex snapshots every food source into the k-d tree.
func (g *Game) rebuildFoodIndex() {
	g.foodRefs = g.foodRefs[:0]
	query := g.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		g.foodRefs = append(g.foodRefs, systems.FoodRef{
			Entity: query.Entity(),
			Pos:    pos.Vec(),
			Radius: food.Radius(),
		})
	}
	g.foods.Rebuild(g.foodRefs)
}

// surroundings returns the read-only view ants sense this tick.
func (g *Game) surroundings() *systems.Surroundings {
	return &systems.Surroundings{
		Field:      g.field,
		Foods:      g.foods,
		NestPos:    g.nest.Pos.Vec(),
		NestRadius: g.nest.Radius,
	}
}

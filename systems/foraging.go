package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// touchesNest reports whether an ant at pos is in contact with the nest.
func touchesNest(pos r2.Vec, nest *components.Nest, contact float64) bool {
	return distance(pos, nest.Pos.Vec()) < contact+nest.Radius
}

// DepositAtNest moves everything the ant carries into the nest stock when
// the ant touches the nest. Returns the amount delivered.
func DepositAtNest(pos r2.Vec, held *components.HeldFood, nest *components.Nest, contact float64) float64 {
	if held.Empty() || !touchesNest(pos, nest, contact) {
		return 0
	}
	return nest.Deposit(held.Remove(held.Amount))
}

// EatFromNest refills satiation from the nest stock when the ant touches
// the nest. Returns the amount eaten.
func EatFromNest(pos r2.Vec, sat *components.Satiation, nest *components.Nest, contact float64) float64 {
	if !touchesNest(pos, nest, contact) {
		return 0
	}
	return sat.Add(nest.Withdraw(sat.Room()))
}

// PickUp moves as much food as the ant can hold from the source.
// What the ant cannot hold stays in the source.
func PickUp(held *components.HeldFood, food *components.Food) float64 {
	if held.Full() || food.Empty() {
		return 0
	}
	took := held.Add(food.Amount)
	food.Remove(took)
	return took
}

// EmitTrail deposits pheromone around the ant: the food trail while
// carrying, the nest trail otherwise. Returns the concentration added.
func EmitTrail(field *PheromoneField, pos r2.Vec, held *components.HeldFood, radius, rate, dt float64) float64 {
	ch := ChannelNest
	if !held.Empty() {
		ch = ChannelFood
	}
	return field.DepositWithinCircle(pos, radius, ch, rate, dt)
}

// RandomFood draws a position at least EdgeMargin inside the world and an
// amount from the configured range.
func RandomFood(rng *rand.Rand, cfg *config.Config) (r2.Vec, float64) {
	mx := max(cfg.Derived.HalfWidth-cfg.Food.EdgeMargin, 0)
	my := max(cfg.Derived.HalfHeight-cfg.Food.EdgeMargin, 0)
	pos := r2.Vec{X: uniform(rng, -mx, mx), Y: uniform(rng, -my, my)}
	amount := uniform(rng, cfg.Food.MinAmount, cfg.Food.MaxAmount)
	return pos, amount
}

package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
)

// SpawnCost is the nest stock consumed by each new ant.
const SpawnCost = 1.0

// EmitNestScent deposits the ambient nest trail over the nest disk,
// whether or not any ant is nearby.
func EmitNestScent(field *PheromoneField, nest *components.Nest, rate, dt float64) float64 {
	return field.DepositWithinCircle(nest.Pos.Vec(), nest.Radius, ChannelNest, rate, dt)
}

// AdvanceSpawnTimer accumulates dt and settles every interval that elapsed.
// A funded interval pays SpawnCost and yields one spawn. An unfunded one
// is consumed without credit.
func AdvanceSpawnTimer(nest *components.Nest, interval, dt float64) (spawns, skipped int) {
	nest.SpawnElapsed += dt
	for nest.SpawnElapsed >= interval {
		nest.SpawnElapsed -= interval
		if nest.Food >= SpawnCost {
			nest.Withdraw(SpawnCost)
			spawns++
		} else {
			skipped++
		}
	}
	return spawns, skipped
}

// SpawnPoint draws a point uniformly from the nest disk.
func SpawnPoint(rng *rand.Rand, nest *components.Nest) r2.Vec {
	r := nest.Radius * math.Sqrt(rng.Float64())
	theta := uniform(rng, -math.Pi, math.Pi)
	return r2.Add(nest.Pos.Vec(), r2.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
}

// RandomHeading draws a heading in [-pi, pi).
func RandomHeading(rng *rand.Rand) float64 {
	return uniform(rng, -math.Pi, math.Pi)
}

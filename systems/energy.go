package systems

import (
	"github.com/pthm-cable/colony/components"
)

// UpdateSatiation eats from carried food in proportion to the satiation
// deficit, then burns satiation at a constant rate. Returns the food eaten
// and whether the ant has starved.
func UpdateSatiation(sat *components.Satiation, held *components.HeldFood, eatRate, lossRate, dt float64) (eaten float64, starved bool) {
	want := (sat.Max - sat.Amount) * eatRate * dt
	if want > 0 && !held.Empty() {
		taken := held.Remove(want)
		eaten = sat.Add(taken)
		// Satiation had less room than the deficit implied; return the rest
		if rest := taken - eaten; rest > 0 {
			held.Add(rest)
		}
	}

	sat.Remove(lossRate * dt)
	return eaten, sat.Empty()
}

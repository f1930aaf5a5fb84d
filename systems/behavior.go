package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// Goal is an ant's intent for the current tick. It is recomputed every
// tick and never stored.
type Goal uint8

const (
	GoalReturnToNest Goal = iota
	GoalSeekFood
	GoalExplore
)

func (g Goal) String() string {
	switch g {
	case GoalReturnToNest:
		return "return_to_nest"
	case GoalSeekFood:
		return "seek_food"
	case GoalExplore:
		return "explore"
	default:
		return "unknown"
	}
}

// ChooseGoal arbitrates between goals. Hunger overrides everything else;
// scouts explore, workers seek food until they carry some.
func ChooseGoal(kind components.Kind, sat *components.Satiation, held *components.HeldFood) Goal {
	if sat.Amount < 0.5*sat.Max {
		return GoalReturnToNest
	}
	if kind == components.KindScout {
		return GoalExplore
	}
	if held.Empty() {
		return GoalSeekFood
	}
	return GoalReturnToNest
}

// SteerNoise holds the random draws one ant needs for one steering step.
// Drawing them up front keeps steering a pure function.
type SteerNoise struct {
	Jitter   float64 // added to the turn toward the desired direction
	Fallback float64 // turn used when there is no desired direction
}

// DrawSteerNoise draws jitter in [-jitter, jitter) and a fallback turn in [-pi, pi).
func DrawSteerNoise(rng *rand.Rand, jitter float64) SteerNoise {
	return SteerNoise{
		Jitter:   uniform(rng, -jitter, jitter),
		Fallback: uniform(rng, -math.Pi, math.Pi),
	}
}

// Steer returns the heading after turning toward desired for one tick.
// The turn is clamped to +-maxTurn and the result wrapped to [-pi, pi].
func Steer(heading float64, desired r2.Vec, noise SteerNoise, maxTurn float64) float64 {
	var turn float64
	if r2.Norm(desired) > 1e-9 && finite(desired) {
		turn = normalizeAngle(math.Atan2(desired.Y, desired.X)-heading) + noise.Jitter
	} else {
		turn = noise.Fallback
	}
	turn = math.Max(-maxTurn, math.Min(maxTurn, turn))
	return normalizeAngle(heading + turn)
}

// EdgeAvoidance returns a push away from world edges. Each edge contributes
// nothing beyond the soft distance, rising linearly to full strength at the
// minimum distance.
func EdgeAvoidance(pos r2.Vec, halfW, halfH float64, st config.SteeringConfig) r2.Vec {
	push := func(d float64) float64 {
		if d >= st.EdgeSoftDistance {
			return 0
		}
		t := (st.EdgeSoftDistance - d) / (st.EdgeSoftDistance - st.EdgeMinDistance)
		return st.EdgeStrength * math.Min(t, 1)
	}

	var v r2.Vec
	v.X -= push(halfW - pos.X)
	v.X += push(pos.X + halfW)
	v.Y -= push(halfH - pos.Y)
	v.Y += push(pos.Y + halfH)
	return v
}

// Walk advances an ant along its heading and clamps it to stay margin
// inside the world. Ants stop at the edge; they do not bounce.
func Walk(pos *components.Position, h components.Heading, speed, dt, halfW, halfH, margin float64) {
	step := r2.Scale(speed*dt, h.Forward())
	pos.X = math.Max(-halfW+margin, math.Min(halfW-margin, pos.X+step.X))
	pos.Y = math.Max(-halfH+margin, math.Min(halfH-margin, pos.Y+step.Y))
}

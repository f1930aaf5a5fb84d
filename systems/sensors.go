package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/config"
)

// Surroundings is everything an ant can sense. Sensing only reads it, so
// one value may be shared by concurrent callers.
type Surroundings struct {
	Field      *PheromoneField
	Foods      *FoodIndex
	NestPos    r2.Vec
	NestRadius float64
}

// Sensor samples the surroundings at three points ahead of an ant: straight
// ahead and rotated by +-SenseAngle, each SenseDistance away.
type Sensor struct {
	offsets      [3]r2.Vec // in the ant's frame, heading along +X
	radius       float64
	detectWeight float64
	minWeight    float64

	steering     config.SteeringConfig
	halfW, halfH float64
}

// NewSensor builds a sensor from the ant and steering config.
func NewSensor(cfg *config.Config) *Sensor {
	ahead := r2.Vec{X: cfg.Ant.SenseDistance}
	return &Sensor{
		offsets: [3]r2.Vec{
			ahead,
			r2.Rotate(ahead, cfg.Ant.SenseAngle, r2.Vec{}),
			r2.Rotate(ahead, -cfg.Ant.SenseAngle, r2.Vec{}),
		},
		radius:       cfg.Ant.SenseRadius,
		detectWeight: cfg.Steering.DetectWeight,
		minWeight:    cfg.Steering.MinWeight,
		steering:     cfg.Steering,
		halfW:        cfg.Derived.HalfWidth,
		halfH:        cfg.Derived.HalfHeight,
	}
}

// SamplePoints returns the world positions of the three sample points.
func (s *Sensor) SamplePoints(pos r2.Vec, heading float64) [3]r2.Vec {
	var pts [3]r2.Vec
	for i, off := range s.offsets {
		pts[i] = r2.Add(pos, r2.Rotate(off, heading, r2.Vec{}))
	}
	return pts
}

// Weight scores one sample point for a goal. A directly sensed target
// scores detectWeight; otherwise the score is the summed field signal.
// Explore prefers sparse trails. The result is never below minWeight.
func (s *Sensor) Weight(env *Surroundings, goal Goal, point r2.Vec) float64 {
	var w float64
	switch goal {
	case GoalReturnToNest:
		if distance(env.NestPos, point) < s.radius+env.NestRadius {
			w = s.detectWeight
		} else {
			w = env.Field.QueryWithinCircle(point, s.radius, ChannelNest)
		}
	case GoalSeekFood:
		if env.Foods != nil && env.Foods.Any(point, s.radius) {
			w = s.detectWeight
		} else {
			w = env.Field.QueryWithinCircle(point, s.radius, ChannelFood)
		}
	case GoalExplore:
		w = 1 - env.Field.QueryStrongestWithinCircle(point, s.radius)
	}
	if !(w >= s.minWeight) {
		w = s.minWeight
	}
	return w
}

// Desire returns the direction an ant wants to go: the weighted sum of the
// sample offsets, normalized, plus edge avoidance. A zero result means
// there is no preferred direction.
func (s *Sensor) Desire(env *Surroundings, goal Goal, pos r2.Vec, heading float64) r2.Vec {
	var sum r2.Vec
	for _, p := range s.SamplePoints(pos, heading) {
		w := s.Weight(env, goal, p)
		sum = r2.Add(sum, r2.Scale(w, r2.Sub(p, pos)))
	}
	dir := unitOrZero(sum)
	dir = r2.Add(dir, EdgeAvoidance(pos, s.halfW, s.halfH, s.steering))
	if math.Abs(dir.X) < 1e-12 && math.Abs(dir.Y) < 1e-12 {
		return r2.Vec{}
	}
	return dir
}

// Package components defines ECS components for the simulation.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Position represents an entity's world position.
// The world is centered on the origin with +Y up.
type Position struct {
	X, Y float64
}

// Vec returns the position as a gonum vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// PositionOf converts a vector to a Position.
func PositionOf(v r2.Vec) Position {
	return Position{X: v.X, Y: v.Y}
}

// Heading represents an entity's orientation.
type Heading struct {
	Angle float64 // radians, 0 = +X, counter-clockwise, kept in [-pi, pi]
}

// Forward returns the unit vector the entity is facing.
func (h Heading) Forward() r2.Vec {
	return r2.Vec{X: math.Cos(h.Angle), Y: math.Sin(h.Angle)}
}

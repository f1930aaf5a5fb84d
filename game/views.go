package game

import (
	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
)

// AntView is a read-only copy of one ant's state for presentation.
type AntView struct {
	ID        uint32
	X, Y      float64
	Heading   float64
	Kind      components.Kind
	Carried   float64
	Satiation float64
}

// Carrying reports whether the carried-food marker should be drawn.
func (a AntView) Carrying() bool {
	return a.Carried > 0
}

// FoodView is a read-only copy of one food source.
type FoodView struct {
	ID     uint32
	X, Y   float64
	Amount float64
	Radius float64
}

// NestView is a read-only copy of the nest.
type NestView struct {
	X, Y   float64
	Radius float64
	Food   float64
}

// Ants returns a view of every living ant.
func (g *Game) Ants() []AntView {
	return g.AppendAnts(nil)
}

// AppendAnts appends a view of every living ant to dst.
func (g *Game) AppendAnts(dst []AntView) []AntView {
	query := g.antFilter.Query()
	for query.Next() {
		pos, heading, ant, sat, held := query.Get()
		dst = append(dst, AntView{
			ID:        query.Entity().ID(),
			X:         pos.X,
			Y:         pos.Y,
			Heading:   heading.Angle,
			Kind:      ant.Kind,
			Carried:   held.Amount,
			Satiation: sat.Amount,
		})
	}
	return dst
}

// Foods returns a view of every food source.
func (g *Game) Foods() []FoodView {
	return g.AppendFoods(nil)
}

// AppendFoods appends a view of every food source to dst.
func (g *Game) AppendFoods(dst []FoodView) []FoodView {
	query := g.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		dst = append(dst, FoodView{
			ID:     query.Entity().ID(),
			X:      pos.X,
			Y:      pos.Y,
			Amount: food.Amount,
			Radius: food.Radius(),
		})
	}
	return dst
}

// Nest returns a view of the nest.
func (g *Game) Nest() NestView {
	return NestView{
		X:      g.nest.Pos.X,
		Y:      g.nest.Pos.Y,
		Radius: g.nest.Radius,
		Food:   g.nest.Food,
	}
}

// Field returns the pheromone field. Callers must treat it as read-only.
func (g *Game) Field() *systems.PheromoneField {
	return g.field
}

// Population returns the number of living ants per kind.
func (g *Game) Population() [components.NumKinds]int {
	var pop [components.NumKinds]int
	query := g.antFilter.Query()
	for query.Next() {
		_, _, ant, _, _ := query.Get()
		pop[ant.Kind]++
	}
	return pop
}

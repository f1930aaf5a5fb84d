// Package telemetry provides colony health tracking, bookmarking, and CSV output.
package telemetry

import (
	"github.com/pthm-cable/colony/components"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births      [components.NumKinds]int
	starvations [components.NumKinds]int
	lifespans   []float64

	pickups          int
	foodPickedUp     float64
	deliveries       int
	foodDelivered    float64
	foodEatenNest    float64
	foodEatenCarried float64
	foodRespawned    int
	spawnsSkipped    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records an ant leaving the nest.
func (c *Collector) RecordBirth(kind components.Kind) {
	c.births[kind]++
}

// RecordStarvation records an ant starving after living lifespanSec.
func (c *Collector) RecordStarvation(kind components.Kind, lifespanSec float64) {
	c.starvations[kind]++
	c.lifespans = append(c.lifespans, lifespanSec)
}

// RecordPickUp records food lifted from a source.
func (c *Collector) RecordPickUp(amount float64) {
	c.pickups++
	c.foodPickedUp += amount
}

// RecordDelivery records food deposited into the nest.
func (c *Collector) RecordDelivery(amount float64) {
	c.deliveries++
	c.foodDelivered += amount
}

// RecordNestMeal records food eaten from the nest stock.
func (c *Collector) RecordNestMeal(amount float64) {
	c.foodEatenNest += amount
}

// RecordCarriedMeal records carried food eaten on the way.
func (c *Collector) RecordCarriedMeal(amount float64) {
	c.foodEatenCarried += amount
}

// RecordRespawn records a depleted food source being replaced.
func (c *Collector) RecordRespawn() {
	c.foodRespawned++
}

// RecordSpawnSkipped records a spawn interval that elapsed without stock.
func (c *Collector) RecordSpawnSkipped() {
	c.spawnsSkipped++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// ColonySample is the colony state sampled at the end of a window.
type ColonySample struct {
	Population [components.NumKinds]int

	NestFood      float64
	FoodSources   int
	FoodInSources float64

	Satiations []float64 // one per living ant
	Carried    []float64 // one per living ant

	FieldFood float64 // total food-trail concentration
	FieldNest float64 // total nest-trail concentration
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample ColonySample) WindowStats {
	windowSec := float64(currentTick-c.windowStartTick) * c.dt

	satMean, satStd, satP10, satP50, satP90 := ComputeDistribution(sample.Satiations)
	carriedTotal, carriers := SumCarried(sample.Carried)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Scouts:  sample.Population[components.KindScout],
		Workers: sample.Population[components.KindWorker],

		ScoutBirths:   c.births[components.KindScout],
		WorkerBirths:  c.births[components.KindWorker],
		ScoutStarved:  c.starvations[components.KindScout],
		WorkerStarved: c.starvations[components.KindWorker],
		MeanLifespan:  Mean(c.lifespans),

		Pickups:          c.pickups,
		FoodPickedUp:     c.foodPickedUp,
		Deliveries:       c.deliveries,
		FoodDelivered:    c.foodDelivered,
		FoodEatenNest:    c.foodEatenNest,
		FoodEatenCarried: c.foodEatenCarried,
		FoodRespawned:    c.foodRespawned,
		SpawnsSkipped:    c.spawnsSkipped,

		NestFood:      sample.NestFood,
		FoodSources:   sample.FoodSources,
		FoodInSources: sample.FoodInSources,
		CarriedTotal:  carriedTotal,
		Carriers:      carriers,

		SatiationMean: satMean,
		SatiationStd:  satStd,
		SatiationP10:  satP10,
		SatiationP50:  satP50,
		SatiationP90:  satP90,

		FieldFood: sample.FieldFood,
		FieldNest: sample.FieldNest,
	}
	if windowSec > 0 {
		stats.DeliveryRate = c.foodDelivered / windowSec
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = [components.NumKinds]int{}
	c.starvations = [components.NumKinds]int{}
	c.lifespans = c.lifespans[:0]
	c.pickups = 0
	c.foodPickedUp = 0
	c.deliveries = 0
	c.foodDelivered = 0
	c.foodEatenNest = 0
	c.foodEatenCarried = 0
	c.foodRespawned = 0
	c.spawnsSkipped = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

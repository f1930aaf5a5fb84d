package telemetry

import "github.com/pthm-cable/colony/components"

// LifetimeStats tracks what one ant did between leaving the nest and starving.
type LifetimeStats struct {
	Kind      components.Kind
	BirthTick int32

	Pickups       int
	FoodPickedUp  float64
	Deliveries    int
	FoodDelivered float64
	NestMeals     int
}

// LifetimeTracker manages per-ant lifetime statistics keyed by entity ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register starts tracking an ant born at birthTick.
func (lt *LifetimeTracker) Register(entityID uint32, kind components.Kind, birthTick int32) {
	lt.stats[entityID] = &LifetimeStats{Kind: kind, BirthTick: birthTick}
}

// Get returns the lifetime stats for an ant, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// Remove stops tracking an ant and returns its stats.
func (lt *LifetimeTracker) Remove(entityID uint32) *LifetimeStats {
	stats := lt.stats[entityID]
	delete(lt.stats, entityID)
	return stats
}

// RecordPickUp adds a pick-up to the ant's record.
func (lt *LifetimeTracker) RecordPickUp(entityID uint32, amount float64) {
	if s := lt.stats[entityID]; s != nil {
		s.Pickups++
		s.FoodPickedUp += amount
	}
}

// RecordDelivery adds a nest delivery to the ant's record.
func (lt *LifetimeTracker) RecordDelivery(entityID uint32, amount float64) {
	if s := lt.stats[entityID]; s != nil {
		s.Deliveries++
		s.FoodDelivered += amount
	}
}

// RecordNestMeal counts a meal taken from the nest stock.
func (lt *LifetimeTracker) RecordNestMeal(entityID uint32) {
	if s := lt.stats[entityID]; s != nil {
		s.NestMeals++
	}
}

// LifespanSec returns how long a tracked ant has lived at currentTick.
func (s *LifetimeStats) LifespanSec(currentTick int32, dt float64) float64 {
	return float64(currentTick-s.BirthTick) * dt
}

// Count returns the number of tracked ants.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// TopDelivererID returns the living ant that has delivered the most food.
// Ties go to the lower ID. ok is false when nobody has delivered anything.
func (lt *LifetimeTracker) TopDelivererID() (id uint32, ok bool) {
	best := 0.0
	for eid, s := range lt.stats {
		if s.FoodDelivered <= 0 {
			continue
		}
		if !ok || s.FoodDelivered > best || (s.FoodDelivered == best && eid < id) {
			id, best, ok = eid, s.FoodDelivered, true
		}
	}
	return id, ok
}

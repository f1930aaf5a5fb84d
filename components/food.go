package components

import "math"

// Food is a depletable food source.
type Food struct {
	Amount float64
}

// Radius is the radius of a disk whose area equals the remaining amount.
func (f *Food) Radius() float64 {
	if f.Amount <= 0 {
		return 0
	}
	return math.Sqrt(f.Amount / math.Pi)
}

// Empty reports whether the source is depleted.
func (f *Food) Empty() bool {
	return f.Amount <= 0
}

// Remove takes up to amount and returns what was taken.
func (f *Food) Remove(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	taken := min(amount, f.Amount)
	f.Amount -= taken
	if f.Amount < 0 {
		f.Amount = 0
	}
	return taken
}

// Nest is the colony's single home. It is owned directly by the game,
// not stored in the ECS world.
type Nest struct {
	Pos    Position
	Radius float64
	Food   float64 // stored food, never negative

	// SpawnElapsed accumulates simulated seconds toward the next spawn attempt.
	SpawnElapsed float64
}

// Deposit adds food to the stock. Non-positive amounts are ignored.
func (n *Nest) Deposit(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	n.Food += amount
	return amount
}

// Withdraw removes up to amount from the stock and returns what was taken.
func (n *Nest) Withdraw(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	taken := min(amount, n.Food)
	n.Food -= taken
	if n.Food < 0 {
		n.Food = 0
	}
	return taken
}

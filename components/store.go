package components

// Store is a quantity bounded to [0, Max].
// Add and Remove never fail; they clamp and report what actually moved.
type Store struct {
	Amount float64
	Max    float64
}

// Add absorbs up to amount and returns min(amount, Room()).
func (s *Store) Add(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	added := min(amount, s.Room())
	s.Amount += added
	if s.Amount > s.Max {
		s.Amount = s.Max
	}
	return added
}

// Remove takes up to amount and returns min(amount, Amount).
func (s *Store) Remove(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	removed := min(amount, s.Amount)
	s.Amount -= removed
	if s.Amount < 0 {
		s.Amount = 0
	}
	return removed
}

// Room returns the remaining capacity.
func (s *Store) Room() float64 {
	return max(s.Max-s.Amount, 0)
}

// Empty reports whether nothing is stored.
func (s *Store) Empty() bool {
	return s.Amount <= 0
}

// Full reports whether the store is at capacity.
func (s *Store) Full() bool {
	return s.Amount >= s.Max
}

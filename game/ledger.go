package game

// FoodLedger accounts for every unit of food in the run.
// Supplied equals the sum of the other fields up to rounding.
type FoodLedger struct {
	// Sources: initial nest stock plus every food source ever created
	Supplied float64

	// Current stocks
	InSources float64
	Carried   float64
	NestStock float64

	// Cumulative sinks
	Eaten            float64 // converted into satiation
	SpentOnSpawns    float64
	LostToStarvation float64 // carried by ants that starved
}

// Imbalance returns Supplied minus everything accounted for.
func (l FoodLedger) Imbalance() float64 {
	return l.Supplied - (l.InSources + l.Carried + l.NestStock +
		l.Eaten + l.SpentOnSpawns + l.LostToStarvation)
}

// FoodLedger returns the cumulative flows with current stocks filled in.
func (g *Game) FoodLedger() FoodLedger {
	l := g.ledger
	l.NestStock = g.nest.Food

	fq := g.foodFilter.Query()
	for fq.Next() {
		_, food := fq.Get()
		l.InSources += food.Amount
	}

	aq := g.antFilter.Query()
	for aq.Next() {
		_, _, _, _, held := aq.Get()
		l.Carried += held.Amount
	}
	return l
}

package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Scouts  int `csv:"scouts"`
	Workers int `csv:"workers"`

	// Lifecycle events during window
	ScoutBirths   int     `csv:"scout_births"`
	WorkerBirths  int     `csv:"worker_births"`
	ScoutStarved  int     `csv:"scout_starved"`
	WorkerStarved int     `csv:"worker_starved"`
	MeanLifespan  float64 `csv:"mean_lifespan"` // seconds, over ants that starved this window

	// Food flow during window
	Pickups          int     `csv:"pickups"`
	FoodPickedUp     float64 `csv:"food_picked_up"`
	Deliveries       int     `csv:"deliveries"`
	FoodDelivered    float64 `csv:"food_delivered"`
	DeliveryRate     float64 `csv:"delivery_rate"` // food per simulated second
	FoodEatenNest    float64 `csv:"food_eaten_nest"`
	FoodEatenCarried float64 `csv:"food_eaten_carried"`
	FoodRespawned    int     `csv:"food_respawned"`
	SpawnsSkipped    int     `csv:"spawns_skipped"`

	// Stocks at window end
	NestFood      float64 `csv:"nest_food"`
	FoodSources   int     `csv:"food_sources"`
	FoodInSources float64 `csv:"food_in_sources"`
	CarriedTotal  float64 `csv:"carried_total"`
	Carriers      int     `csv:"carriers"`

	// Satiation distribution (sampled at window end)
	SatiationMean float64 `csv:"satiation_mean"`
	SatiationStd  float64 `csv:"satiation_std"`
	SatiationP10  float64 `csv:"satiation_p10"`
	SatiationP50  float64 `csv:"satiation_p50"`
	SatiationP90  float64 `csv:"satiation_p90"`

	// Pheromone mass
	FieldFood float64 `csv:"field_food"`
	FieldNest float64 `csv:"field_nest"`
}

// Population returns the total ant count.
func (s WindowStats) Population() int {
	return s.Scouts + s.Workers
}

// Percentile returns the empirical p-quantile of a sorted slice:
// the smallest value whose cumulative share reaches p.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// ComputeDistribution calculates mean, standard deviation, and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n > 1 {
		mean, std = stat.MeanStdDev(values, nil)
	} else {
		mean = values[0]
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// SumCarried returns the total carried food and the number of ants carrying any.
func SumCarried(carried []float64) (total float64, carriers int) {
	if len(carried) == 0 {
		return 0, 0
	}
	for _, c := range carried {
		if c > 0 {
			carriers++
		}
	}
	return floats.Sum(carried), carriers
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("scouts", s.Scouts),
		slog.Int("workers", s.Workers),
		slog.Int("scout_births", s.ScoutBirths),
		slog.Int("worker_births", s.WorkerBirths),
		slog.Int("scout_starved", s.ScoutStarved),
		slog.Int("worker_starved", s.WorkerStarved),
		slog.Float64("mean_lifespan", s.MeanLifespan),
		slog.Int("pickups", s.Pickups),
		slog.Float64("food_picked_up", s.FoodPickedUp),
		slog.Int("deliveries", s.Deliveries),
		slog.Float64("food_delivered", s.FoodDelivered),
		slog.Float64("delivery_rate", s.DeliveryRate),
		slog.Float64("food_eaten_nest", s.FoodEatenNest),
		slog.Float64("food_eaten_carried", s.FoodEatenCarried),
		slog.Int("food_respawned", s.FoodRespawned),
		slog.Int("spawns_skipped", s.SpawnsSkipped),
		slog.Float64("nest_food", s.NestFood),
		slog.Int("food_sources", s.FoodSources),
		slog.Float64("food_in_sources", s.FoodInSources),
		slog.Float64("carried_total", s.CarriedTotal),
		slog.Int("carriers", s.Carriers),
		slog.Float64("satiation_mean", s.SatiationMean),
		slog.Float64("satiation_std", s.SatiationStd),
		slog.Float64("satiation_p10", s.SatiationP10),
		slog.Float64("satiation_p50", s.SatiationP50),
		slog.Float64("satiation_p90", s.SatiationP90),
		slog.Float64("field_food", s.FieldFood),
		slog.Float64("field_nest", s.FieldNest),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

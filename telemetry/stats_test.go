package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9},
		{"p clamped high", []float64{1, 2}, 1.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5, 0.3, 0.7}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.5) > 1e-9 {
		t.Errorf("mean = %v, want 0.5", mean)
	}
	// Sample standard deviation of 0.1..0.9 step 0.2
	if math.Abs(std-math.Sqrt(0.1)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(0.1))
	}
	if p10 != 0.1 || p50 != 0.5 || p90 != 0.9 {
		t.Errorf("percentiles = %v %v %v, want 0.1 0.5 0.9", p10, p50, p90)
	}
	// Input is left unsorted
	if values[0] != 0.9 {
		t.Error("ComputeDistribution modified its input")
	}
}

func TestComputeDistributionSmall(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeDistribution([]float64{0.4})
	if mean != 0.4 || std != 0 || p50 != 0.4 {
		t.Errorf("single value: mean %v std %v p50 %v", mean, std, p50)
	}
}

func TestSumCarried(t *testing.T) {
	total, carriers := SumCarried([]float64{0, 0.5, 0, 0.25})
	if total != 0.75 || carriers != 2 {
		t.Errorf("got total %v carriers %d, want 0.75 and 2", total, carriers)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 0.5) // 20 ticks per window

	if c.ShouldFlush(19) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(20) {
		t.Error("should flush at the window end")
	}

	c.RecordBirth(components.KindScout)
	c.RecordBirth(components.KindWorker)
	c.RecordBirth(components.KindWorker)
	c.RecordStarvation(components.KindWorker, 30)
	c.RecordStarvation(components.KindWorker, 50)
	c.RecordPickUp(1)
	c.RecordPickUp(0.5)
	c.RecordDelivery(1.5)
	c.RecordNestMeal(0.25)
	c.RecordCarriedMeal(0.1)
	c.RecordRespawn()
	c.RecordSpawnSkipped()

	stats := c.Flush(20, ColonySample{
		Population: [components.NumKinds]int{3, 7},
		NestFood:   4,
		Satiations: []float64{1, 0.5},
		Carried:    []float64{0, 0.3},
	})

	if stats.Scouts != 3 || stats.Workers != 7 || stats.Population() != 10 {
		t.Errorf("population = %d/%d", stats.Scouts, stats.Workers)
	}
	if stats.ScoutBirths != 1 || stats.WorkerBirths != 2 || stats.WorkerStarved != 2 {
		t.Errorf("lifecycle counts wrong: %+v", stats)
	}
	if stats.MeanLifespan != 40 {
		t.Errorf("mean lifespan = %v, want 40", stats.MeanLifespan)
	}
	if stats.Pickups != 2 || stats.FoodPickedUp != 1.5 || stats.Deliveries != 1 {
		t.Errorf("food flow wrong: %+v", stats)
	}
	if math.Abs(stats.DeliveryRate-0.15) > 1e-12 {
		t.Errorf("delivery rate = %v, want 0.15", stats.DeliveryRate)
	}
	if stats.Carriers != 1 || stats.SatiationMean != 0.75 {
		t.Errorf("sampled state wrong: carriers %d satiation %v", stats.Carriers, stats.SatiationMean)
	}
	if stats.SimTimeSec != 10 {
		t.Errorf("sim time = %v, want 10", stats.SimTimeSec)
	}

	// Counters reset for the next window
	next := c.Flush(40, ColonySample{})
	if next.Pickups != 0 || next.ScoutBirths != 0 || next.MeanLifespan != 0 || next.WindowStartTick != 20 {
		t.Errorf("collector did not reset: %+v", next)
	}
}

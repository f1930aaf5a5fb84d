package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

// invalidFitness is returned for parameter vectors that fail validation.
const invalidFitness = 1e9

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastRate    float64 // mean delivery rate from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastDeliveryRate returns the mean delivery rate from the most recent evaluation.
func (fe *FitnessEvaluator) LastDeliveryRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32 // ticks before the colony died out (or maxTicks)
	windowStats   []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	rate    float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameter vector", "error", err)
		return invalidFitness
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			// runSimulation adjusts the worker count, so each seed gets a copy.
			result, err := fe.runSimulation(cfg.Clone(), s)
			if err != nil {
				results[idx] = seedResult{fitness: invalidFitness}
				return
			}
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.windowStats),
				rate:    meanDeliveryRate(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalRate float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalRate += r.rate
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastRate = totalRate / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until the colony dies out
// or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (*runResult, error) {
	// Workers inside each run would contend with the per-seed goroutines.
	cfg.Parallel.Workers = 1

	result := &runResult{}
	g, err := game.New(game.Options{
		Config:         cfg,
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.Update()
		pop := g.Population()
		if total(pop[:]) == 0 {
			result.survivalTicks = g.Tick()
			return result, nil
		}
	}
	result.survivalTicks = fe.maxTicks
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(deliveryRate × survivalShare × (1 + 0.2 × quality))
// Delivered food dominates; colonies that die early are scaled down.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks) / float64(fe.maxTicks)
	rate := meanDeliveryRate(r.windowStats)
	quality := fe.computeQuality(r.windowStats)
	return -(rate * survival * (1.0 + 0.2*quality))
}

const (
	qualityWarmupWindows = 2 // skip first N windows (warmup)

	qualityWeightStability = 0.5
	qualityWeightSatiation = 0.5
)

// computeQuality scores colony health in [0, 1]: stable population and
// ants that are neither starving nor idle with full bellies.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	pops := make([]float64, 0, len(valid))
	var satSum float64
	for _, w := range valid {
		if w.Population() == 0 {
			continue
		}
		pops = append(pops, float64(w.Population()))
		satSum += math.Exp(-math.Pow((w.SatiationP50-0.6)/0.25, 2))
	}
	if len(pops) == 0 {
		return 0
	}

	stability := 0.0
	if len(pops) >= 2 {
		c := cv(pops)
		stability = math.Exp(-c * c)
	}
	satiation := satSum / float64(len(pops))

	return clamp01(qualityWeightStability*stability + qualityWeightSatiation*satiation)
}

// meanDeliveryRate averages the food-per-second delivered to the nest
// over all windows.
func meanDeliveryRate(windows []telemetry.WindowStats) float64 {
	if len(windows) == 0 {
		return 0
	}
	rates := make([]float64, len(windows))
	for i, w := range windows {
		rates[i] = w.DeliveryRate
	}
	return stat.Mean(rates, nil)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func total(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

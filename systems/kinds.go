package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// KindDistribution draws ant kinds from configured weights.
type KindDistribution struct {
	kinds      []components.Kind
	cumulative []float64
	total      float64
}

// NewKindDistribution validates the weights against the declared kinds.
// Every kind must appear exactly once with a finite, non-negative weight,
// and at least one weight must be positive.
func NewKindDistribution(weights []config.KindWeight) (*KindDistribution, error) {
	seen := make(map[components.Kind]bool, len(components.Kinds))
	d := &KindDistribution{}

	for _, w := range weights {
		k, err := components.ParseKind(w.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: kind_weights: %v", config.ErrInvalid, err)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: kind_weights: duplicate kind %q", config.ErrInvalid, w.Kind)
		}
		seen[k] = true
		if w.Weight < 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			return nil, fmt.Errorf("%w: kind_weights: weight %g for %q", config.ErrInvalid, w.Weight, w.Kind)
		}
		d.total += w.Weight
		d.kinds = append(d.kinds, k)
		d.cumulative = append(d.cumulative, d.total)
	}

	for _, k := range components.Kinds {
		if !seen[k] {
			return nil, fmt.Errorf("%w: kind_weights: missing kind %q", config.ErrInvalid, k)
		}
	}
	if d.total <= 0 {
		return nil, fmt.Errorf("%w: kind_weights: weights sum to zero", config.ErrInvalid)
	}
	return d, nil
}

// Draw picks a kind with probability proportional to its weight.
func (d *KindDistribution) Draw(rng *rand.Rand) components.Kind {
	u := rng.Float64() * d.total
	for i, c := range d.cumulative {
		if u < c {
			return d.kinds[i]
		}
	}
	// u == total only through rounding; return the last kind with weight
	for i := len(d.kinds) - 1; i > 0; i-- {
		if d.cumulative[i] > d.cumulative[i-1] {
			return d.kinds[i]
		}
	}
	return d.kinds[0]
}

// Probability returns the share of draws expected to produce k.
func (d *KindDistribution) Probability(k components.Kind) float64 {
	prev := 0.0
	for i, c := range d.cumulative {
		if d.kinds[i] == k {
			return (c - prev) / d.total
		}
		prev = c
	}
	return 0
}

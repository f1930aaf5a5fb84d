package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

func testNest(food float64) *components.Nest {
	return &components.Nest{Radius: 20, Food: food}
}

func TestDepositAtNest(t *testing.T) {
	nest := testNest(2)
	_, held := newAnt(1, 0.7)

	// Just out of reach: contact 3 + radius 20
	if got := DepositAtNest(r2.Vec{X: 23}, held, nest, 3); got != 0 {
		t.Errorf("deposited %.4f from outside contact range", got)
	}

	got := DepositAtNest(r2.Vec{X: 22.9}, held, nest, 3)
	if math.Abs(got-0.7) > 1e-12 || !held.Empty() {
		t.Errorf("expected 0.7 deposited and empty cargo, got %.4f, held %.4f", got, held.Amount)
	}
	if math.Abs(nest.Food-2.7) > 1e-12 {
		t.Errorf("expected nest stock 2.7, got %.4f", nest.Food)
	}
}

func TestEatFromNest(t *testing.T) {
	tests := []struct {
		name      string
		stock     float64
		satiation float64
		wantSat   float64
		wantStock float64
	}{
		{"plenty", 5, 0.25, 1, 4.25},
		{"scarce", 0.1, 0.25, 0.35, 0},
		{"empty nest", 0, 0.25, 0.25, 0},
		{"already full", 5, 1, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nest := testNest(tt.stock)
			sat, _ := newAnt(tt.satiation, 0)
			eaten := EatFromNest(r2.Vec{}, sat, nest, 3)

			if math.Abs(sat.Amount-tt.wantSat) > 1e-12 {
				t.Errorf("satiation = %.4f, want %.4f", sat.Amount, tt.wantSat)
			}
			if math.Abs(nest.Food-tt.wantStock) > 1e-12 {
				t.Errorf("stock = %.4f, want %.4f", nest.Food, tt.wantStock)
			}
			if math.Abs(eaten-(tt.stock-nest.Food)) > 1e-12 {
				t.Errorf("eaten %.4f does not match stock change", eaten)
			}
		})
	}
}

func TestPickUp_CapacityClamp(t *testing.T) {
	held := &components.HeldFood{Store: components.Store{Max: 5}}
	food := &components.Food{Amount: 3}

	took := PickUp(held, food)
	if took != 3 || held.Amount != 3 || food.Amount != 0 {
		t.Errorf("expected 3 taken leaving empty food, got took=%.2f held=%.2f food=%.2f", took, held.Amount, food.Amount)
	}
	if !food.Empty() {
		t.Error("food should be empty")
	}

	// Excess stays in the source
	held = &components.HeldFood{Store: components.Store{Amount: 0.25, Max: 1}}
	food = &components.Food{Amount: 100}
	took = PickUp(held, food)
	if took != 0.75 || food.Amount != 99.25 || !held.Full() {
		t.Errorf("expected 0.75 taken, got took=%.4f held=%.4f food=%.4f", took, held.Amount, food.Amount)
	}
}

func TestPickUp_Conservative(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		held := &components.HeldFood{Store: components.Store{Amount: rng.Float64(), Max: 1 + rng.Float64()}}
		food := &components.Food{Amount: rng.Float64() * 3}
		heldBefore, foodBefore := held.Amount, food.Amount

		took := PickUp(held, food)
		if math.Abs((held.Amount-heldBefore)-took) > 1e-12 {
			t.Fatalf("held gained %.6f, reported %.6f", held.Amount-heldBefore, took)
		}
		if math.Abs((foodBefore-food.Amount)-took) > 1e-12 {
			t.Fatalf("food lost %.6f, reported %.6f", foodBefore-food.Amount, took)
		}
		if held.Amount > held.Max || food.Amount < 0 {
			t.Fatalf("bounds violated: held %.4f/%.4f food %.4f", held.Amount, held.Max, food.Amount)
		}
	}
}

func TestEmitTrail_ChannelFollowsCargo(t *testing.T) {
	pf := NewPheromoneField(100, 100, 2)
	_, held := newAnt(1, 0)

	EmitTrail(pf, r2.Vec{}, held, 2, 1, 0.1)
	if pf.Total(ChannelNest) <= 0 || pf.Total(ChannelFood) != 0 {
		t.Errorf("empty ant should lay nest trail, got food=%.4f nest=%.4f", pf.Total(ChannelFood), pf.Total(ChannelNest))
	}

	held.Amount = 0.5
	EmitTrail(pf, r2.Vec{}, held, 2, 1, 0.1)
	if pf.Total(ChannelFood) <= 0 {
		t.Error("carrying ant should lay food trail")
	}
	if got := pf.At(pf.WorldToGrid(r2.Vec{})).Food; math.Abs(float64(got)-0.1) > 1e-6 {
		t.Errorf("expected 0.1 food at ant, got %.4f", got)
	}
}

func TestRandomFoodWithinBounds(t *testing.T) {
	cfg := config.Cfg()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		p, amount := RandomFood(rng, cfg)
		if math.Abs(p.X) > cfg.Derived.HalfWidth-cfg.Food.EdgeMargin ||
			math.Abs(p.Y) > cfg.Derived.HalfHeight-cfg.Food.EdgeMargin {
			t.Fatalf("food at %v inside the edge margin", p)
		}
		if amount < cfg.Food.MinAmount || amount >= cfg.Food.MaxAmount {
			t.Fatalf("amount %.2f outside [%.0f, %.0f)", amount, cfg.Food.MinAmount, cfg.Food.MaxAmount)
		}
	}
}

package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/components"
)

func TestFoodIndexEmpty(t *testing.T) {
	ix := NewFoodIndex()
	if ix.Any(r2.Vec{}, 100) {
		t.Error("empty index reported food")
	}
	if _, ok := ix.Nearest(r2.Vec{}, 100); ok {
		t.Error("empty index returned a nearest food")
	}

	ix.Rebuild([]FoodRef{{Pos: r2.Vec{X: 1}, Radius: 1}})
	ix.Rebuild(nil)
	if ix.Len() != 0 || ix.Any(r2.Vec{X: 1}, 10) {
		t.Error("rebuild with nothing should clear the index")
	}
}

func TestFoodIndexWithinUsesFoodRadius(t *testing.T) {
	ix := NewFoodIndex()
	ix.Rebuild([]FoodRef{
		{Pos: r2.Vec{X: 20, Y: 0}, Radius: 8},  // edge at 12
		{Pos: r2.Vec{X: -15, Y: 0}, Radius: 1}, // edge at 14
		{Pos: r2.Vec{X: 0, Y: 100}, Radius: 5},
	})

	got := ix.Within(r2.Vec{}, 13, nil)
	if len(got) != 1 || got[0].Pos.X != 20 {
		t.Errorf("expected only the large food within reach 13, got %v", got)
	}

	got = ix.Within(r2.Vec{}, 14.5, nil)
	if len(got) != 2 {
		t.Errorf("expected 2 foods within reach 14.5, got %d", len(got))
	}

	near, ok := ix.Nearest(r2.Vec{}, 14.5)
	if !ok || near.Pos.X != -15 {
		t.Errorf("expected nearest center at x=-15, got %v (ok=%v)", near, ok)
	}
}

func TestFoodIndexMatchesBruteForce(t *testing.T) {
	w := ecs.NewWorld()
	foodMap := ecs.NewMap2[components.Position, components.Food](w)
	rng := rand.New(rand.NewSource(11))

	refs := make([]FoodRef, 200)
	for i := range refs {
		p := r2.Vec{X: (rng.Float64() - 0.5) * 1000, Y: (rng.Float64() - 0.5) * 1000}
		f := components.Food{Amount: 50 + rng.Float64()*200}
		pos := components.PositionOf(p)
		e := foodMap.NewEntity(&pos, &f)
		refs[i] = FoodRef{Entity: e, Pos: p, Radius: f.Radius()}
	}

	ix := NewFoodIndex()
	ix.Rebuild(refs)

	for q := 0; q < 200; q++ {
		p := r2.Vec{X: (rng.Float64() - 0.5) * 1000, Y: (rng.Float64() - 0.5) * 1000}
		reach := rng.Float64() * 40

		want := map[ecs.Entity]bool{}
		for _, r := range refs {
			if distance(p, r.Pos) < reach+r.Radius {
				want[r.Entity] = true
			}
		}
		got := ix.Within(p, reach, nil)
		if len(got) != len(want) {
			t.Fatalf("query %d: got %d foods, want %d", q, len(got), len(want))
		}
		for _, r := range got {
			if !want[r.Entity] {
				t.Fatalf("query %d: unexpected food %v", q, r.Entity)
			}
		}
	}
}

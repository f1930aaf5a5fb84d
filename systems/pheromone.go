package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Channel selects one of the two pheromone layers.
type Channel uint8

const (
	ChannelFood Channel = iota // laid by ants carrying food
	ChannelNest                // laid by ants searching, and by the nest itself
)

func (c Channel) String() string {
	if c == ChannelFood {
		return "food"
	}
	return "nest"
}

// Cell holds both channel concentrations, each in [0,1].
type Cell struct {
	Food float32
	Nest float32
}

// Get returns the concentration of one channel.
func (c Cell) Get(ch Channel) float32 {
	if ch == ChannelFood {
		return c.Food
	}
	return c.Nest
}

// Strongest returns max(Food, Nest).
func (c Cell) Strongest() float32 {
	return max(c.Food, c.Nest)
}

func (c *Cell) ref(ch Channel) *float32 {
	if ch == ChannelFood {
		return &c.Food
	}
	return &c.Nest
}

// PheromoneField is a decaying, diffusing two-channel grid covering the world.
// Row 0 is the top of the world; cell (cx, cy) is stored at cy*W+cx.
type PheromoneField struct {
	W, H int

	worldW, worldH float64
	resolution     float64 // world units per cell edge

	cells []Cell
	// Scratch buffer holding the pre-diffusion snapshot
	tmp []Cell
}

// NewPheromoneField creates an empty field of ceil(worldW/res) x ceil(worldH/res) cells.
func NewPheromoneField(worldW, worldH, resolution float64) *PheromoneField {
	w := int(math.Ceil(worldW / resolution))
	h := int(math.Ceil(worldH / resolution))
	return &PheromoneField{
		W: w, H: h,
		worldW:     worldW,
		worldH:     worldH,
		resolution: resolution,
		cells:      make([]Cell, w*h),
		tmp:        make([]Cell, w*h),
	}
}

// Size returns the grid dimensions in cells.
func (pf *PheromoneField) Size() (int, int) { return pf.W, pf.H }

// Resolution returns the cell edge length in world units.
func (pf *PheromoneField) Resolution() float64 { return pf.resolution }

// Cells exposes the backing storage for rendering. Callers must not mutate it.
func (pf *PheromoneField) Cells() []Cell { return pf.cells }

// At returns the cell at (cx, cy), or a zero cell outside the grid.
func (pf *PheromoneField) At(cx, cy int) Cell {
	if !pf.InBounds(cx, cy) {
		return Cell{}
	}
	return pf.cells[cy*pf.W+cx]
}

// Set overwrites a cell, clamping both channels to [0,1]. Out-of-range cells are ignored.
func (pf *PheromoneField) Set(cx, cy int, c Cell) {
	if !pf.InBounds(cx, cy) {
		return
	}
	c.Food = clamp01(c.Food)
	c.Nest = clamp01(c.Nest)
	pf.cells[cy*pf.W+cx] = c
}

// Reset clears every cell.
func (pf *PheromoneField) Reset() {
	clear(pf.cells)
}

// InBounds reports whether (cx, cy) addresses a grid cell.
func (pf *PheromoneField) InBounds(cx, cy int) bool {
	return cx >= 0 && cx < pf.W && cy >= 0 && cy < pf.H
}

// WorldToGrid maps a world position to the cell containing it.
// The result may lie outside the grid.
func (pf *PheromoneField) WorldToGrid(p r2.Vec) (int, int) {
	cx := math.Floor((p.X + pf.worldW/2) / pf.resolution)
	cy := math.Floor((-p.Y + pf.worldH/2) / pf.resolution)
	return int(cx), int(cy)
}

// GridToWorld returns the world position of a cell's center.
func (pf *PheromoneField) GridToWorld(cx, cy int) r2.Vec {
	return r2.Vec{
		X: (float64(cx)+0.5)*pf.resolution - pf.worldW/2,
		Y: pf.worldH/2 - (float64(cy)+0.5)*pf.resolution,
	}
}

// Decay multiplies every concentration by factor, which callers derive as
// concentration_factor^dt.
func (pf *PheromoneField) Decay(factor float64) {
	f := float32(factor)
	for i := range pf.cells {
		pf.cells[i].Food *= f
		pf.cells[i].Nest *= f
	}
}

// Diffuse spreads each channel to its four neighbors with coefficient k.
// Every interior cell reads the same pre-diffusion snapshot; border cells
// are not updated.
func (pf *PheromoneField) Diffuse(k float64) {
	if k <= 0 || pf.W < 3 || pf.H < 3 {
		return
	}
	copy(pf.tmp, pf.cells)

	kk := float32(k)
	keep := float32(1 - 4*k)
	w := pf.W
	for y := 1; y < pf.H-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			i := row + x
			l, r, u, d := pf.tmp[i-1], pf.tmp[i+1], pf.tmp[i-w], pf.tmp[i+w]
			c := pf.tmp[i]
			pf.cells[i].Food = clamp01(c.Food*keep + (l.Food+r.Food+u.Food+d.Food)*kk)
			pf.cells[i].Nest = clamp01(c.Nest*keep + (l.Nest+r.Nest+u.Nest+d.Nest)*kk)
		}
	}
}

// ForEachWithin calls fn for every in-grid cell whose center lies within
// radius of center, measured in cell units (distance <= radius/resolution).
// fn may modify the cell.
func (pf *PheromoneField) ForEachWithin(center r2.Vec, radius float64, fn func(cx, cy int, c *Cell)) {
	if !(radius >= 0) || math.IsInf(radius, 0) || !finite(center) {
		return
	}
	r := radius / pf.resolution
	gx := (center.X + pf.worldW/2) / pf.resolution
	gy := (-center.Y + pf.worldH/2) / pf.resolution
	// Circle entirely off the grid
	if gx+r < 0 || gy+r < 0 || gx-r >= float64(pf.W) || gy-r >= float64(pf.H) {
		return
	}

	x0 := max(int(math.Floor(gx-r)), 0)
	x1 := min(int(math.Floor(gx+r)), pf.W-1)
	y0 := max(int(math.Floor(gy-r)), 0)
	y1 := min(int(math.Floor(gy+r)), pf.H-1)
	r2lim := r * r
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - gy
		row := y * pf.W
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - gx
			if dx*dx+dy*dy > r2lim {
				continue
			}
			fn(x, y, &pf.cells[row+x])
		}
	}
}

// DepositWithinCircle adds amount*dt to one channel of every cell in the
// circle, saturating at 1. Returns the total concentration actually added.
func (pf *PheromoneField) DepositWithinCircle(center r2.Vec, radius float64, ch Channel, amount, dt float64) float64 {
	add := amount * dt
	if !(add > 0) {
		return 0
	}
	var added float64
	pf.ForEachWithin(center, radius, func(_, _ int, c *Cell) {
		v := c.ref(ch)
		before := *v
		*v = clamp01(before + float32(add))
		added += float64(*v - before)
	})
	return added
}

// QueryWithinCircle sums one channel over the circle. The sum is a signal
// strength, not an average: larger circles read louder.
func (pf *PheromoneField) QueryWithinCircle(center r2.Vec, radius float64, ch Channel) float64 {
	var sum float64
	pf.ForEachWithin(center, radius, func(_, _ int, c *Cell) {
		sum += float64(c.Get(ch))
	})
	return sum
}

// QueryStrongestWithinCircle sums max(food, nest) over the circle.
func (pf *PheromoneField) QueryStrongestWithinCircle(center r2.Vec, radius float64) float64 {
	var sum float64
	pf.ForEachWithin(center, radius, func(_, _ int, c *Cell) {
		sum += float64(c.Strongest())
	})
	return sum
}

// Total returns the summed concentration of a channel over the whole grid.
func (pf *PheromoneField) Total(ch Channel) float64 {
	var sum float64
	for i := range pf.cells {
		sum += float64(pf.cells[i].Get(ch))
	}
	return sum
}

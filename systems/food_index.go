package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// FoodRef is a snapshot of one food source taken when the index is built.
type FoodRef struct {
	Entity ecs.Entity
	Pos    r2.Vec
	Radius float64
}

// FoodIndex answers "which food is within reach of this point" queries.
// It is rebuilt from a snapshot and never sees later mutations, so it may
// be read concurrently between rebuilds.
type FoodIndex struct {
	refs      foodPoints
	tree      *kdtree.Tree
	maxRadius float64
}

// NewFoodIndex creates an empty index.
func NewFoodIndex() *FoodIndex {
	return &FoodIndex{}
}

// Rebuild replaces the indexed set.
func (ix *FoodIndex) Rebuild(refs []FoodRef) {
	ix.refs = ix.refs[:0]
	ix.maxRadius = 0
	for _, r := range refs {
		ix.refs = append(ix.refs, foodPoint(r))
		ix.maxRadius = max(ix.maxRadius, r.Radius)
	}
	if len(ix.refs) == 0 {
		ix.tree = nil
		return
	}
	// kdtree.New reorders its input, so hand it a copy.
	pts := make(foodPoints, len(ix.refs))
	copy(pts, ix.refs)
	ix.tree = kdtree.New(pts, false)
}

// Len returns the number of indexed food sources.
func (ix *FoodIndex) Len() int { return len(ix.refs) }

// Within appends to dst every food source whose edge lies closer than reach
// to p, that is dist(p, food) < reach + food.Radius.
func (ix *FoodIndex) Within(p r2.Vec, reach float64, dst []FoodRef) []FoodRef {
	if ix.tree == nil || !(reach >= 0) || !finite(p) {
		return dst
	}
	bound := reach + ix.maxRadius
	keep := kdtree.NewDistKeeper(bound * bound)
	ix.tree.NearestSet(keep, foodPoint{Pos: p})
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		f := c.Comparable.(foodPoint)
		if math.Sqrt(c.Dist) < reach+f.Radius {
			dst = append(dst, FoodRef(f))
		}
	}
	return dst
}

// Any reports whether some food source lies within reach of p.
func (ix *FoodIndex) Any(p r2.Vec, reach float64) bool {
	var buf [4]FoodRef
	return len(ix.Within(p, reach, buf[:0])) > 0
}

// Nearest returns the closest food source within reach of p, measured
// center to center.
func (ix *FoodIndex) Nearest(p r2.Vec, reach float64) (FoodRef, bool) {
	var buf [8]FoodRef
	found := ix.Within(p, reach, buf[:0])
	if len(found) == 0 {
		return FoodRef{}, false
	}
	best := found[0]
	bestD := r2.Norm(r2.Sub(best.Pos, p))
	for _, f := range found[1:] {
		d := r2.Norm(r2.Sub(f.Pos, p))
		// Ties break on entity id so results do not depend on heap order
		if d < bestD || (d == bestD && f.Entity.ID() < best.Entity.ID()) {
			best, bestD = f, d
		}
	}
	return best, true
}

// foodPoint adapts FoodRef to kdtree.Comparable. Distance is squared
// Euclidean, as the tree's pruning expects.
type foodPoint FoodRef

func (p foodPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(foodPoint)
	switch d {
	case 0:
		return p.Pos.X - q.Pos.X
	case 1:
		return p.Pos.Y - q.Pos.Y
	default:
		panic("illegal dimension")
	}
}

func (p foodPoint) Dims() int { return 2 }

func (p foodPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(foodPoint)
	dx, dy := p.Pos.X-q.Pos.X, p.Pos.Y-q.Pos.Y
	return dx*dx + dy*dy
}

type foodPoints []foodPoint

func (p foodPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p foodPoints) Len() int                              { return len(p) }
func (p foodPoints) Pivot(d kdtree.Dim) int                { return foodPlane{foodPoints: p, Dim: d}.Pivot() }
func (p foodPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// foodPlane sorts food points along one dimension.
type foodPlane struct {
	kdtree.Dim
	foodPoints
}

func (p foodPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.foodPoints[i].Pos.X < p.foodPoints[j].Pos.X
	case 1:
		return p.foodPoints[i].Pos.Y < p.foodPoints[j].Pos.Y
	default:
		panic("illegal dimension")
	}
}

func (p foodPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p foodPlane) Slice(start, end int) kdtree.SortSlicer {
	p.foodPoints = p.foodPoints[start:end]
	return p
}

func (p foodPlane) Swap(i, j int) {
	p.foodPoints[i], p.foodPoints[j] = p.foodPoints[j], p.foodPoints[i]
}

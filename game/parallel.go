package game

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/colony/systems"
)

// antSnapshot captures the read-only state one ant steers from.
type antSnapshot struct {
	Entity  ecs.Entity
	Pos     r2.Vec
	Heading float64
	Goal    systems.Goal
	Noise   systems.SteerNoise
}

// workChunk represents a range of snapshots for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for the parallel steering pass.
type parallelState struct {
	snapshots  []antSnapshot
	headings   []float64 // output, one per snapshot
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState sizes the pool; workers <= 0 means GOMAXPROCS.
func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{
		numWorkers: workers,
		snapshots:  make([]antSnapshot, 0, 512),
		headings:   make([]float64, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.steerChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// updateSteering senses and steers every ant in three phases:
// snapshot (single thread, draws all randomness in entity order),
// compute (parallel above the threshold), apply (single thread).
// The result does not depend on the worker count.
func (g *Game) updateSteering() {
	cfg := g.cfg
	jitter := cfg.Ant.SenseAngle

	// Phase A: snapshots
	g.parallel.snapshots = g.parallel.snapshots[:0]
	query := g.antFilter.Query()
	for query.Next() {
		pos, heading, ant, sat, held := query.Get()
		g.parallel.snapshots = append(g.parallel.snapshots, antSnapshot{
			Entity:  query.Entity(),
			Pos:     pos.Vec(),
			Heading: heading.Angle,
			Goal:    systems.ChooseGoal(ant.Kind, sat, held),
			Noise:   systems.DrawSteerNoise(g.rng, jitter),
		})
	}

	n := len(g.parallel.snapshots)
	if n == 0 {
		return
	}
	if cap(g.parallel.headings) < n {
		g.parallel.headings = make([]float64, n)
	}
	g.parallel.headings = g.parallel.headings[:n]

	// Phase B: compute
	if n < cfg.Parallel.Threshold || g.parallel.numWorkers < 2 {
		g.steerChunk(0, n)
	} else {
		g.steerParallel(n)
	}

	// Phase C: apply
	for i, snap := range g.parallel.snapshots {
		if h := g.headingMap.Get(snap.Entity); h != nil {
			h.Angle = g.parallel.headings[i]
		}
	}
}

// steerParallel dispatches chunks to the worker pool and waits.
func (g *Game) steerParallel(n int) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		g.parallel.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-g.parallel.doneChan
	}
}

// steerChunk computes new headings for snapshots [i0, i1). It only reads
// shared state and writes its own slots of the output slice.
func (g *Game) steerChunk(i0, i1 int) {
	env := g.surroundings()
	maxTurn := g.cfg.Derived.MaxTurn

	for i := i0; i < i1; i++ {
		snap := &g.parallel.snapshots[i]
		desired := g.sensor.Desire(env, snap.Goal, snap.Pos, snap.Heading)
		g.parallel.headings[i] = systems.Steer(snap.Heading, desired, snap.Noise, maxTurn)
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}

package ga

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
	"github.com/Parmeggiani-Lab/elfin/rng"
)

// cutoffs partitions scratch-buffer slot indices among the evolutionary
// operators, derived once from Config at engine construction.
type cutoffs struct {
	survivor, cross, point, limb int
}

func deriveCutoffs(c Config) cutoffs {
	n := c.PopSize
	survivor := int(math.Round(c.SurviveRate * float64(n)))
	nonSurvivor := n - survivor
	cross := survivor + int(math.Round(c.CrossRate*float64(nonSurvivor)))
	point := cross + int(math.Round(c.PointMutateRate*float64(nonSurvivor)))
	limb := point + int(math.Round(c.LimbMutateRate*float64(nonSurvivor)))
	if limb > n {
		limb = n
	}
	return cutoffs{survivor: survivor, cross: cross, point: point, limb: limb}
}

// StopReason records why a run ended.
type StopReason int

const (
	StopMaxGenerations StopReason = iota
	StopScoreThreshold
	StopStagnation
	StopInterrupted
)

func (r StopReason) String() string {
	switch r {
	case StopScoreThreshold:
		return "score threshold reached"
	case StopStagnation:
		return "stagnation"
	case StopInterrupted:
		return "interrupted"
	default:
		return "max generations reached"
	}
}

// Result is what Run returns: the best-so-far snapshot, the generation
// count actually run, and why the run ended.
type Result struct {
	Best       []Chromosome
	Generation int
	Reason     StopReason
}

// Engine drives the double-buffered generational loop over a module
// database and a reference path.
type Engine struct {
	db      *moduledb.Database
	ref     geom.Path
	cfg     Config
	cutoffs cutoffs
	bounds  Bounds
	streams *rng.Streams

	curr, scratch []Chromosome

	// Stop is polled once per generation after the buffer swap; setting
	// it (e.g. from a signal handler) ends the run cleanly after the
	// current generation finishes, per the external-interrupt policy.
	Stop func() bool
}

// NewEngine builds an engine and its double-buffered population.
func NewEngine(db *moduledb.Database, ref geom.Path, cfg Config) *Engine {
	bounds := DeriveBounds(ref, cfg.AvgPairDist, cfg.LenDev)
	return &Engine{
		db:      db,
		ref:     ref,
		cfg:     cfg,
		cutoffs: deriveCutoffs(cfg),
		bounds:  bounds,
		streams: rng.New(cfg.RandSeed, cfg.Workers),
		curr:    make([]Chromosome, cfg.PopSize),
		scratch: make([]Chromosome, cfg.PopSize),
		Stop:    func() bool { return false },
	}
}

// partition splits [0, n) into the worker-th of workers contiguous shards,
// mirroring the teacher's shard-splitting idiom
// (grailbio-bio/pileup/snp/pileup.go's "(jobIdx*nShard)/parallelism"
// shards). Every index falls in exactly one shard, so a goroutine that
// owns shard `worker` never touches a slot any other goroutine touches.
func partition(n, workers, worker int) (start, end int) {
	start = (worker * n) / workers
	end = ((worker + 1) * n) / workers
	return
}

// initPopulation fills curr in workers-many shards, one goroutine per
// shard, each goroutine drawing from exactly one *rng.Stream for every
// slot in its shard — a stream is never touched from more than one
// goroutine, per rng.Streams.Worker's contract.
func (e *Engine) initPopulation() {
	n := e.cfg.PopSize
	workers := e.streams.Len()
	_ = traverse.Each(workers, func(w int) error {
		s := e.streams.Worker(w)
		start, end := partition(n, workers, w)
		for i := start; i < end; i++ {
			e.curr[i] = Chromosome{}
			e.curr[i].Randomise(e.db, e.bounds, s)
		}
		return nil
	})
	// Hard invariant check: the last slot must be scorable immediately.
	e.curr[e.cfg.PopSize-1].EvaluateScore(e.ref)
	if math.IsNaN(e.curr[e.cfg.PopSize-1].Score) {
		panic("ga: initial population invariant check failed to score")
	}
}

// Run executes the generational loop until a stop condition triggers.
func (e *Engine) Run() Result {
	e.initPopulation()

	best := make([]Chromosome, e.cfg.NBestSols)
	lastBestScore := math.Inf(1)
	stagnant := 0

	for gen := 0; gen < e.cfg.Generations; gen++ {
		e.evolve()
		e.score()
		e.rank()
		e.selectParents()
		e.swap()

		bestScore := e.curr[0].Score
		log.Debug.Printf("generation %d: best=%.4f worst=%.4f", gen, bestScore, e.curr[len(e.curr)-1].Score)

		if bestScore < e.cfg.ScoreStopThreshold {
			copy(best, e.curr[:e.cfg.NBestSols])
			return Result{Best: best, Generation: gen + 1, Reason: StopScoreThreshold}
		}

		copy(best, e.curr[:e.cfg.NBestSols])

		if floatApprox(bestScore, lastBestScore, 1e-5) {
			stagnant++
		} else {
			stagnant = 0
		}
		lastBestScore = bestScore

		if stagnant >= e.cfg.MaxStagnantGens {
			log.Error.Printf("ga: stopped after %d stagnant generations", stagnant)
			return Result{Best: best, Generation: gen + 1, Reason: StopStagnation}
		}

		if e.Stop != nil && e.Stop() {
			return Result{Best: best, Generation: gen + 1, Reason: StopInterrupted}
		}
	}

	return Result{Best: best, Generation: e.cfg.Generations, Reason: StopMaxGenerations}
}

func floatApprox(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// evolve fills scratch[survivor:popSize] from curr in workers-many
// shards, one goroutine per shard bound to exactly one *rng.Stream for
// every slot it fills — mirroring the C++ ground truth's
// getDice(omp_get_thread_num()) thread-local binding in ParallelUtils,
// rather than deriving a stream from the slot index under the pool's
// own (GOMAXPROCS-sized) goroutines.
func (e *Engine) evolve() {
	cut := e.cutoffs
	copy(e.scratch[:cut.survivor], e.curr[:cut.survivor])

	nonSurvivor := e.cfg.PopSize - cut.survivor
	workers := e.streams.Len()
	_ = traverse.Each(workers, func(w int) error {
		s := e.streams.Worker(w)
		start, end := partition(nonSurvivor, workers, w)
		for k := start; k < end; k++ {
			i := cut.survivor + k
			dice := cut.survivor + s.Dice(nonSurvivor)

			if dice < cut.cross {
				var motherID, fatherID int
				if s.Dice(2) == 1 {
					motherID = s.Dice(cut.survivor)
					fatherID = s.Dice(e.cfg.PopSize)
				} else {
					motherID = s.Dice(e.cfg.PopSize)
					fatherID = s.Dice(cut.survivor)
				}
				mother, father := e.curr[motherID], e.curr[fatherID]

				if child, ok := Cross(e.db, e.bounds, mother, father, s); ok {
					e.scratch[i] = child
				} else {
					e.scratch[i] = mother.Copy()
					e.scratch[i].AutoMutate(e.db, e.bounds, s)
				}
				continue
			}

			parentID := s.Dice(cut.survivor)
			e.scratch[i] = e.curr[parentID].Copy()

			switch {
			case dice < cut.point:
				if !e.scratch[i].PointMutate(e.db, e.bounds, s) {
					e.scratch[i].Randomise(e.db, e.bounds, s)
				}
			case dice < cut.limb:
				if !e.scratch[i].LimbMutate(e.db, e.bounds, s) {
					e.scratch[i].Randomise(e.db, e.bounds, s)
				}
			default:
				e.scratch[i].Randomise(e.db, e.bounds, s)
			}
		}
		return nil
	})
}

func (e *Engine) score() {
	_ = traverse.Each(e.cfg.PopSize, func(i int) error {
		e.scratch[i].EvaluateScore(e.ref)
		return nil
	})
}

func (e *Engine) rank() {
	sort.Slice(e.scratch, func(i, j int) bool { return e.scratch[i].Score < e.scratch[j].Score })
}

// selectParents walks the ranked scratch buffer, keeping the first
// survivor-cutoff individuals whose checksum hasn't been seen, then
// resorts just that prefix.
func (e *Engine) selectParents() {
	seen := make(map[uint32]bool, e.cutoffs.survivor)
	unique := make([]Chromosome, 0, e.cutoffs.survivor)

	for _, c := range e.scratch {
		crc := Checksum(c.Genes)
		if seen[crc] {
			continue
		}
		seen[crc] = true
		unique = append(unique, c)
		if len(unique) >= e.cutoffs.survivor {
			break
		}
	}

	copy(e.scratch[:len(unique)], unique)
	head := e.scratch[:len(unique)]
	sort.Slice(head, func(i, j int) bool { return head[i].Score < head[j].Score })
}

func (e *Engine) swap() {
	e.curr, e.scratch = e.scratch, e.curr
}

// Package rng provides the per-worker deterministic random streams that
// the evolution engine's parallel phases draw from. Each worker owns an
// independent stream seeded from the run's global seed and its own
// worker index, so a run is bit-for-bit reproducible regardless of how
// the scheduler interleaves workers, and independent of how many
// goroutines happen to be live at once.
package rng

import (
	"math/rand"
	"time"
)

// Streams holds one *rand.Rand per worker, indexed by worker id.
type Streams struct {
	workers []*rand.Rand
}

// New builds n worker streams. If globalSeed is zero, a wall-clock-derived
// seed is used instead (matching the "unset seed means nondeterministic"
// convention of the original chain designer), still giving each worker a
// distinct stream.
func New(globalSeed int64, n int) *Streams {
	if globalSeed == 0 {
		globalSeed = time.Now().UnixNano()
	}

	s := &Streams{workers: make([]*rand.Rand, n)}
	for i := 0; i < n; i++ {
		s.workers[i] = rand.New(rand.NewSource(globalSeed + int64(i)))
	}
	return s
}

// Worker returns the stream dedicated to worker i. Callers must not share
// a stream across goroutines; the whole point of per-worker seeding is
// that each worker's draws never race with another's.
func (s *Streams) Worker(i int) *Stream {
	return &Stream{r: s.workers[i]}
}

// Len reports how many worker streams exist.
func (s *Streams) Len() int { return len(s.workers) }

// Stream is a single worker's random source.
type Stream struct {
	r *rand.Rand
}

// Dice returns a uniform integer in [0, ceiling), mirroring the
// floor((ceiling-1)*rand/RAND_MAX) construction of the original
// generator: rather than reproducing its slight downward bias from an
// inclusive RAND_MAX division, Intn is the idiomatic unbiased Go
// equivalent for the same [0, ceiling) range.
func (s *Stream) Dice(ceiling int) int {
	if ceiling <= 0 {
		return 0
	}
	return s.r.Intn(ceiling)
}

// Float64 returns a uniform float in [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Shuffle permutes a slice of n elements in place via swap(i, j).
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
